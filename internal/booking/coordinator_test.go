package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinematick/internal/inventory"
	"github.com/iliyamo/cinematick/internal/model"
	"github.com/iliyamo/cinematick/internal/pricing"
	"github.com/iliyamo/cinematick/internal/queue"
	"github.com/iliyamo/cinematick/internal/repository"
)

// fakeEvents resolves events from a fixed map, standing in for the
// event repository.
type fakeEvents struct {
	byName map[string]*model.Event
}

func (f *fakeEvents) GetByName(_ context.Context, name string) (*model.Event, error) {
	ev, ok := f.byName[name]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *ev
	return &cp, nil
}

// fakeLedger is an in-memory booking store with an injectable create
// failure, standing in for the booking repository.
type fakeLedger struct {
	mu         sync.Mutex
	bookings   map[string]model.Booking
	failCreate error
	failMark   error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{bookings: make(map[string]model.Booking)}
}

func (f *fakeLedger) Create(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	f.bookings[b.ID] = *b
	return nil
}

func (f *fakeLedger) GetByID(_ context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := b
	return &cp, nil
}

func (f *fakeLedger) MarkCancelled(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMark != nil {
		return false, f.failMark
	}
	b, ok := f.bookings[id]
	if !ok {
		return false, repository.ErrBookingNotFound
	}
	if b.Status != model.StatusConfirmed {
		return false, nil
	}
	b.Status = model.StatusCancelled
	f.bookings[id] = b
	return true, nil
}

// fakeNotifier records dispatched notifications.
type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []queue.BookingConfirmedEvent
	cancelled []queue.BookingCancelledEvent
}

func (f *fakeNotifier) BookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, ev)
	return nil
}

func (f *fakeNotifier) BookingCancelled(_ context.Context, ev queue.BookingCancelledEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, ev)
	return nil
}

func (f *fakeNotifier) confirmedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.confirmed)
}

func (f *fakeNotifier) cancelledCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cancelled)
}

type fixture struct {
	coord    *Coordinator
	ledger   *fakeLedger
	inv      *inventory.Store
	notifier *fakeNotifier
	event    *model.Event
}

// newFixture builds a coordinator around one registered event.
func newFixture(t *testing.T, total uint32, vipCents, stdCents uint32) *fixture {
	t.Helper()
	ev := &model.Event{
		ID:                 1,
		Name:               "jazz-night",
		VIPPriceCents:      vipCents,
		StandardPriceCents: stdCents,
		TotalSeats:         total,
	}
	inv := inventory.NewStore()
	inv.Register(ev.ID, int(total), nil)
	ledger := newFakeLedger()
	notifier := &fakeNotifier{}
	coord := NewCoordinator(&fakeEvents{byName: map[string]*model.Event{ev.Name: ev}}, ledger, inv, notifier)
	return &fixture{coord: coord, ledger: ledger, inv: inv, notifier: notifier, event: ev}
}

func user(id uint64) model.User {
	return model.User{ID: id, Email: "user@example.com", Role: model.RoleCustomer}
}

func TestBookHappyPath(t *testing.T) {
	f := newFixture(t, 60, 2000, 1000)

	b, err := f.coord.Book(context.Background(), user(7), "jazz-night", []string{"A1", "C3"})
	require.NoError(t, err)
	require.NotEmpty(t, b.ID)
	require.Equal(t, model.StatusConfirmed, b.Status)
	require.Equal(t, uint32(3000), b.TotalCents)
	require.Equal(t, []string{"A1", "C3"}, b.SeatLabels())

	stored, err := f.ledger.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, b.TotalCents, stored.TotalCents)

	held, err := f.inv.BookedSeats(f.event.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"A1", "C3"}, held)

	require.Eventually(t, func() bool { return f.notifier.confirmedCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestBookValidation(t *testing.T) {
	f := newFixture(t, 60, 2000, 1000)
	ctx := context.Background()

	_, err := f.coord.Book(ctx, user(1), "jazz-night", nil)
	require.ErrorIs(t, err, ErrNoSeats)

	_, err = f.coord.Book(ctx, user(1), "jazz-night", []string{"Z9"})
	var invalid *InvalidSeatError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "Z9", invalid.Seat)

	_, err = f.coord.Book(ctx, user(1), "jazz-night", []string{"A1", "A1"})
	var dup *DuplicateSeatError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "A1", dup.Seat)

	_, err = f.coord.Book(ctx, user(1), "no-such-event", []string{"A1"})
	require.ErrorIs(t, err, repository.ErrEventNotFound)

	// Nothing above should have touched the inventory.
	remaining, err := f.inv.Remaining(f.event.ID)
	require.NoError(t, err)
	require.Equal(t, 60, remaining)
}

func TestBookConflictReportsSeats(t *testing.T) {
	f := newFixture(t, 60, 2000, 1000)
	ctx := context.Background()

	_, err := f.coord.Book(ctx, user(1), "jazz-night", []string{"A1", "A2"})
	require.NoError(t, err)

	_, err = f.coord.Book(ctx, user(2), "jazz-night", []string{"A2", "A3"})
	var conflict *inventory.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, []string{"A2"}, conflict.Seats)

	// The failed request must not have taken A3.
	held, err := f.inv.BookedSeats(f.event.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"A1", "A2"}, held)
}

func TestBookRollsBackOnLedgerFailure(t *testing.T) {
	f := newFixture(t, 60, 2000, 1000)
	f.ledger.failCreate = errors.New("connection reset")

	_, err := f.coord.Book(context.Background(), user(1), "jazz-night", []string{"B1", "B2"})
	var persist *PersistenceError
	require.ErrorAs(t, err, &persist)

	// The reservation must not survive the failed ledger write.
	remaining, err := f.inv.Remaining(f.event.ID)
	require.NoError(t, err)
	require.Equal(t, 60, remaining)

	f.ledger.failCreate = nil
	_, err = f.coord.Book(context.Background(), user(2), "jazz-night", []string{"B1", "B2"})
	require.NoError(t, err)
}

func TestConcurrentBookSameSeatOneWinner(t *testing.T) {
	f := newFixture(t, 60, 2000, 1000)

	const racers = 32
	results := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.coord.Book(context.Background(), user(uint64(i+1)), "jazz-night", []string{"D5"})
			results[i] = err
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		var conflict *inventory.ConflictError
		require.ErrorAs(t, err, &conflict)
	}
	require.Equal(t, 1, wins)
	remaining, err := f.inv.Remaining(f.event.ID)
	require.NoError(t, err)
	require.Equal(t, 59, remaining)
}

func TestCancelRestoresSeats(t *testing.T) {
	f := newFixture(t, 60, 2000, 1000)
	ctx := context.Background()

	b, err := f.coord.Book(ctx, user(5), "jazz-night", []string{"A1", "B2"})
	require.NoError(t, err)

	require.NoError(t, f.coord.Cancel(ctx, b.ID, 5, false))

	remaining, err := f.inv.Remaining(f.event.ID)
	require.NoError(t, err)
	require.Equal(t, 60, remaining)

	stored, err := f.ledger.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusCancelled, stored.Status)

	require.Eventually(t, func() bool { return f.notifier.cancelledCount() == 1 }, time.Second, 10*time.Millisecond)

	// The freed seats are immediately bookable again.
	_, err = f.coord.Book(ctx, user(6), "jazz-night", []string{"A1"})
	require.NoError(t, err)
}

func TestCancelIdempotency(t *testing.T) {
	f := newFixture(t, 60, 2000, 1000)
	ctx := context.Background()

	b, err := f.coord.Book(ctx, user(5), "jazz-night", []string{"A1"})
	require.NoError(t, err)
	require.NoError(t, f.coord.Cancel(ctx, b.ID, 5, false))

	err = f.coord.Cancel(ctx, b.ID, 5, false)
	require.ErrorIs(t, err, ErrAlreadyCancelled)

	// The double cancel must not inflate capacity.
	remaining, err := f.inv.Remaining(f.event.ID)
	require.NoError(t, err)
	require.Equal(t, 60, remaining)
}

func TestCancelOwnership(t *testing.T) {
	f := newFixture(t, 60, 2000, 1000)
	ctx := context.Background()

	b, err := f.coord.Book(ctx, user(5), "jazz-night", []string{"A1"})
	require.NoError(t, err)

	err = f.coord.Cancel(ctx, b.ID, 99, false)
	require.ErrorIs(t, err, ErrForbidden)

	held, err := f.inv.BookedSeats(f.event.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"A1"}, held)

	// An admin may cancel someone else's booking.
	require.NoError(t, f.coord.Cancel(ctx, b.ID, 99, true))
}

func TestCancelUnknownBooking(t *testing.T) {
	f := newFixture(t, 60, 2000, 1000)
	err := f.coord.Cancel(context.Background(), "no-such-id", 1, false)
	require.ErrorIs(t, err, repository.ErrBookingNotFound)
}

func TestCancelReReservesWhenMarkFails(t *testing.T) {
	f := newFixture(t, 60, 2000, 1000)
	ctx := context.Background()

	b, err := f.coord.Book(ctx, user(5), "jazz-night", []string{"A1", "A2"})
	require.NoError(t, err)

	f.ledger.failMark = errors.New("deadlock")
	err = f.coord.Cancel(ctx, b.ID, 5, false)
	var persist *PersistenceError
	require.ErrorAs(t, err, &persist)

	// The release was compensated: the seats are still held.
	held, err := f.inv.BookedSeats(f.event.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"A1", "A2"}, held)

	f.ledger.failMark = nil
	require.NoError(t, f.coord.Cancel(ctx, b.ID, 5, false))
}

func TestQuote(t *testing.T) {
	f := newFixture(t, 60, 1500, 500)

	q, err := f.coord.Quote(context.Background(), "jazz-night", []string{"A1", "C1", "C2"})
	require.NoError(t, err)
	require.Equal(t, pricing.Quote{VIPCount: 1, StandardCount: 2, TotalCents: 2500}, q)

	// Quoting never reserves anything.
	remaining, err := f.inv.Remaining(f.event.ID)
	require.NoError(t, err)
	require.Equal(t, 60, remaining)

	_, err = f.coord.Quote(context.Background(), "jazz-night", []string{"H1"})
	var invalid *InvalidSeatError
	require.ErrorAs(t, err, &invalid)
}

// TestBookingLifecycle walks the full scenario: a tiny two-seat event
// where a contested seat is booked, re-requested, freed by a
// cancellation and booked again.
func TestBookingLifecycle(t *testing.T) {
	f := newFixture(t, 2, 1500, 500)
	ctx := context.Background()

	first, err := f.coord.Book(ctx, user(1), "jazz-night", []string{"A1"})
	require.NoError(t, err)
	require.Equal(t, uint32(1500), first.TotalCents)
	remaining, _ := f.inv.Remaining(f.event.ID)
	require.Equal(t, 1, remaining)

	_, err = f.coord.Book(ctx, user(2), "jazz-night", []string{"A1"})
	var conflict *inventory.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, []string{"A1"}, conflict.Seats)

	second, err := f.coord.Book(ctx, user(2), "jazz-night", []string{"C1"})
	require.NoError(t, err)
	require.Equal(t, uint32(500), second.TotalCents)
	remaining, _ = f.inv.Remaining(f.event.ID)
	require.Equal(t, 0, remaining)

	// The event is sold out now.
	_, err = f.coord.Book(ctx, user(3), "jazz-night", []string{"B1"})
	var capacity *inventory.CapacityError
	require.ErrorAs(t, err, &capacity)
	require.Equal(t, 1, capacity.Requested)
	require.Equal(t, 0, capacity.Remaining)

	require.NoError(t, f.coord.Cancel(ctx, first.ID, 1, false))
	remaining, _ = f.inv.Remaining(f.event.ID)
	require.Equal(t, 1, remaining)

	third, err := f.coord.Book(ctx, user(3), "jazz-night", []string{"A1"})
	require.NoError(t, err)
	require.Equal(t, []string{"A1"}, third.SeatLabels())

	require.Eventually(t, func() bool {
		return f.notifier.confirmedCount() == 3 && f.notifier.cancelledCount() == 1
	}, time.Second, 10*time.Millisecond)
}
