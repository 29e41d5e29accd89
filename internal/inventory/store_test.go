package inventory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveAndRelease(t *testing.T) {
	s := NewStore()
	s.Register(1, 60, nil)

	require.NoError(t, s.Reserve(1, []string{"A1", "A2", "C1"}))

	remaining, err := s.Remaining(1)
	require.NoError(t, err)
	assert.Equal(t, 57, remaining)

	booked, err := s.BookedSeats(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "C1"}, booked)

	require.NoError(t, s.Release(1, []string{"A1", "A2", "C1"}))
	remaining, err = s.Remaining(1)
	require.NoError(t, err)
	assert.Equal(t, 60, remaining)
}

func TestReserveConflictLeavesStateUntouched(t *testing.T) {
	s := NewStore()
	s.Register(1, 60, []string{"A1"})

	err := s.Reserve(1, []string{"A1", "A2"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"A1"}, conflict.Seats)

	// A2 must not have been held by the failed reserve.
	booked, err := s.BookedSeats(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, booked)
}

func TestConflictTakesPrecedenceOverCapacity(t *testing.T) {
	s := NewStore()
	s.Register(1, 1, []string{"A1"})

	// Both failure causes apply: A1 is taken and remaining is zero.
	err := s.Reserve(1, []string{"A1", "A2"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"A1"}, conflict.Seats)
}

func TestReserveInsufficientCapacity(t *testing.T) {
	s := NewStore()
	s.Register(1, 2, []string{"A1"})

	err := s.Reserve(1, []string{"B1", "B2"})
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, capErr.Requested)
	assert.Equal(t, 1, capErr.Remaining)
}

func TestReleaseNotHeld(t *testing.T) {
	s := NewStore()
	s.Register(1, 60, []string{"A1"})

	err := s.Release(1, []string{"A1", "A2"})
	var notHeld *NotHeldError
	require.ErrorAs(t, err, &notHeld)
	assert.Equal(t, []string{"A2"}, notHeld.Seats)

	// Failed release must not have freed A1.
	booked, err := s.BookedSeats(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, booked)
}

func TestUnregisteredEvent(t *testing.T) {
	s := NewStore()

	assert.ErrorIs(t, s.Reserve(42, []string{"A1"}), ErrEventNotRegistered)
	assert.ErrorIs(t, s.Release(42, []string{"A1"}), ErrEventNotRegistered)
	_, err := s.BookedSeats(42)
	assert.ErrorIs(t, err, ErrEventNotRegistered)
}

func TestResize(t *testing.T) {
	s := NewStore()
	s.Register(1, 10, []string{"A1", "A2"})

	assert.ErrorIs(t, s.Resize(1, 1), ErrCapacityBelowHeld)

	require.NoError(t, s.Resize(1, 2))
	remaining, err := s.Remaining(1)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

// TestConcurrentReserveSameSeat races many goroutines for the same
// single seat.  Exactly one must win, and the remaining counter must
// end at total-1.
func TestConcurrentReserveSameSeat(t *testing.T) {
	s := NewStore()
	s.Register(1, 1, nil)

	const racers = 64
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func() {
			defer wg.Done()
			if err := s.Reserve(1, []string{"A1"}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	remaining, err := s.Remaining(1)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

// TestCapacityInvariantUnderChurn hammers one event with concurrent
// reserve/release pairs and checks that held + remaining always
// reconciles with the declared total afterwards.
func TestCapacityInvariantUnderChurn(t *testing.T) {
	s := NewStore()
	s.Register(1, 60, nil)

	var wg sync.WaitGroup
	for w := 0; w < 6; w++ {
		seat := fmt.Sprintf("C%d", w+1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if err := s.Reserve(1, []string{seat}); err == nil {
					_ = s.Release(1, []string{seat})
				}
			}
		}()
	}
	wg.Wait()

	booked, err := s.BookedSeats(1)
	require.NoError(t, err)
	remaining, err := s.Remaining(1)
	require.NoError(t, err)
	assert.Equal(t, 60, remaining+len(booked))
	assert.Empty(t, booked)
}

// TestIndependentEventsDoNotConflict verifies that the same seat
// label is independent across events.
func TestIndependentEventsDoNotConflict(t *testing.T) {
	s := NewStore()
	s.Register(1, 10, nil)
	s.Register(2, 10, nil)

	require.NoError(t, s.Reserve(1, []string{"A1"}))
	require.NoError(t, s.Reserve(2, []string{"A1"}))
}
