package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/cinematick/internal/model"
)

func TestComputeBreakdown(t *testing.T) {
	ev := &model.Event{VIPPriceCents: 2000, StandardPriceCents: 1000}

	q := Compute(ev, []string{"A1", "A2", "C1"})

	assert.Equal(t, 2, q.VIPCount)
	assert.Equal(t, 1, q.StandardCount)
	assert.Equal(t, uint32(5000), q.TotalCents)
}

func TestComputeIsDeterministic(t *testing.T) {
	ev := &model.Event{VIPPriceCents: 1500, StandardPriceCents: 500}
	seats := []string{"B3", "F10", "A1"}

	first := Compute(ev, seats)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Compute(ev, seats))
	}
}

func TestComputeEmptySeats(t *testing.T) {
	ev := &model.Event{VIPPriceCents: 2000, StandardPriceCents: 1000}

	q := Compute(ev, nil)

	assert.Zero(t, q.VIPCount)
	assert.Zero(t, q.StandardCount)
	assert.Zero(t, q.TotalCents)
}

func TestSeatPrice(t *testing.T) {
	ev := &model.Event{VIPPriceCents: 2000, StandardPriceCents: 1000}

	assert.Equal(t, uint32(2000), SeatPrice(ev, "A5"))
	assert.Equal(t, uint32(2000), SeatPrice(ev, "B10"))
	assert.Equal(t, uint32(1000), SeatPrice(ev, "C1"))
	assert.Equal(t, uint32(1000), SeatPrice(ev, "F10"))
}

func TestTierOf(t *testing.T) {
	assert.Equal(t, model.TierVIP, model.TierOf("A1"))
	assert.Equal(t, model.TierVIP, model.TierOf("B7"))
	assert.Equal(t, model.TierStandard, model.TierOf("C1"))
	assert.Equal(t, model.TierStandard, model.TierOf("F10"))
}

func TestValidSeat(t *testing.T) {
	valid := []string{"A1", "A10", "B5", "F10", "C9"}
	for _, s := range valid {
		assert.True(t, model.ValidSeat(s), s)
	}
	invalid := []string{"", "A", "A0", "A11", "G1", "a1", "A01", "1A", "AA1", "A1x"}
	for _, s := range invalid {
		assert.False(t, model.ValidSeat(s), s)
	}
}
