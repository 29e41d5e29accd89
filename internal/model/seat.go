package model

// Seat identifiers are row letter plus column number, e.g. "A1".
// The grid is static per deployment: rows A through F, ten seats per
// row.  Rows A and B are the VIP tier; every other row is standard.
// The grid rules are constants rather than configuration so the
// pricing calculator stays a pure function of the seat label.

// SeatTier classifies a seat for pricing.
type SeatTier string

const (
	TierVIP      SeatTier = "VIP"
	TierStandard SeatTier = "STANDARD"
)

const (
	// FirstRow and LastRow bound the valid row letters of the grid.
	FirstRow = 'A'
	LastRow  = 'F'
	// SeatsPerRow is the number of seats in each row.
	SeatsPerRow = 10
)

// vipRows is the fixed set of rows priced at the VIP tier.
var vipRows = map[byte]bool{'A': true, 'B': true}

// ValidSeat reports whether label names a seat that exists on the
// grid.  Valid labels are a single upper-case row letter followed by
// a column number between 1 and SeatsPerRow with no leading zero.
func ValidSeat(label string) bool {
	if len(label) < 2 || len(label) > 3 {
		return false
	}
	row := label[0]
	if row < FirstRow || row > LastRow {
		return false
	}
	num := 0
	for i := 1; i < len(label); i++ {
		d := label[i]
		if d < '0' || d > '9' {
			return false
		}
		num = num*10 + int(d-'0')
	}
	if label[1] == '0' {
		return false
	}
	return num >= 1 && num <= SeatsPerRow
}

// TierOf returns the pricing tier for a seat label.  The caller is
// expected to have validated the label; unknown rows fall back to the
// standard tier.
func TierOf(label string) SeatTier {
	if len(label) > 0 && vipRows[label[0]] {
		return TierVIP
	}
	return TierStandard
}
