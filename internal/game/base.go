package game

// Base is a contested objective on one seat's side of the field. Its gauge is
// an ordered stack of cards; each successful unguarded attack knocks off the
// top card. Owner stays nil until the gauge empties, is then set to the
// attacking seat exactly once, and never changes again.
type Base struct {
	ID    string
	Gauge []*Card
	Owner *Seat
}

func newBase(id string, gauge []*Card) *Base {
	return &Base{ID: id, Gauge: gauge}
}

// Captured reports whether the base has been taken.
func (b *Base) Captured() bool {
	return b.Owner != nil
}

// GaugeCount returns the cards remaining in the gauge stack.
func (b *Base) GaugeCount() int {
	return len(b.Gauge)
}

// popGauge removes and returns the top gauge card, or nil when empty.
func (b *Base) popGauge() *Card {
	if len(b.Gauge) == 0 {
		return nil
	}
	top := b.Gauge[len(b.Gauge)-1]
	b.Gauge = b.Gauge[:len(b.Gauge)-1]
	return top
}

// capture assigns the base to the given seat. It is a no-op if the base
// already has an owner or its gauge still holds cards.
func (b *Base) capture(seat Seat) bool {
	if b.Owner != nil || len(b.Gauge) > 0 {
		return false
	}
	owner := seat
	b.Owner = &owner
	return true
}
