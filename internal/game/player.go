package game

import "fmt"

// Seat indexes one of the two competing sides. Seat 0 acts first.
type Seat int

const (
	SeatFirst  Seat = 0
	SeatSecond Seat = 1
)

// Other returns the opposing seat.
func (s Seat) Other() Seat {
	return 1 - s
}

// Valid reports whether the value indexes a real seat.
func (s Seat) Valid() bool {
	return s == SeatFirst || s == SeatSecond
}

func (s Seat) String() string {
	return fmt.Sprintf("seat-%d", int(s))
}

// Slot names one of the five fixed field positions. Units occupy vanguard or
// rearguard slots, support cards the single support slot.
type Slot string

const (
	SlotVanguard1  Slot = "vanguard-1"
	SlotVanguard2  Slot = "vanguard-2"
	SlotRearguard1 Slot = "rearguard-1"
	SlotRearguard2 Slot = "rearguard-2"
	SlotSupport    Slot = "support"
)

// slotOrder fixes the encounter order used by every tie-break that scans the
// field.
var slotOrder = []Slot{SlotVanguard1, SlotVanguard2, SlotRearguard1, SlotRearguard2, SlotSupport}

// unitSlots in placement preference order: vanguard before rearguard.
var unitSlots = []Slot{SlotVanguard1, SlotVanguard2, SlotRearguard1, SlotRearguard2}

// rearguardSlots are the positions deck-search skills may fill.
var rearguardSlots = []Slot{SlotRearguard1, SlotRearguard2}

// Valid reports whether the slot names a real field position.
func (sl Slot) Valid() bool {
	switch sl {
	case SlotVanguard1, SlotVanguard2, SlotRearguard1, SlotRearguard2, SlotSupport:
		return true
	}
	return false
}

// IsUnitSlot reports whether units may occupy the slot.
func (sl Slot) IsUnitSlot() bool {
	return sl != SlotSupport && sl.Valid()
}

// Accepts reports whether a card of the given kind may be placed in the slot.
func (sl Slot) Accepts(c *Card) bool {
	if c.IsUnit() {
		return sl.IsUnitSlot()
	}
	return sl == SlotSupport
}

// ReikiPool tracks a seat's spendable resource. Max only ever grows, one
// point per turn, until it reaches the session ceiling.
type ReikiPool struct {
	Current int
	Max     int
}

// Charge raises the maximum by one up to the ceiling and refills the pool.
func (rp *ReikiPool) Charge(ceiling int) {
	if rp.Max < ceiling {
		rp.Max++
	}
	rp.Current = rp.Max
}

// Gain adds points, capped at the current maximum.
func (rp *ReikiPool) Gain(n int) {
	if n <= 0 {
		return
	}
	rp.Current += n
	if rp.Current > rp.Max {
		rp.Current = rp.Max
	}
}

// Spend debits the pool. It reports false, leaving the pool untouched, when
// fewer than n points are available.
func (rp *ReikiPool) Spend(n int) bool {
	if n < 0 || n > rp.Current {
		return false
	}
	rp.Current -= n
	return true
}

// Player holds everything one seat owns: decks, hand, trash, the five field
// slots, the reiki pool, and the bases on its own side of the table. Those
// bases are the opposing seat's attack targets.
type Player struct {
	Name         string
	MainDeck     []*Card
	ResourceDeck []*Card
	Hand         []*Card
	Trash        []*Card
	Field        map[Slot]*Card
	Reiki        ReikiPool
	Bases        []*Base
}

func newPlayer(name string) *Player {
	return &Player{
		Name:  name,
		Field: make(map[Slot]*Card, len(slotOrder)),
	}
}

// drawOne takes the top card of the main deck. Decks draw from the end of the
// slice; the front is the bottom.
func (p *Player) drawOne() (*Card, bool) {
	if len(p.MainDeck) == 0 {
		return nil, false
	}
	c := p.MainDeck[len(p.MainDeck)-1]
	p.MainDeck = p.MainDeck[:len(p.MainDeck)-1]
	p.Hand = append(p.Hand, c)
	return c, true
}

// handCard finds a hand card by instance ID.
func (p *Player) handCard(cardID string) (*Card, int) {
	for i, c := range p.Hand {
		if c.ID == cardID {
			return c, i
		}
	}
	return nil, -1
}

// removeFromHand drops the card at the given hand index.
func (p *Player) removeFromHand(idx int) *Card {
	c := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return c
}

// fieldCard locates a fielded card by instance ID.
func (p *Player) fieldCard(cardID string) (*Card, Slot) {
	for _, sl := range slotOrder {
		if c := p.Field[sl]; c != nil && c.ID == cardID {
			return c, sl
		}
	}
	return nil, ""
}

// fieldUnits returns the seat's fielded unit cards in encounter order,
// paired with their slots.
func (p *Player) fieldUnits() ([]*Card, []Slot) {
	var cards []*Card
	var slots []Slot
	for _, sl := range slotOrder {
		if c := p.Field[sl]; c != nil && c.IsUnit() {
			cards = append(cards, c)
			slots = append(slots, sl)
		}
	}
	return cards, slots
}

// freeSlot returns the first empty slot from the candidates, in order.
func (p *Player) freeSlot(candidates []Slot) (Slot, bool) {
	for _, sl := range candidates {
		if p.Field[sl] == nil {
			return sl, true
		}
	}
	return "", false
}

// removeFromField clears the slot holding the card and normalizes it for the
// next zone.
func (p *Player) removeFromField(slot Slot) *Card {
	c := p.Field[slot]
	if c == nil {
		return nil
	}
	delete(p.Field, slot)
	c.leaveField()
	return c
}

// discard moves a card to the trash pile.
func (p *Player) discard(c *Card) {
	p.Trash = append(p.Trash, c)
}

// base returns the base with the given identifier on this player's side.
func (p *Player) base(id string) *Base {
	for _, b := range p.Bases {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// capturedBasesBy counts this player's bases already taken by the given seat.
func (p *Player) capturedBasesBy(seat Seat) int {
	n := 0
	for _, b := range p.Bases {
		if b.Owner != nil && *b.Owner == seat {
			n++
		}
	}
	return n
}
