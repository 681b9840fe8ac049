package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/reikiduel/reiki-server-go/internal/catalog"
)

// Mode distinguishes who controls seat 0. Seat 1 is always driven by whatever
// Driver the session was given for it.
type Mode string

const (
	// ModeHuman means seat 0 submits actions through an external relay.
	ModeHuman Mode = "human"
	// ModeAuto means both seats are automated.
	ModeAuto Mode = "auto"
)

// Rules are the per-session tuning knobs. Zero values fall back to the
// defaults when a session starts.
type Rules struct {
	ReikiCeiling     int
	BasesPerSeat     int
	GaugePerBase     int
	CapturesToWin    int
	MaxTurns         int
	OpeningHand      int
	DeckCopies       int
	ResourceDeckSize int
}

// DefaultRules returns the standard match configuration.
func DefaultRules() Rules {
	return Rules{
		ReikiCeiling:     10,
		BasesPerSeat:     3,
		GaugePerBase:     2,
		CapturesToWin:    2,
		MaxTurns:         30,
		OpeningHand:      5,
		DeckCopies:       2,
		ResourceDeckSize: 10,
	}
}

func (r Rules) withDefaults() Rules {
	def := DefaultRules()
	if r.ReikiCeiling <= 0 {
		r.ReikiCeiling = def.ReikiCeiling
	}
	if r.BasesPerSeat <= 0 {
		r.BasesPerSeat = def.BasesPerSeat
	}
	if r.GaugePerBase <= 0 {
		r.GaugePerBase = def.GaugePerBase
	}
	if r.CapturesToWin <= 0 {
		r.CapturesToWin = def.CapturesToWin
	}
	if r.MaxTurns <= 0 {
		r.MaxTurns = def.MaxTurns
	}
	if r.OpeningHand <= 0 {
		r.OpeningHand = def.OpeningHand
	}
	if r.DeckCopies <= 0 {
		r.DeckCopies = def.DeckCopies
	}
	if r.ResourceDeckSize <= 0 {
		r.ResourceDeckSize = def.ResourceDeckSize
	}
	return r
}

// Result is the terminal outcome of a session.
type Result struct {
	Winner *Seat  `json:"winner,omitempty"`
	Draw   bool   `json:"draw"`
	Turns  int    `json:"turns"`
	Reason string `json:"reason"`
}

// Result reasons.
const (
	ReasonBaseCapture = "base_capture"
	ReasonTurnLimit   = "turn_limit"
	ReasonCanceled    = "canceled"
)

// GameState is the single mutable state of one session. It is owned by the
// session goroutine; nothing else writes to it.
type GameState struct {
	Players    [2]*Player
	Turn       int
	ActiveSeat Seat
	Phase      Phase
	Winner     *Seat
	Mode       Mode
}

// player returns the state for one seat.
func (gs *GameState) player(seat Seat) *Player {
	return gs.Players[seat]
}

// setWinner records the winning seat. Only the first call takes effect.
func (gs *GameState) setWinner(seat Seat) bool {
	if gs.Winner != nil {
		return false
	}
	winner := seat
	gs.Winner = &winner
	return true
}

// capturedBy counts the opposing bases the seat has taken.
func (gs *GameState) capturedBy(seat Seat) int {
	return gs.player(seat.Other()).capturedBasesBy(seat)
}

// resetFieldPowers restores printed power on every fielded card of both
// seats. Buffs are turn-scoped no matter which seat they landed on.
func (gs *GameState) resetFieldPowers() {
	for _, p := range gs.Players {
		for _, sl := range slotOrder {
			if c := p.Field[sl]; c != nil {
				c.ResetPower()
			}
		}
	}
}

// unrestField readies every fielded card of one seat.
func (gs *GameState) unrestField(seat Seat) {
	p := gs.player(seat)
	for _, sl := range slotOrder {
		if c := p.Field[sl]; c != nil {
			c.Rested = false
		}
	}
}

// newGameState builds both seats from the finalized catalog: shuffled main
// deck, resource deck, base gauges seeded from the resource deck, and the
// opening hand. Errors here are bootstrap failures; they never occur
// mid-session.
func newGameState(defs []catalog.CardDefinition, names [2]string, mode Mode, rules Rules, rng *rand.Rand, shuffle bool) (*GameState, error) {
	if err := catalog.Validate(defs); err != nil {
		return nil, err
	}

	gaugeCards := rules.BasesPerSeat * rules.GaugePerBase
	if rules.ResourceDeckSize < gaugeCards {
		return nil, fmt.Errorf("resource deck size %d cannot seed %d gauge cards", rules.ResourceDeckSize, gaugeCards)
	}

	gs := &GameState{
		Turn:       1,
		ActiveSeat: SeatFirst,
		Phase:      PhaseStart,
		Mode:       mode,
	}

	for seat := SeatFirst; seat <= SeatSecond; seat++ {
		p := newPlayer(names[seat])

		p.MainDeck = buildMainDeck(defs, rules.DeckCopies)
		if len(p.MainDeck) < rules.OpeningHand {
			return nil, fmt.Errorf("card set builds a %d card deck, opening hand needs %d", len(p.MainDeck), rules.OpeningHand)
		}
		if shuffle {
			rng.Shuffle(len(p.MainDeck), func(i, j int) {
				p.MainDeck[i], p.MainDeck[j] = p.MainDeck[j], p.MainDeck[i]
			})
		}

		p.ResourceDeck = buildResourceDeck(defs, rules.ResourceDeckSize)

		for i := 0; i < rules.BasesPerSeat; i++ {
			gauge := make([]*Card, 0, rules.GaugePerBase)
			for g := 0; g < rules.GaugePerBase; g++ {
				top := p.ResourceDeck[len(p.ResourceDeck)-1]
				p.ResourceDeck = p.ResourceDeck[:len(p.ResourceDeck)-1]
				gauge = append(gauge, top)
			}
			p.Bases = append(p.Bases, newBase(fmt.Sprintf("base-%d", i+1), gauge))
		}

		for i := 0; i < rules.OpeningHand; i++ {
			p.drawOne()
		}

		gs.Players[seat] = p
	}

	return gs, nil
}

// buildMainDeck instantiates the configured number of copies of every
// non-resource definition, in catalog order.
func buildMainDeck(defs []catalog.CardDefinition, copies int) []*Card {
	var deck []*Card
	for _, def := range defs {
		if def.Type == catalog.TypeResource {
			continue
		}
		for i := 0; i < copies; i++ {
			deck = append(deck, newCard(def))
		}
	}
	return deck
}

// buildResourceDeck cycles the resource definitions until the deck holds the
// requested number of cards.
func buildResourceDeck(defs []catalog.CardDefinition, size int) []*Card {
	var sources []catalog.CardDefinition
	for _, def := range defs {
		if def.Type == catalog.TypeResource {
			sources = append(sources, def)
		}
	}
	deck := make([]*Card, 0, size)
	for i := 0; i < size; i++ {
		deck = append(deck, newCard(sources[i%len(sources)]))
	}
	return deck
}
