package game

import "fmt"

// Phase represents one of the four phases of a turn.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseMain
	PhaseBattle
	PhaseEnd
)

var phaseNames = map[Phase]string{
	PhaseStart:  "START",
	PhaseMain:   "MAIN",
	PhaseBattle: "BATTLE",
	PhaseEnd:    "END",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// turnSequence is the fixed per-turn phase order. No phase is revisited
// within a turn.
var turnSequence = []Phase{PhaseStart, PhaseMain, PhaseBattle, PhaseEnd}

// turnTracker walks the phase sequence and rotates the active seat. The turn
// number increments only when control returns to the first seat.
type turnTracker struct {
	orderIndex int
	turn       int
	active     Seat
}

// newTurnTracker starts at turn 1, START phase, first seat active.
func newTurnTracker() *turnTracker {
	return &turnTracker{turn: 1, active: SeatFirst}
}

// Phase returns the phase currently in progress.
func (tt *turnTracker) Phase() Phase {
	return turnSequence[tt.orderIndex]
}

// Turn returns the current turn number (1-based).
func (tt *turnTracker) Turn() int {
	return tt.turn
}

// Active returns the seat that owns the current turn.
func (tt *turnTracker) Active() Seat {
	return tt.active
}

// Advance moves to the next phase. Reaching the end of the sequence hands the
// turn to the other seat and, when that seat is the first one, increments the
// turn number.
func (tt *turnTracker) Advance() Phase {
	tt.orderIndex++
	if tt.orderIndex >= len(turnSequence) {
		tt.orderIndex = 0
		tt.active = tt.active.Other()
		if tt.active == SeatFirst {
			tt.turn++
		}
	}
	return tt.Phase()
}
