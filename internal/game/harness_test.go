package game

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/reikiduel/reiki-server-go/internal/catalog"
)

// driverFunc adapts a plain function to the Driver interface so tests can
// script a seat inline.
type driverFunc func(ctx context.Context, sess *Session, seat Seat, phase Phase)

func (f driverFunc) Act(ctx context.Context, sess *Session, seat Seat, phase Phase) {
	f(ctx, sess, seat, phase)
}

// endPhases immediately ends every phase it is woken for.
var endPhases = driverFunc(func(_ context.Context, sess *Session, seat Seat, _ Phase) {
	_ = sess.Submit(ActionRequest{Kind: ActionEndPhase, Seat: seat})
})

// newTestSession builds a deterministic session against the embedded card
// set: fixed seed, no step delay. Tests that need a specific board mutate
// the returned state directly before driving it.
func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	if opts.Seed == 0 {
		opts.Seed = 7
	}
	sess, err := NewSession(opts)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return sess
}

func defByName(t *testing.T, name string) catalog.CardDefinition {
	t.Helper()
	def, ok := catalog.Find(catalog.Default(), name)
	if !ok {
		t.Fatalf("card %q not in the default set", name)
	}
	return def
}

// put places a fresh copy of the named card on a seat's field slot.
func put(t *testing.T, sess *Session, seat Seat, slot Slot, name string) *Card {
	t.Helper()
	c := newCard(defByName(t, name))
	sess.state.player(seat).Field[slot] = c
	return c
}

// give adds a fresh copy of the named card to a seat's hand.
func give(t *testing.T, sess *Session, seat Seat, name string) *Card {
	t.Helper()
	c := newCard(defByName(t, name))
	p := sess.state.player(seat)
	p.Hand = append(p.Hand, c)
	return c
}

// jumpTo forces the session into a phase for one seat without running the
// turn cycle. Only single-threaded tests use it.
func jumpTo(sess *Session, seat Seat, phase Phase) {
	sess.state.ActiveSeat = seat
	sess.state.Phase = phase
}

// bareSession strips the dealt zones so a test can lay out hands, decks and
// fields from nothing.
func bareSession(t *testing.T) *Session {
	t.Helper()
	sess := newTestSession(t, Options{NoShuffle: true})
	for seat := SeatFirst; seat <= SeatSecond; seat++ {
		p := sess.state.player(seat)
		p.Hand = nil
		p.MainDeck = nil
		p.Trash = nil
	}
	return sess
}
