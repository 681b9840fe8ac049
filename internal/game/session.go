package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reikiduel/reiki-server-go/internal/catalog"
)

// ErrSessionFinished is returned by Submit once the session has produced its
// result.
var ErrSessionFinished = errors.New("session finished")

// Options configure a session. Catalog is the only required field; everything
// else has a usable zero value.
type Options struct {
	SessionID string
	Names     [2]string
	Mode      Mode
	Rules     Rules
	Catalog   []catalog.CardDefinition
	Drivers   [2]Driver
	Logger    *zap.Logger

	// Seed fixes the shuffle; zero picks a random seed. NoShuffle keeps
	// both decks in catalog order, which scripted matches rely on.
	Seed      uint64
	NoShuffle bool

	// StepDelay pauses between observable steps so spectators can follow
	// an automated match. Zero runs flat out.
	StepDelay time.Duration
}

type actionEnvelope struct {
	req   ActionRequest
	reply chan error
}

// Session runs one match. All state mutation happens on the goroutine that
// called Run; requests reach it through Submit and the actions channel, and
// snapshots for other goroutines go through the read lock.
type Session struct {
	id      string
	logger  *zap.Logger
	rules   Rules
	delay   time.Duration
	bus     *Bus
	drivers [2]Driver

	mu      sync.RWMutex
	state   *GameState
	tracker *turnTracker

	pending []Event
	actions chan actionEnvelope
	done    chan struct{}
	runOnce sync.Once
	result  Result
}

// NewSession deals both seats and returns a session ready to Run. A catalog
// that fails validation, or rules the catalog cannot satisfy, surface here
// and nowhere later.
func NewSession(opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := opts.Rules.withDefaults()
	mode := opts.Mode
	if mode == "" {
		mode = ModeHuman
	}
	names := opts.Names
	if names[SeatFirst] == "" {
		names[SeatFirst] = "Player 1"
	}
	if names[SeatSecond] == "" {
		names[SeatSecond] = "Player 2"
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	state, err := newGameState(opts.Catalog, names, mode, rules, rng, !opts.NoShuffle)
	if err != nil {
		return nil, fmt.Errorf("session bootstrap: %w", err)
	}

	id := opts.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	return &Session{
		id:      id,
		logger:  logger.With(zap.String("session_id", id)),
		rules:   rules,
		delay:   opts.StepDelay,
		bus:     NewBus(),
		drivers: opts.Drivers,
		state:   state,
		tracker: newTurnTracker(),
		actions: make(chan actionEnvelope, 16),
		done:    make(chan struct{}),
	}, nil
}

func (s *Session) ID() string { return s.id }

// Events exposes the session bus. Subscribe before Run to see the opening
// snapshot.
func (s *Session) Events() *Bus { return s.bus }

func (s *Session) Rules() Rules { return s.rules }

// Done closes when the session has finished and Result is valid.
func (s *Session) Done() <-chan struct{} { return s.done }

// Result is the terminal outcome. Callers wait on Done first.
func (s *Session) Result() Result {
	<-s.done
	return s.result
}

// Snapshot returns a deep copy of the current state, safe to read and
// serialize from any goroutine.
func (s *Session) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotState(s.id, s.state)
}

// Submit hands a request to the session goroutine and blocks for the
// verdict. Rejections come back wrapping ErrInvalidAction; a finished
// session returns ErrSessionFinished.
func (s *Session) Submit(req ActionRequest) error {
	env := actionEnvelope{req: req, reply: make(chan error, 1)}
	select {
	case s.actions <- env:
	case <-s.done:
		return ErrSessionFinished
	}
	select {
	case err := <-env.reply:
		return err
	case <-s.done:
		return ErrSessionFinished
	}
}

// Run drives the turn cycle until a seat wins, the turn limit passes, or ctx
// is canceled. It blocks; callers wanting it in the background start their
// own goroutine. Repeat calls return the same result.
func (s *Session) Run(ctx context.Context) Result {
	s.runOnce.Do(func() {
		defer close(s.done)
		s.run(ctx)
	})
	return s.result
}

func (s *Session) run(ctx context.Context) {
	s.logger.Info("session starting",
		zap.String("mode", string(s.state.Mode)),
		zap.String("first", s.state.Players[SeatFirst].Name),
		zap.String("second", s.state.Players[SeatSecond].Name),
		zap.Int("max_turns", s.rules.MaxTurns),
	)
	s.flush()

	for s.state.Winner == nil && ctx.Err() == nil {
		switch s.tracker.Phase() {
		case PhaseStart:
			s.runStart()
		case PhaseMain, PhaseBattle:
			s.awaitPhaseEnd(ctx)
		case PhaseEnd:
			s.runEnd()
		}
		if s.state.Winner != nil || ctx.Err() != nil {
			break
		}
		if !s.advance() {
			break
		}
		s.pace()
	}

	s.finish(ctx)
}

// runStart readies the active seat: un-rest the field, charge reiki, then
// draw. The very first turn of the match skips its draw.
func (s *Session) runStart() {
	seat := s.tracker.Active()
	turn := s.tracker.Turn()

	s.mu.Lock()
	s.state.unrestField(seat)
	p := s.state.player(seat)
	p.Reiki.Charge(s.rules.ReikiCeiling)
	current, limit := p.Reiki.Current, p.Reiki.Max
	s.mu.Unlock()

	s.logger.Info("turn started",
		zap.Int("turn", turn),
		zap.String("seat", seat.String()),
		zap.Int("reiki", current),
	)
	s.notice(NoticeInfo, seat, fmt.Sprintf("%s readies the field, reiki %d/%d", s.playerName(seat), current, limit))
	s.flush()
	s.pace()

	if turn == 1 && seat == SeatFirst {
		s.notice(NoticeInfo, seat, fmt.Sprintf("%s skips the opening draw", s.playerName(seat)))
		s.flush()
		return
	}

	s.mu.Lock()
	s.drawCards(seat, 1)
	s.mu.Unlock()
	s.flush()
}

// runEnd clears turn-scoped power buffs on both fields and makes the final
// win check of the turn.
func (s *Session) runEnd() {
	seat := s.tracker.Active()

	s.mu.Lock()
	s.state.resetFieldPowers()
	for _, check := range []Seat{seat, seat.Other()} {
		if s.state.capturedBy(check) >= s.rules.CapturesToWin {
			s.declareWinner(check)
			break
		}
	}
	s.mu.Unlock()

	s.notice(NoticeInfo, seat, "power buffs wear off")
	s.flush()
}

// awaitPhaseEnd suspends the session for the active seat's MAIN or BATTLE
// phase, applying submitted requests until one legally ends the phase, the
// seat wins mid-phase, or ctx is canceled. The seat's driver, if any, is
// started on its own goroutine.
func (s *Session) awaitPhaseEnd(ctx context.Context) {
	seat := s.tracker.Active()
	phase := s.tracker.Phase()

	if driver := s.drivers[seat]; driver != nil {
		go driver.Act(ctx, s, seat, phase)
	}

	for {
		select {
		case env := <-s.actions:
			err := s.applyAction(env.req)
			env.reply <- err
			if err == nil && env.req.Kind == ActionEndPhase {
				return
			}
			if s.state.Winner != nil {
				return
			}
			s.pace()
		case <-ctx.Done():
			return
		}
	}
}

// advance moves the tracker one phase and mirrors it into the shared state.
// It reports false instead of starting a turn past the limit, leaving the
// state on the final END phase.
func (s *Session) advance() bool {
	phase := s.tracker.Advance()
	if s.tracker.Turn() > s.rules.MaxTurns {
		return false
	}

	s.mu.Lock()
	s.state.Phase = phase
	s.state.Turn = s.tracker.Turn()
	s.state.ActiveSeat = s.tracker.Active()
	active := s.state.ActiveSeat
	s.mu.Unlock()

	s.queue(Event{Type: EventPhaseChanged, Seat: active, Message: phase.String()})
	s.flush()
	return true
}

func (s *Session) finish(ctx context.Context) {
	result := Result{Turns: s.state.Turn}
	switch {
	case s.state.Winner != nil:
		winner := *s.state.Winner
		result.Winner = &winner
		result.Reason = ReasonBaseCapture
	case ctx.Err() != nil:
		result.Reason = ReasonCanceled
	default:
		result.Draw = true
		result.Reason = ReasonTurnLimit
	}
	s.result = result

	s.logger.Info("session finished",
		zap.String("reason", result.Reason),
		zap.Int("turns", result.Turns),
		zap.Bool("draw", result.Draw),
	)
	s.queue(Event{Type: EventFinished, Result: &result})
	s.flush()
}

// declareWinner records the win. Callers hold the write lock.
func (s *Session) declareWinner(seat Seat) {
	if !s.state.setWinner(seat) {
		return
	}
	s.logger.Info("winner decided", zap.String("seat", seat.String()))
	s.notice(NoticeInfo, seat, fmt.Sprintf("%s wins the duel", s.state.player(seat).Name))
}

// drawCards moves up to n cards from deck to hand. Running dry is a notice,
// never an error; the duel continues. Callers hold the write lock.
func (s *Session) drawCards(seat Seat, n int) int {
	p := s.state.player(seat)
	drawn := 0
	for i := 0; i < n; i++ {
		if _, ok := p.drawOne(); !ok {
			s.notice(NoticeInfo, seat, fmt.Sprintf("%s's main deck is empty, draw skipped", p.Name))
			break
		}
		drawn++
	}
	if drawn > 0 {
		s.notice(NoticeInfo, seat, fmt.Sprintf("%s draws %d", p.Name, drawn))
	}
	return drawn
}

// queue buffers an event for the next flush. Only the session goroutine and
// single-threaded tests touch the buffer.
func (s *Session) queue(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	s.pending = append(s.pending, ev)
}

func (s *Session) notice(level string, seat Seat, message string) {
	s.queue(Event{Type: EventNotice, Seat: seat, Level: level, Message: message})
}

// flush publishes the buffered events followed by a fresh snapshot, so every
// observable change ends with the state that produced it. Never call it with
// the write lock held.
func (s *Session) flush() {
	events := s.pending
	s.pending = nil
	for _, ev := range events {
		s.bus.Publish(ev)
	}
	s.bus.Publish(Event{Type: EventSnapshot, Snapshot: s.Snapshot(), Timestamp: time.Now()})
}

func (s *Session) playerName(seat Seat) string {
	return s.state.player(seat).Name
}

func (s *Session) pace() {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
}
