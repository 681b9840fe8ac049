package integration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/reikiduel/reiki-server-go/internal/bot"
	"github.com/reikiduel/reiki-server-go/internal/catalog"
	"github.com/reikiduel/reiki-server-go/internal/config"
	"github.com/reikiduel/reiki-server-go/internal/game"
)

// newBotDuel wires a full session from live config defaults, the embedded
// catalog, and two bot drivers, the same way cmd/duel does in auto mode.
func newBotDuel(t testing.TB, seed uint64) *game.Session {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	logger := zaptest.NewLogger(t)
	driver := bot.New(logger.Named("bot"), 0)

	sess, err := game.NewSession(game.Options{
		Names:   [2]string{"east", "west"},
		Mode:    game.ModeAuto,
		Rules:   cfg.Game.Rules(),
		Catalog: catalog.Default(),
		Drivers: [2]game.Driver{driver, driver},
		Logger:  logger,
		Seed:    seed,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return sess
}

// cardsInPlay counts every zone a player's cards can occupy.
func cardsInPlay(p game.PlayerSnapshot) int {
	total := p.DeckCount + len(p.Hand) + len(p.Trash) + len(p.Field) + p.ResourceCount
	for _, b := range p.Bases {
		total += b.Gauge
	}
	return total
}

// TestDuelFlowConservesCards drives a complete bot duel and checks, on every
// published snapshot, that no card is ever duplicated or lost: each seat owns
// exactly its main deck plus its resource deck, distributed across zones.
func TestDuelFlowConservesCards(t *testing.T) {
	sess := newBotDuel(t, 3)
	rules := sess.Rules()
	wantPerSeat := 26*rules.DeckCopies + rules.ResourceDeckSize

	var snapshots []*game.Snapshot
	sess.Events().SubscribeTyped(game.EventSnapshot, func(ev game.Event) {
		snapshots = append(snapshots, ev.Snapshot)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	res := sess.Run(ctx)

	if res.Reason == game.ReasonCanceled {
		t.Fatalf("duel did not finish in time")
	}
	if len(snapshots) == 0 {
		t.Fatalf("no snapshots published")
	}

	for i, snap := range snapshots {
		for seat, p := range snap.Players {
			if got := cardsInPlay(p); got != wantPerSeat {
				t.Fatalf("snapshot %d seat %d: %d cards in play, want %d", i, seat, got, wantPerSeat)
			}
		}
	}

	final := snapshots[len(snapshots)-1]
	if final.Turn > rules.MaxTurns {
		t.Errorf("final snapshot turn %d exceeds limit %d", final.Turn, rules.MaxTurns)
	}
	if res.Winner == nil && !res.Draw {
		t.Errorf("result is neither a win nor a draw: %+v", res)
	}
}

// TestDuelFlowIsReproducible runs the same seed twice through the whole
// stack and compares the final board states byte for byte.
func TestDuelFlowIsReproducible(t *testing.T) {
	finals := make([][]byte, 2)
	results := make([]game.Result, 2)

	for i := range finals {
		sess := newBotDuel(t, 11)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		res := sess.Run(ctx)
		cancel()

		raw, err := json.Marshal(scrubIdentity(sess.Snapshot()))
		if err != nil {
			t.Fatalf("marshal final snapshot: %v", err)
		}
		finals[i] = raw
		results[i] = res
	}

	a, b := results[0], results[1]
	if a.Draw != b.Draw || a.Turns != b.Turns || a.Reason != b.Reason {
		t.Fatalf("results differ: %+v vs %+v", a, b)
	}
	if (a.Winner == nil) != (b.Winner == nil) {
		t.Fatalf("winners differ: %+v vs %+v", a.Winner, b.Winner)
	}
	if a.Winner != nil && *a.Winner != *b.Winner {
		t.Fatalf("winners differ: %v vs %v", *a.Winner, *b.Winner)
	}
	if string(finals[0]) != string(finals[1]) {
		t.Fatalf("final snapshots differ for the same seed")
	}
}

// scrubIdentity blanks the per-run identifiers so two runs can be compared.
func scrubIdentity(snap *game.Snapshot) *game.Snapshot {
	snap.SessionID = ""
	for seat := range snap.Players {
		p := &snap.Players[seat]
		for i := range p.Hand {
			p.Hand[i].ID = ""
		}
		for i := range p.Trash {
			p.Trash[i].ID = ""
		}
		for slot, card := range p.Field {
			card.ID = ""
			p.Field[slot] = card
		}
	}
	return snap
}

// TestDuelFlowHumanRelay plays the human path end to end: an external caller
// submits for seat 0 while a bot holds seat 1, mirroring a websocket client.
func TestDuelFlowHumanRelay(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	rules := cfg.Game.Rules()
	rules.MaxTurns = 2

	// Catalog order deals the bot nothing but event cards for its first
	// turns, so the match always runs to the turn limit.
	logger := zaptest.NewLogger(t)
	sess, err := game.NewSession(game.Options{
		Names:     [2]string{"human", "bot"},
		Mode:      game.ModeHuman,
		Rules:     rules,
		Catalog:   catalog.Default(),
		Drivers:   [2]game.Driver{nil, bot.New(logger.Named("bot"), 0)},
		Logger:    logger,
		NoShuffle: true,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	done := make(chan game.Result, 1)
	go func() { done <- sess.Run(ctx) }()

	// Two phase passes per turn for the human seat. A pass submitted while
	// the bot still holds the turn bounces; retry until it lands.
	ends := 0
	for ends < 2*rules.MaxTurns {
		err := sess.Submit(game.ActionRequest{Kind: game.ActionEndPhase, Seat: game.SeatFirst})
		switch {
		case err == nil:
			ends++
		case errors.Is(err, game.ErrInvalidAction):
			time.Sleep(time.Millisecond)
		case errors.Is(err, game.ErrSessionFinished):
			t.Fatalf("session finished after %d phase ends", ends)
		default:
			t.Fatalf("submit: %v", err)
		}
	}

	res := <-done
	if !res.Draw || res.Reason != game.ReasonTurnLimit {
		t.Fatalf("want a turn limit draw, got %+v", res)
	}
	if res.Turns != rules.MaxTurns {
		t.Fatalf("want %d turns, got %d", rules.MaxTurns, res.Turns)
	}
}
