package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/reikiduel/reiki-server-go/internal/catalog"
	"github.com/reikiduel/reiki-server-go/internal/game"
)

// Placement and scan preference: vanguard before rearguard.
var unitSlots = []game.Slot{game.SlotVanguard1, game.SlotVanguard2, game.SlotRearguard1, game.SlotRearguard2}

const (
	maxPlaysPerTurn   = 16
	maxAttacksPerTurn = 8
)

// Bot drives one seat with a greedy policy: develop the strongest affordable
// board during MAIN, then pick off strictly weaker units and chip away at
// bases during BATTLE. It reads snapshots and submits requests like any
// other client, so an illegal idea costs it nothing but the notice.
type Bot struct {
	logger *zap.Logger
	delay  time.Duration
}

// New builds a bot. The delay spaces its submissions so a spectator can
// follow along; zero plays instantly.
func New(logger *zap.Logger, delay time.Duration) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{logger: logger, delay: delay}
}

func (b *Bot) Act(ctx context.Context, sess *game.Session, seat game.Seat, phase game.Phase) {
	switch phase {
	case game.PhaseMain:
		b.develop(ctx, sess, seat)
	case game.PhaseBattle:
		b.assault(ctx, sess, seat)
	}
	_ = sess.Submit(game.ActionRequest{Kind: game.ActionEndPhase, Seat: seat})
}

func (b *Bot) develop(ctx context.Context, sess *game.Session, seat game.Seat) {
	for i := 0; i < maxPlaysPerTurn; i++ {
		if ctx.Err() != nil {
			return
		}
		b.think()

		req, ok := bestPlay(sess.Snapshot().Player(seat), seat)
		if !ok {
			return
		}
		if err := sess.Submit(req); err != nil {
			b.logger.Debug("play rejected, ending development",
				zap.String("seat", seat.String()),
				zap.Error(err),
			)
			return
		}
	}
}

func (b *Bot) assault(ctx context.Context, sess *game.Session, seat game.Seat) {
	for i := 0; i < maxAttacksPerTurn; i++ {
		if ctx.Err() != nil {
			return
		}
		b.think()

		snap := sess.Snapshot()
		if snap.Winner != nil {
			return
		}
		req, ok := bestAttack(snap, seat)
		if !ok {
			return
		}
		if err := sess.Submit(req); err != nil {
			b.logger.Debug("attack rejected, ending assault",
				zap.String("seat", seat.String()),
				zap.Error(err),
			)
			return
		}
	}
}

// bestPlay picks the next card to put down: the strongest affordable unit if
// a slot is open, then a support, then any affordable event.
func bestPlay(me *game.PlayerSnapshot, seat game.Seat) (game.ActionRequest, bool) {
	if slot, ok := freeUnitSlot(me); ok {
		best := -1
		for i, c := range me.Hand {
			if c.Type != catalog.TypeUnit || c.Cost > me.Reiki {
				continue
			}
			if best == -1 || c.Power > me.Hand[best].Power {
				best = i
			}
		}
		if best != -1 {
			return game.ActionRequest{Kind: game.ActionPlayCard, Seat: seat, CardID: me.Hand[best].ID, Slot: slot}, true
		}
	}

	if _, occupied := me.FieldCard(game.SlotSupport); !occupied {
		for _, c := range me.Hand {
			if c.Type == catalog.TypeSupport && c.Cost <= me.Reiki {
				return game.ActionRequest{Kind: game.ActionPlayCard, Seat: seat, CardID: c.ID, Slot: game.SlotSupport}, true
			}
		}
	}

	for _, c := range me.Hand {
		if c.Type == catalog.TypeEvent && c.Cost <= me.Reiki {
			return game.ActionRequest{Kind: game.ActionPlayCard, Seat: seat, CardID: c.ID}, true
		}
	}

	return game.ActionRequest{}, false
}

// bestAttack sends the strongest ready unit at the weakest enemy unit it can
// beat outright, or at the first open base when no good trade exists.
func bestAttack(snap *game.Snapshot, seat game.Seat) (game.ActionRequest, bool) {
	me := snap.Player(seat)
	opp := snap.Player(seat.Other())

	var attacker *game.CardSnapshot
	for _, slot := range unitSlots {
		c, ok := me.FieldCard(slot)
		if !ok || c.Rested || c.Type != catalog.TypeUnit {
			continue
		}
		if attacker == nil || c.Power > attacker.Power {
			copied := c
			attacker = &copied
		}
	}
	if attacker == nil {
		return game.ActionRequest{}, false
	}

	targetSlot := game.Slot("")
	var targetPower int
	for _, slot := range unitSlots {
		c, ok := opp.FieldCard(slot)
		if !ok || c.Power >= attacker.Power {
			continue
		}
		if targetSlot == "" || c.Power < targetPower {
			targetSlot = slot
			targetPower = c.Power
		}
	}
	if targetSlot != "" {
		return game.ActionRequest{Kind: game.ActionDeclareAttack, Seat: seat, CardID: attacker.ID, TargetSlot: targetSlot}, true
	}

	for _, base := range opp.Bases {
		if base.Owner == nil {
			return game.ActionRequest{Kind: game.ActionDeclareAttack, Seat: seat, CardID: attacker.ID, TargetBase: base.ID}, true
		}
	}

	return game.ActionRequest{}, false
}

func freeUnitSlot(me *game.PlayerSnapshot) (game.Slot, bool) {
	for _, slot := range unitSlots {
		if _, occupied := me.FieldCard(slot); !occupied {
			return slot, true
		}
	}
	return "", false
}

func (b *Bot) think() {
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
}
