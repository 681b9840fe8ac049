package game

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/reikiduel/reiki-server-go/internal/catalog"
)

// ErrInvalidAction wraps every rejected action request. Rejections leave the
// game state untouched; callers can keep submitting.
var ErrInvalidAction = errors.New("invalid action")

// ActionKind names the request kinds the router understands.
type ActionKind string

const (
	ActionPlayCard      ActionKind = "play_card"
	ActionDeclareAttack ActionKind = "declare_attack"
	ActionEndPhase      ActionKind = "end_phase"
)

// ActionRequest is one submitted intent. CardID and the target fields are
// read per kind; unused fields stay empty.
type ActionRequest struct {
	Kind       ActionKind `json:"kind"`
	Seat       Seat       `json:"seat"`
	CardID     string     `json:"card_id,omitempty"`
	Slot       Slot       `json:"slot,omitempty"`
	TargetSlot Slot       `json:"target_slot,omitempty"`
	TargetBase string     `json:"target_base,omitempty"`
}

// applyAction validates and applies one request under the session lock,
// queueing events for the flush that follows. Only the run goroutine and
// single-threaded tests call it.
func (s *Session) applyAction(req ActionRequest) error {
	s.mu.Lock()
	var err error
	switch req.Kind {
	case ActionPlayCard:
		err = s.applyPlayCard(req)
	case ActionDeclareAttack:
		err = s.applyDeclareAttack(req)
	case ActionEndPhase:
		err = s.applyEndPhase(req)
	default:
		err = s.reject(req.Seat, denied("unknown action kind", map[string]string{"kind": string(req.Kind)}))
	}
	s.mu.Unlock()
	s.flush()
	return err
}

// reject turns a failed legality check into a notice and a wrapped error.
func (s *Session) reject(seat Seat, res LegalityResult) error {
	s.logger.Debug("action rejected",
		zap.String("seat", seat.String()),
		zap.String("reason", res.Reason),
		zap.Any("details", res.Details),
	)
	s.notice(NoticeError, seat, res.Reason)
	return fmt.Errorf("%w: %s", ErrInvalidAction, res.Reason)
}

func (s *Session) applyPlayCard(req ActionRequest) error {
	pc, res := s.checkPlayCard(req)
	if !res.Legal {
		return s.reject(req.Seat, res)
	}

	pc.player.Reiki.Spend(pc.card.Cost)
	pc.player.removeFromHand(pc.handIdx)

	// The card reaches its destination first; its on-play skill sees the
	// board with the card already in place.
	if pc.card.Type == catalog.TypeEvent {
		pc.player.discard(pc.card)
		s.notice(NoticeInfo, req.Seat, fmt.Sprintf("%s resolves %s", pc.player.Name, pc.card.Name))
		s.dispatchSkill(catalog.TriggerOnPlay, req.Seat, pc.card, "")
		return nil
	}

	pc.player.Field[pc.slot] = pc.card
	s.notice(NoticeInfo, req.Seat, fmt.Sprintf("%s plays %s to %s", pc.player.Name, pc.card.Name, pc.slot))
	s.dispatchSkill(catalog.TriggerOnPlay, req.Seat, pc.card, pc.slot)
	return nil
}

func (s *Session) applyDeclareAttack(req ActionRequest) error {
	ac, res := s.checkAttack(req)
	if !res.Legal {
		return s.reject(req.Seat, res)
	}

	// On-attack skills fire before the attacker rests and before damage,
	// so self buffs count for this combat.
	s.dispatchSkill(catalog.TriggerOnAttack, req.Seat, ac.attacker, ac.fromSlot)
	ac.attacker.Rested = true

	if ac.base != nil {
		s.resolveBaseAttack(req.Seat, ac)
		return nil
	}
	s.resolveUnitCombat(req.Seat, ac)
	return nil
}

func (s *Session) resolveUnitCombat(seat Seat, ac attackContext) {
	attacker := s.state.player(seat)
	defender := s.state.player(seat.Other())

	// The on-attack skill may have cleared the target already.
	if defender.Field[ac.defenderSlot] != ac.defender {
		s.notice(NoticeInfo, seat, fmt.Sprintf("%s finds %s empty; the attack fizzles", ac.attacker.Name, ac.defenderSlot))
		return
	}

	dp := ac.defender.Power
	outcome := Resolve(ac.attacker.Power, &dp)
	s.queue(Event{
		Type:     EventCombat,
		Seat:     seat,
		CardName: ac.attacker.Name,
		Message:  fmt.Sprintf("%s vs %s: %s", ac.attacker.Name, ac.defender.Name, outcome),
	})

	switch outcome {
	case AttackerWins:
		defender.removeFromField(ac.defenderSlot)
		defender.discard(ac.defender)
		s.notice(NoticeInfo, seat, fmt.Sprintf("%s destroys %s", ac.attacker.Name, ac.defender.Name))
	case DefenderWins:
		attacker.removeFromField(ac.fromSlot)
		attacker.discard(ac.attacker)
		s.notice(NoticeInfo, seat, fmt.Sprintf("%s falls to %s", ac.attacker.Name, ac.defender.Name))
	case CombatDraw:
		defender.removeFromField(ac.defenderSlot)
		defender.discard(ac.defender)
		attacker.removeFromField(ac.fromSlot)
		attacker.discard(ac.attacker)
		s.notice(NoticeInfo, seat, fmt.Sprintf("%s and %s destroy each other", ac.attacker.Name, ac.defender.Name))
	}
}

func (s *Session) resolveBaseAttack(seat Seat, ac attackContext) {
	defender := s.state.player(seat.Other())

	if Resolve(ac.attacker.Power, nil) == AttackerWins {
		if top := ac.base.popGauge(); top != nil {
			defender.discard(top)
			s.notice(NoticeInfo, seat, fmt.Sprintf("%s breaks a gauge of %s (%d left)", ac.attacker.Name, ac.base.ID, ac.base.GaugeCount()))
		}
	}
	if ac.base.GaugeCount() > 0 || ac.base.Captured() {
		return
	}

	ac.base.capture(seat)
	s.queue(Event{
		Type:     EventCapture,
		Seat:     seat,
		CardName: ac.attacker.Name,
		Message:  ac.base.ID,
	})
	s.notice(NoticeInfo, seat, fmt.Sprintf("%s captures %s", ac.attacker.Name, ac.base.ID))

	// Capture checks the win immediately; a mid-battle win ends the turn
	// cycle without reaching the end phase.
	if s.state.capturedBy(seat) >= s.rules.CapturesToWin {
		s.declareWinner(seat)
	}
}

func (s *Session) applyEndPhase(req ActionRequest) error {
	if res := s.checkEndPhase(req); !res.Legal {
		return s.reject(req.Seat, res)
	}
	s.logger.Debug("phase ended by request",
		zap.String("seat", req.Seat.String()),
		zap.String("phase", s.state.Phase.String()),
	)
	return nil
}
