package game

import (
	"fmt"

	"github.com/reikiduel/reiki-server-go/internal/catalog"
)

// LegalityResult is the outcome of validating an action request. Rejections
// carry a reason for the observer notice; they are never fatal.
type LegalityResult struct {
	Legal   bool
	Reason  string
	Details map[string]string
}

func allowed() LegalityResult {
	return LegalityResult{Legal: true}
}

func denied(reason string, details map[string]string) LegalityResult {
	return LegalityResult{Reason: reason, Details: details}
}

// checkTurn is the guard shared by every action kind: the session must still
// be running, the submitting seat must own the turn, and the current phase
// must match.
func (s *Session) checkTurn(seat Seat, phases ...Phase) LegalityResult {
	if s.state.Winner != nil {
		return denied("session already decided", nil)
	}
	if !seat.Valid() {
		return denied("unknown seat", map[string]string{"seat": fmt.Sprintf("%d", int(seat))})
	}
	if seat != s.state.ActiveSeat {
		return denied("not your turn", map[string]string{"active_seat": s.state.ActiveSeat.String()})
	}
	for _, p := range phases {
		if s.state.Phase == p {
			return allowed()
		}
	}
	return denied("wrong phase", map[string]string{"phase": s.state.Phase.String()})
}

// playContext carries the entities a validated play request resolved to.
type playContext struct {
	player  *Player
	card    *Card
	handIdx int
	slot    Slot
}

func (s *Session) checkPlayCard(req ActionRequest) (playContext, LegalityResult) {
	var ctx playContext

	if res := s.checkTurn(req.Seat, PhaseMain); !res.Legal {
		return ctx, res
	}

	p := s.state.player(req.Seat)
	card, idx := p.handCard(req.CardID)
	if card == nil {
		return ctx, denied("card not in hand", map[string]string{"card_id": req.CardID})
	}
	if card.Type == catalog.TypeResource || !card.Type.Valid() {
		return ctx, denied("card cannot be played", map[string]string{"card": card.Name})
	}
	if card.Cost > p.Reiki.Current {
		return ctx, denied("insufficient reiki", map[string]string{
			"card": card.Name,
			"cost": fmt.Sprintf("%d", card.Cost),
			"have": fmt.Sprintf("%d", p.Reiki.Current),
		})
	}

	ctx.player = p
	ctx.card = card
	ctx.handIdx = idx

	// Events resolve from hand; everything else needs a matching empty slot.
	if card.Type == catalog.TypeEvent {
		return ctx, allowed()
	}
	if !req.Slot.Valid() {
		return ctx, denied("missing target slot", map[string]string{"card": card.Name})
	}
	if !req.Slot.Accepts(card) {
		return ctx, denied("slot does not accept this card", map[string]string{
			"card": card.Name,
			"slot": string(req.Slot),
		})
	}
	if p.Field[req.Slot] != nil {
		return ctx, denied("slot already occupied", map[string]string{"slot": string(req.Slot)})
	}
	ctx.slot = req.Slot
	return ctx, allowed()
}

// attackContext carries the entities a validated attack request resolved to.
// Exactly one of defender or base is set.
type attackContext struct {
	attacker     *Card
	fromSlot     Slot
	defender     *Card
	defenderSlot Slot
	base         *Base
}

func (s *Session) checkAttack(req ActionRequest) (attackContext, LegalityResult) {
	var ctx attackContext

	if res := s.checkTurn(req.Seat, PhaseBattle); !res.Legal {
		return ctx, res
	}

	p := s.state.player(req.Seat)
	attacker, from := p.fieldCard(req.CardID)
	if attacker == nil {
		return ctx, denied("attacker not on your field", map[string]string{"card_id": req.CardID})
	}
	if !attacker.IsUnit() {
		return ctx, denied("only units attack", map[string]string{"card": attacker.Name})
	}
	if attacker.Rested {
		return ctx, denied("attacker is rested", map[string]string{"card": attacker.Name})
	}
	ctx.attacker = attacker
	ctx.fromSlot = from

	hasSlot := req.TargetSlot != ""
	hasBase := req.TargetBase != ""
	if hasSlot == hasBase {
		return ctx, denied("attack needs exactly one target", nil)
	}

	opp := s.state.player(req.Seat.Other())
	if hasSlot {
		if !req.TargetSlot.Valid() {
			return ctx, denied("unknown target slot", map[string]string{"slot": string(req.TargetSlot)})
		}
		defender := opp.Field[req.TargetSlot]
		if defender == nil {
			return ctx, denied("target slot is empty", map[string]string{"slot": string(req.TargetSlot)})
		}
		ctx.defender = defender
		ctx.defenderSlot = req.TargetSlot
		return ctx, allowed()
	}

	base := opp.base(req.TargetBase)
	if base == nil {
		return ctx, denied("unknown base", map[string]string{"base": req.TargetBase})
	}
	if base.Captured() {
		return ctx, denied("base already captured", map[string]string{"base": base.ID})
	}
	ctx.base = base
	return ctx, allowed()
}

func (s *Session) checkEndPhase(req ActionRequest) LegalityResult {
	return s.checkTurn(req.Seat, PhaseMain, PhaseBattle)
}
