package game

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/reikiduel/reiki-server-go/internal/catalog"
)

// skillHandler applies one skill action. The session lock is already held;
// handlers mutate state directly and queue notices for the flush.
type skillHandler func(s *Session, seat Seat, card *Card, slot Slot)

// skillHandlers is the closed catalog of actions the engine understands.
// Actions not listed here fail closed in dispatchSkill.
var skillHandlers = map[catalog.SkillAction]skillHandler{
	catalog.SkillDraw:           skillDraw,
	catalog.SkillGainReiki:      skillGainReiki,
	catalog.SkillDestroyWeakest: skillDestroyWeakest,
	catalog.SkillBuffField:      skillBuffField,
	catalog.SkillBuffSelf:       skillBuffSelf,
	catalog.SkillRestUnit:       skillRestUnit,
	catalog.SkillBounceUnit:     skillBounceUnit,
	catalog.SkillSearchDeck:     skillSearchDeck,
	catalog.SkillReviveTrash:    skillReviveTrash,
	catalog.SkillRedrawHand:     skillRedrawHand,
}

// dispatchSkill fires a card's skill if its declared trigger matches the
// action that just happened. Unknown actions log at debug and mutate nothing.
func (s *Session) dispatchSkill(trigger catalog.Trigger, seat Seat, card *Card, slot Slot) {
	if card.Skill == nil || card.Skill.Trigger != trigger {
		return
	}
	handler, ok := skillHandlers[card.Skill.Action]
	if !ok {
		s.logger.Debug("ignoring unknown skill action",
			zap.String("card", card.Name),
			zap.String("action", string(card.Skill.Action)),
		)
		return
	}
	s.logger.Debug("skill triggered",
		zap.String("card", card.Name),
		zap.String("action", string(card.Skill.Action)),
		zap.String("seat", seat.String()),
	)
	s.queue(Event{
		Type:     EventSkill,
		Seat:     seat,
		CardName: card.Name,
		Message:  string(card.Skill.Action),
	})
	handler(s, seat, card, slot)
}

// amountOr reads the skill's amount field, falling back when the set left
// it unset.
func amountOr(card *Card, fallback int) int {
	if card.Skill != nil && card.Skill.Amount > 0 {
		return card.Skill.Amount
	}
	return fallback
}

// pickUnit selects the strongest or weakest unit from cards, breaking power
// ties by encounter order (lowest index wins). Returns -1 when empty.
func pickUnit(cards []*Card, strongest bool) int {
	best := -1
	for i, c := range cards {
		if best == -1 {
			best = i
			continue
		}
		if strongest && c.Power > cards[best].Power {
			best = i
		}
		if !strongest && c.Power < cards[best].Power {
			best = i
		}
	}
	return best
}

func skillDraw(s *Session, seat Seat, card *Card, _ Slot) {
	s.drawCards(seat, amountOr(card, 1))
}

func skillGainReiki(s *Session, seat Seat, card *Card, _ Slot) {
	n := amountOr(card, 1)
	p := s.state.player(seat)
	p.Reiki.Gain(n)
	s.notice(NoticeInfo, seat, fmt.Sprintf("%s charges %d reiki (%d/%d)", card.Name, n, p.Reiki.Current, p.Reiki.Max))
}

func skillDestroyWeakest(s *Session, seat Seat, card *Card, _ Slot) {
	opp := s.state.player(seat.Other())
	units, slots := opp.fieldUnits()
	idx := pickUnit(units, false)
	if idx == -1 {
		s.notice(NoticeInfo, seat, fmt.Sprintf("%s finds no unit to destroy", card.Name))
		return
	}
	victim := units[idx]
	opp.removeFromField(slots[idx])
	opp.discard(victim)
	s.notice(NoticeInfo, seat, fmt.Sprintf("%s destroys %s", card.Name, victim.Name))
}

func skillBuffField(s *Session, seat Seat, card *Card, _ Slot) {
	n := amountOr(card, 0)
	if n <= 0 {
		return
	}
	units, _ := s.state.player(seat).fieldUnits()
	for _, u := range units {
		u.Power += n
	}
	s.notice(NoticeInfo, seat, fmt.Sprintf("%s grants +%d power to %d unit(s)", card.Name, n, len(units)))
}

func skillBuffSelf(s *Session, seat Seat, card *Card, _ Slot) {
	n := amountOr(card, 0)
	if n <= 0 {
		return
	}
	card.Power += n
	s.notice(NoticeInfo, seat, fmt.Sprintf("%s powers up to %d", card.Name, card.Power))
}

func skillRestUnit(s *Session, seat Seat, card *Card, _ Slot) {
	opp := s.state.player(seat.Other())
	units, _ := opp.fieldUnits()
	active := units[:0:0]
	for _, u := range units {
		if !u.Rested {
			active = append(active, u)
		}
	}
	idx := pickUnit(active, card.Skill.Target != catalog.TargetWeakest)
	if idx == -1 {
		s.notice(NoticeInfo, seat, fmt.Sprintf("%s finds no active unit to rest", card.Name))
		return
	}
	active[idx].Rested = true
	s.notice(NoticeInfo, seat, fmt.Sprintf("%s rests %s", card.Name, active[idx].Name))
}

func skillBounceUnit(s *Session, seat Seat, card *Card, _ Slot) {
	opp := s.state.player(seat.Other())
	units, slots := opp.fieldUnits()
	idx := pickUnit(units, card.Skill.Target != catalog.TargetWeakest)
	if idx == -1 {
		s.notice(NoticeInfo, seat, fmt.Sprintf("%s finds no unit to return", card.Name))
		return
	}
	bounced := units[idx]
	opp.removeFromField(slots[idx])
	opp.Hand = append(opp.Hand, bounced)
	s.notice(NoticeInfo, seat, fmt.Sprintf("%s returns %s to hand", card.Name, bounced.Name))
}

func skillSearchDeck(s *Session, seat Seat, card *Card, _ Slot) {
	name := card.Skill.CardName
	if name == "" {
		return
	}
	p := s.state.player(seat)
	found := -1
	for i := len(p.MainDeck) - 1; i >= 0; i-- {
		if p.MainDeck[i].Name == name {
			found = i
			break
		}
	}
	if found == -1 {
		s.logger.Debug("search found nothing",
			zap.String("card", card.Name),
			zap.String("wanted", name),
		)
		return
	}
	hit := p.MainDeck[found]
	p.MainDeck = append(p.MainDeck[:found], p.MainDeck[found+1:]...)

	// Skill-driven placement does not re-trigger on-play skills; only the
	// submitted action dispatches.
	if slot, ok := p.freeSlot(rearguardSlots); ok && hit.IsUnit() {
		p.Field[slot] = hit
		s.notice(NoticeInfo, seat, fmt.Sprintf("%s calls %s to %s", card.Name, hit.Name, slot))
		return
	}
	p.Hand = append(p.Hand, hit)
	s.notice(NoticeInfo, seat, fmt.Sprintf("%s fetches %s to hand", card.Name, hit.Name))
}

func skillReviveTrash(s *Session, seat Seat, card *Card, _ Slot) {
	p := s.state.player(seat)
	spec := card.Skill
	best := -1
	for i, c := range p.Trash {
		if !c.IsUnit() {
			continue
		}
		if spec.MaxCost > 0 && c.Cost > spec.MaxCost {
			continue
		}
		if spec.Tribe != "" && c.Tribe != spec.Tribe {
			continue
		}
		if best == -1 || c.Power > p.Trash[best].Power {
			best = i
		}
	}
	if best == -1 {
		s.notice(NoticeInfo, seat, fmt.Sprintf("%s finds nothing to revive", card.Name))
		return
	}
	revived := p.Trash[best]
	p.Trash = append(p.Trash[:best], p.Trash[best+1:]...)
	if slot, ok := p.freeSlot(unitSlots); ok {
		p.Field[slot] = revived
		s.notice(NoticeInfo, seat, fmt.Sprintf("%s revives %s to %s", card.Name, revived.Name, slot))
		return
	}
	p.Hand = append(p.Hand, revived)
	s.notice(NoticeInfo, seat, fmt.Sprintf("%s returns %s to hand", card.Name, revived.Name))
}

func skillRedrawHand(s *Session, seat Seat, card *Card, _ Slot) {
	n := amountOr(card, 1)
	p := s.state.player(seat)
	if n > len(p.Hand) {
		n = len(p.Hand)
	}
	if n == 0 {
		s.notice(NoticeInfo, seat, fmt.Sprintf("%s has no hand to redraw", card.Name))
		return
	}

	// Discard the n weakest cards, ties broken by hand order.
	order := make([]int, len(p.Hand))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return p.Hand[order[a]].Power < p.Hand[order[b]].Power
	})
	picked := append([]int(nil), order[:n]...)
	sort.Sort(sort.Reverse(sort.IntSlice(picked)))
	for _, idx := range picked {
		victim := p.Hand[idx]
		p.removeFromHand(idx)
		p.discard(victim)
		s.notice(NoticeInfo, seat, fmt.Sprintf("%s discards %s", card.Name, victim.Name))
	}
	s.drawCards(seat, n)
}
