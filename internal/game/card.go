package game

import (
	"github.com/google/uuid"

	"github.com/reikiduel/reiki-server-go/internal/catalog"
)

// Card is one concrete card instance inside a session. Two instances built
// from the same definition never share identity. Power is the only combat
// attribute that moves during a turn; it returns to OriginalPower when the
// turn ends, no matter which seat owns the card.
type Card struct {
	ID            string
	Name          string
	Type          catalog.CardType
	Tribe         string
	Cost          int
	Power         int
	OriginalPower int
	Rested        bool
	Skill         *catalog.SkillSpec
}

func newCard(def catalog.CardDefinition) *Card {
	var skill *catalog.SkillSpec
	if def.Skill != nil {
		copied := *def.Skill
		skill = &copied
	}
	return &Card{
		ID:            uuid.NewString(),
		Name:          def.Name,
		Type:          def.Type,
		Tribe:         def.Tribe,
		Cost:          def.Cost,
		Power:         def.Power,
		OriginalPower: def.Power,
		Skill:         skill,
	}
}

// IsUnit reports whether the card fights as a unit.
func (c *Card) IsUnit() bool {
	return c.Type == catalog.TypeUnit
}

// ResetPower restores the card to its printed power.
func (c *Card) ResetPower() {
	c.Power = c.OriginalPower
}

// leaveField clears per-field state so a card re-enters hand or trash clean.
func (c *Card) leaveField() {
	c.ResetPower()
	c.Rested = false
}
