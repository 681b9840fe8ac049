package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CardType classifies how a card may be used once it is in a player's hand.
type CardType string

const (
	TypeUnit     CardType = "unit"
	TypeEvent    CardType = "event"
	TypeSupport  CardType = "support"
	TypeResource CardType = "resource"
)

// Valid reports whether the type is one of the recognized classifications.
func (t CardType) Valid() bool {
	switch t {
	case TypeUnit, TypeEvent, TypeSupport, TypeResource:
		return true
	}
	return false
}

// Rarity buckets drive the derived power and cost of definitions that do not
// set them explicitly.
type Rarity string

const (
	RarityCommon Rarity = "common"
	RarityRare   Rarity = "rare"
	RaritySuper  Rarity = "super_rare"
	RarityUltra  Rarity = "ultra_rare"
)

var rarityStats = map[Rarity]struct{ power, cost int }{
	RarityCommon: {power: 2000, cost: 1},
	RarityRare:   {power: 3000, cost: 2},
	RaritySuper:  {power: 5000, cost: 4},
	RarityUltra:  {power: 7000, cost: 6},
}

// Trigger names the action class that lets a card skill fire.
type Trigger string

const (
	TriggerOnPlay   Trigger = "on_play"
	TriggerOnAttack Trigger = "on_attack"
)

// Valid reports whether the trigger is recognized.
func (tr Trigger) Valid() bool {
	return tr == TriggerOnPlay || tr == TriggerOnAttack
}

// SkillAction identifies a skill effect. The engine keeps a closed handler
// table keyed by these values; an action outside the table dispatches to
// nothing, so new actions can ship in card data ahead of engine support.
type SkillAction string

const (
	SkillDraw           SkillAction = "draw"
	SkillGainReiki      SkillAction = "gain_reiki"
	SkillDestroyWeakest SkillAction = "destroy_weakest"
	SkillBuffField      SkillAction = "buff_field"
	SkillBuffSelf       SkillAction = "buff_self"
	SkillRestUnit       SkillAction = "rest_unit"
	SkillBounceUnit     SkillAction = "bounce_unit"
	SkillSearchDeck     SkillAction = "search_deck"
	SkillReviveTrash    SkillAction = "revive_trash"
	SkillRedrawHand     SkillAction = "redraw_hand"
)

// Target option values for skills that pick an opposing unit.
const (
	TargetStrongest = "strongest"
	TargetWeakest   = "weakest"
)

// SkillSpec describes when a card's skill fires and what it does. Amount,
// Target and the filter fields are optional and only meaningful for the
// actions that read them.
type SkillSpec struct {
	Trigger  Trigger     `json:"trigger"`
	Action   SkillAction `json:"action"`
	Amount   int         `json:"amount,omitempty"`
	Target   string      `json:"target,omitempty"`
	CardName string      `json:"card_name,omitempty"`
	MaxCost  int         `json:"max_cost,omitempty"`
	Tribe    string      `json:"tribe,omitempty"`
}

// CardDefinition is one finalized catalog entry. The engine builds concrete
// card instances from these and never reads card data from anywhere else.
type CardDefinition struct {
	Name   string     `json:"name"`
	Type   CardType   `json:"type"`
	Rarity Rarity     `json:"rarity,omitempty"`
	Tribe  string     `json:"tribe,omitempty"`
	Power  int        `json:"power,omitempty"`
	Cost   int        `json:"cost,omitempty"`
	Text   string     `json:"text,omitempty"`
	Skill  *SkillSpec `json:"skill,omitempty"`
}

// Finalize fills rarity-derived stats on definitions that omit them and
// normalizes the non-combat types. It does not validate; run Validate on the
// result before handing it to a session.
func Finalize(defs []CardDefinition) []CardDefinition {
	out := make([]CardDefinition, len(defs))
	copy(out, defs)
	for i := range out {
		d := &out[i]
		if d.Rarity == "" {
			d.Rarity = RarityCommon
		}
		stats, ok := rarityStats[d.Rarity]
		if !ok {
			continue
		}
		switch d.Type {
		case TypeUnit:
			if d.Power == 0 {
				d.Power = stats.power
			}
			if d.Cost == 0 {
				d.Cost = stats.cost
			}
		case TypeEvent, TypeSupport:
			d.Power = 0
			if d.Cost == 0 {
				d.Cost = stats.cost
			}
		case TypeResource:
			d.Power = 0
			d.Cost = 0
		}
	}
	return out
}

// Validate checks the structural integrity of a finalized card set. Skill
// actions are not checked against the engine's handler table; unknown actions
// are ignored at dispatch time instead.
func Validate(defs []CardDefinition) error {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	names := make(map[string]bool, len(defs))
	var units, resources int
	for i, d := range defs {
		if strings.TrimSpace(d.Name) == "" {
			report("card %d: empty name", i)
			continue
		}
		if names[d.Name] {
			report("card %q: duplicate name", d.Name)
		}
		names[d.Name] = true

		if !d.Type.Valid() {
			report("card %q: unknown type %q", d.Name, d.Type)
		}
		if _, ok := rarityStats[d.Rarity]; !ok {
			report("card %q: unknown rarity %q", d.Name, d.Rarity)
		}
		if d.Power < 0 || d.Cost < 0 {
			report("card %q: negative power or cost", d.Name)
		}
		switch d.Type {
		case TypeUnit:
			units++
		case TypeResource:
			resources++
		}

		if d.Skill == nil {
			continue
		}
		if !d.Skill.Trigger.Valid() {
			report("card %q: unknown skill trigger %q", d.Name, d.Skill.Trigger)
		}
		if d.Skill.Amount < 0 || d.Skill.MaxCost < 0 {
			report("card %q: negative skill amount or cost filter", d.Name)
		}
		switch d.Skill.Target {
		case "", TargetStrongest, TargetWeakest:
		default:
			report("card %q: unknown skill target %q", d.Name, d.Skill.Target)
		}
		if d.Skill.Action == SkillSearchDeck && d.Skill.CardName == "" {
			report("card %q: search skill without a card name", d.Name)
		}
	}

	// Named search targets must resolve inside the same set.
	for _, d := range defs {
		if d.Skill != nil && d.Skill.CardName != "" && !names[d.Skill.CardName] {
			report("card %q: skill references unknown card %q", d.Name, d.Skill.CardName)
		}
	}

	if units == 0 {
		report("set contains no unit cards")
	}
	if resources == 0 {
		report("set contains no resource cards")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid card set: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Parse decodes, finalizes and validates a JSON card set.
func Parse(raw []byte) ([]CardDefinition, error) {
	var defs []CardDefinition
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse card set: %w", err)
	}
	defs = Finalize(defs)
	if err := Validate(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// LoadFile reads a card set from a JSON file on disk.
func LoadFile(path string) ([]CardDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card set: %w", err)
	}
	defs, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("card set %s: %w", path, err)
	}
	return defs, nil
}

// Find returns the definition with the given name, if present.
func Find(defs []CardDefinition, name string) (CardDefinition, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return CardDefinition{}, false
}
