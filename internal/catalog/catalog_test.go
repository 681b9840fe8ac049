package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSetIsValid(t *testing.T) {
	defs := Default()
	require.NotEmpty(t, defs)
	require.NoError(t, Validate(defs))

	var units, resources int
	for _, d := range defs {
		switch d.Type {
		case TypeUnit:
			units++
			assert.Greater(t, d.Power, 0, "unit %q has no power", d.Name)
			assert.Greater(t, d.Cost, 0, "unit %q has no cost", d.Name)
		case TypeResource:
			resources++
			assert.Zero(t, d.Power)
			assert.Zero(t, d.Cost)
		}
	}
	assert.Greater(t, units, 0)
	assert.Greater(t, resources, 0)
}

func TestFinalizeDerivesStatsFromRarity(t *testing.T) {
	defs := Finalize([]CardDefinition{
		{Name: "Plain", Type: TypeUnit, Rarity: RarityCommon},
		{Name: "Strong", Type: TypeUnit, Rarity: RarityUltra},
		{Name: "Tuned", Type: TypeUnit, Rarity: RarityUltra, Power: 9999, Cost: 3},
		{Name: "Trick", Type: TypeEvent, Rarity: RarityRare},
		{Name: "Shard", Type: TypeResource},
	})

	assert.Equal(t, 2000, defs[0].Power)
	assert.Equal(t, 1, defs[0].Cost)
	assert.Equal(t, 7000, defs[1].Power)
	assert.Equal(t, 6, defs[1].Cost)

	// Explicit stats win over the rarity table.
	assert.Equal(t, 9999, defs[2].Power)
	assert.Equal(t, 3, defs[2].Cost)

	// Non-unit types never carry power.
	assert.Zero(t, defs[3].Power)
	assert.Equal(t, 2, defs[3].Cost)
	assert.Zero(t, defs[4].Power)
	assert.Zero(t, defs[4].Cost)

	// Missing rarity falls back to common.
	fallback := Finalize([]CardDefinition{{Name: "Nameless", Type: TypeUnit}})
	assert.Equal(t, RarityCommon, fallback[0].Rarity)
	assert.Equal(t, 2000, fallback[0].Power)
}

func TestValidateRejectsBrokenSets(t *testing.T) {
	base := func() []CardDefinition {
		return Finalize([]CardDefinition{
			{Name: "Unit A", Type: TypeUnit, Rarity: RarityCommon},
			{Name: "Shard", Type: TypeResource},
		})
	}

	tests := []struct {
		name   string
		mutate func([]CardDefinition) []CardDefinition
	}{
		{"duplicate name", func(defs []CardDefinition) []CardDefinition {
			return append(defs, defs[0])
		}},
		{"empty name", func(defs []CardDefinition) []CardDefinition {
			defs[0].Name = "  "
			return defs
		}},
		{"unknown type", func(defs []CardDefinition) []CardDefinition {
			defs[0].Type = "spell"
			return defs
		}},
		{"unknown trigger", func(defs []CardDefinition) []CardDefinition {
			defs[0].Skill = &SkillSpec{Trigger: "on_sight", Action: SkillDraw}
			return defs
		}},
		{"unknown target option", func(defs []CardDefinition) []CardDefinition {
			defs[0].Skill = &SkillSpec{Trigger: TriggerOnPlay, Action: SkillRestUnit, Target: "median"}
			return defs
		}},
		{"search without name", func(defs []CardDefinition) []CardDefinition {
			defs[0].Skill = &SkillSpec{Trigger: TriggerOnPlay, Action: SkillSearchDeck}
			return defs
		}},
		{"dangling search reference", func(defs []CardDefinition) []CardDefinition {
			defs[0].Skill = &SkillSpec{Trigger: TriggerOnPlay, Action: SkillSearchDeck, CardName: "No Such Card"}
			return defs
		}},
		{"no resource cards", func(defs []CardDefinition) []CardDefinition {
			return defs[:1]
		}},
		{"no unit cards", func(defs []CardDefinition) []CardDefinition {
			return defs[1:]
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, Validate(tc.mutate(base())))
		})
	}

	// Unknown skill actions are allowed; the engine ignores them.
	defs := base()
	defs[0].Skill = &SkillSpec{Trigger: TriggerOnPlay, Action: "summon_meteor"}
	assert.NoError(t, Validate(defs))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "set.json")
	raw := `[
		{"name": "Test Unit", "type": "unit", "rarity": "rare", "tribe": "beast"},
		{"name": "Test Shard", "type": "resource"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	defs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, 3000, defs[0].Power)
	assert.Equal(t, 2, defs[0].Cost)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	defs := Default()
	def, ok := Find(defs, "Nine-Tail Warden")
	require.True(t, ok)
	assert.Equal(t, TypeUnit, def.Type)

	_, ok = Find(defs, "Card That Does Not Exist")
	assert.False(t, ok)
}
