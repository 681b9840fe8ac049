package game

// Outcome is the result of one combat resolution.
type Outcome int

const (
	AttackerWins Outcome = iota
	DefenderWins
	CombatDraw
)

var outcomeNames = map[Outcome]string{
	AttackerWins: "ATTACKER_WINS",
	DefenderWins: "DEFENDER_WINS",
	CombatDraw:   "DRAW",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "UNKNOWN"
}

// Resolve compares attacker power against a defender. A nil defender means
// the target is a base gauge, which is always breached. Equal power destroys
// both combatants. Pure and deterministic; callers apply the consequences.
func Resolve(attackerPower int, defenderPower *int) Outcome {
	if defenderPower == nil {
		return AttackerWins
	}
	switch {
	case attackerPower > *defenderPower:
		return AttackerWins
	case attackerPower < *defenderPower:
		return DefenderWins
	default:
		return CombatDraw
	}
}
