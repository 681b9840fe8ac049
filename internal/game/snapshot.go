package game

import "github.com/reikiduel/reiki-server-go/internal/catalog"

// Snapshot is a complete, detached copy of the visible session state. One is
// published after every mutation; automated drivers read them to decide, and
// the presentation side renders them directly. Mutating a snapshot never
// touches live state.
type Snapshot struct {
	SessionID  string            `json:"session_id"`
	Turn       int               `json:"turn"`
	Phase      string            `json:"phase"`
	ActiveSeat Seat              `json:"active_seat"`
	Mode       Mode              `json:"mode"`
	Winner     *Seat             `json:"winner,omitempty"`
	Players    [2]PlayerSnapshot `json:"players"`
}

// PlayerSnapshot mirrors one seat.
type PlayerSnapshot struct {
	Name          string                `json:"name"`
	Reiki         int                   `json:"reiki"`
	ReikiMax      int                   `json:"reiki_max"`
	DeckCount     int                   `json:"deck_count"`
	ResourceCount int                   `json:"resource_count"`
	Hand          []CardSnapshot        `json:"hand"`
	Trash         []CardSnapshot        `json:"trash"`
	Field         map[Slot]CardSnapshot `json:"field"`
	Bases         []BaseSnapshot        `json:"bases"`
}

// CardSnapshot mirrors one card instance.
type CardSnapshot struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Type          catalog.CardType   `json:"type"`
	Tribe         string             `json:"tribe,omitempty"`
	Cost          int                `json:"cost"`
	Power         int                `json:"power"`
	OriginalPower int                `json:"original_power"`
	Rested        bool               `json:"rested"`
	Skill         *catalog.SkillSpec `json:"skill,omitempty"`
}

// BaseSnapshot mirrors one base.
type BaseSnapshot struct {
	ID    string `json:"id"`
	Gauge int    `json:"gauge"`
	Owner *Seat  `json:"owner,omitempty"`
}

func snapshotCard(c *Card) CardSnapshot {
	snap := CardSnapshot{
		ID:            c.ID,
		Name:          c.Name,
		Type:          c.Type,
		Tribe:         c.Tribe,
		Cost:          c.Cost,
		Power:         c.Power,
		OriginalPower: c.OriginalPower,
		Rested:        c.Rested,
	}
	if c.Skill != nil {
		skill := *c.Skill
		snap.Skill = &skill
	}
	return snap
}

func snapshotPlayer(p *Player) PlayerSnapshot {
	snap := PlayerSnapshot{
		Name:          p.Name,
		Reiki:         p.Reiki.Current,
		ReikiMax:      p.Reiki.Max,
		DeckCount:     len(p.MainDeck),
		ResourceCount: len(p.ResourceDeck),
		Hand:          make([]CardSnapshot, 0, len(p.Hand)),
		Trash:         make([]CardSnapshot, 0, len(p.Trash)),
		Field:         make(map[Slot]CardSnapshot, len(p.Field)),
		Bases:         make([]BaseSnapshot, 0, len(p.Bases)),
	}
	for _, c := range p.Hand {
		snap.Hand = append(snap.Hand, snapshotCard(c))
	}
	for _, c := range p.Trash {
		snap.Trash = append(snap.Trash, snapshotCard(c))
	}
	for _, sl := range slotOrder {
		if c := p.Field[sl]; c != nil {
			snap.Field[sl] = snapshotCard(c)
		}
	}
	for _, b := range p.Bases {
		base := BaseSnapshot{ID: b.ID, Gauge: b.GaugeCount()}
		if b.Owner != nil {
			owner := *b.Owner
			base.Owner = &owner
		}
		snap.Bases = append(snap.Bases, base)
	}
	return snap
}

func snapshotState(sessionID string, gs *GameState) *Snapshot {
	snap := &Snapshot{
		SessionID:  sessionID,
		Turn:       gs.Turn,
		Phase:      gs.Phase.String(),
		ActiveSeat: gs.ActiveSeat,
		Mode:       gs.Mode,
	}
	if gs.Winner != nil {
		winner := *gs.Winner
		snap.Winner = &winner
	}
	for seat := SeatFirst; seat <= SeatSecond; seat++ {
		snap.Players[seat] = snapshotPlayer(gs.Players[seat])
	}
	return snap
}

// Player returns the snapshot for one seat.
func (s *Snapshot) Player(seat Seat) *PlayerSnapshot {
	return &s.Players[seat]
}

// FieldCard returns the card in the seat's slot, if occupied.
func (ps *PlayerSnapshot) FieldCard(slot Slot) (CardSnapshot, bool) {
	c, ok := ps.Field[slot]
	return c, ok
}
