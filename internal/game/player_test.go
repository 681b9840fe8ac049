package game

import "testing"

func TestReikiChargeGrowsMaxThenRefills(t *testing.T) {
	rp := &ReikiPool{}
	for turn := 1; turn <= 12; turn++ {
		rp.Current = 0
		rp.Charge(10)
		wantMax := turn
		if wantMax > 10 {
			wantMax = 10
		}
		if rp.Max != wantMax || rp.Current != wantMax {
			t.Fatalf("charge %d: pool %d/%d, want %d/%d", turn, rp.Current, rp.Max, wantMax, wantMax)
		}
	}
}

func TestReikiGainCapsAtMax(t *testing.T) {
	rp := &ReikiPool{Current: 2, Max: 4}
	rp.Gain(5)
	if rp.Current != 4 {
		t.Fatalf("gain past max: current = %d, want 4", rp.Current)
	}
	rp.Gain(-1)
	if rp.Current != 4 {
		t.Fatalf("negative gain changed pool: current = %d", rp.Current)
	}
}

func TestReikiSpend(t *testing.T) {
	rp := &ReikiPool{Current: 3, Max: 5}
	if !rp.Spend(2) || rp.Current != 1 {
		t.Fatalf("spend 2 of 3 failed, pool %d/%d", rp.Current, rp.Max)
	}
	if rp.Spend(2) {
		t.Fatal("overspend succeeded")
	}
	if rp.Current != 1 {
		t.Fatalf("failed spend changed pool: current = %d", rp.Current)
	}
}

func TestSlotAccepts(t *testing.T) {
	unit := newCard(defByName(t, "Ember Whelp"))
	support := newCard(defByName(t, "Stone Lantern"))

	tests := []struct {
		slot Slot
		card *Card
		want bool
	}{
		{SlotVanguard1, unit, true},
		{SlotRearguard2, unit, true},
		{SlotSupport, unit, false},
		{SlotSupport, support, true},
		{SlotVanguard1, support, false},
	}
	for _, tt := range tests {
		if got := tt.slot.Accepts(tt.card); got != tt.want {
			t.Errorf("%s.Accepts(%s) = %v, want %v", tt.slot, tt.card.Name, got, tt.want)
		}
	}
}

func TestFieldUnitsFollowsEncounterOrder(t *testing.T) {
	p := newPlayer("p")
	rear := newCard(defByName(t, "Azure Wyrm"))
	van := newCard(defByName(t, "Ember Whelp"))
	p.Field[SlotRearguard1] = rear
	p.Field[SlotVanguard2] = van

	units, slots := p.fieldUnits()
	if len(units) != 2 {
		t.Fatalf("fieldUnits returned %d units, want 2", len(units))
	}
	if units[0] != van || slots[0] != SlotVanguard2 {
		t.Fatalf("first unit = %s at %s, want vanguard first", units[0].Name, slots[0])
	}
	if units[1] != rear || slots[1] != SlotRearguard1 {
		t.Fatalf("second unit = %s at %s, want rearguard", units[1].Name, slots[1])
	}
}

func TestRemoveFromFieldNormalizesCard(t *testing.T) {
	p := newPlayer("p")
	c := newCard(defByName(t, "Ember Whelp"))
	c.Power += 500
	c.Rested = true
	p.Field[SlotVanguard1] = c

	removed := p.removeFromField(SlotVanguard1)
	if removed != c {
		t.Fatal("removeFromField returned a different card")
	}
	if p.Field[SlotVanguard1] != nil {
		t.Fatal("slot still occupied after removal")
	}
	if c.Power != c.OriginalPower || c.Rested {
		t.Fatalf("card left the field un-normalized: power %d/%d rested %v", c.Power, c.OriginalPower, c.Rested)
	}
}

func TestDrawOneFromEmptyDeck(t *testing.T) {
	p := newPlayer("p")
	if _, ok := p.drawOne(); ok {
		t.Fatal("draw from empty deck reported success")
	}
	p.MainDeck = []*Card{newCard(defByName(t, "Ember Whelp"))}
	if c, ok := p.drawOne(); !ok || c == nil {
		t.Fatal("draw from one-card deck failed")
	}
	if len(p.Hand) != 1 || len(p.MainDeck) != 0 {
		t.Fatalf("draw bookkeeping off: hand %d deck %d", len(p.Hand), len(p.MainDeck))
	}
}

func TestBaseCapture(t *testing.T) {
	gauge := []*Card{newCard(defByName(t, "Reiki Shard")), newCard(defByName(t, "Reiki Shard"))}
	b := newBase("base-1", gauge)

	if b.Captured() {
		t.Fatal("fresh base reports captured")
	}
	if b.capture(SeatSecond) {
		t.Fatal("capture succeeded with gauge cards remaining")
	}
	for b.GaugeCount() > 0 {
		if b.popGauge() == nil {
			t.Fatal("popGauge failed with cards left")
		}
	}
	if !b.capture(SeatSecond) {
		t.Fatal("capture failed on empty gauge")
	}
	if !b.Captured() || *b.Owner != SeatSecond {
		t.Fatalf("owner = %v, want seat-1", b.Owner)
	}
	if b.capture(SeatFirst) {
		t.Fatal("second capture overwrote the owner")
	}
}
