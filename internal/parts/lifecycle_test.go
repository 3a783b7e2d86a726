package parts

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/armory/internal/catalog"
	"github.com/OCAP2/armory/internal/unit"
)

var day = time.Date(3025, time.June, 1, 0, 0, 0, 0, time.UTC)

func assertExclusive(t *testing.T, r *Roster, idx int) {
	t.Helper()
	s, ok := r.Slot(idx)
	require.True(t, ok)
	assert.True(t, (s.Part == nil) != (s.Missing == nil), "mount %d must hold exactly one occupant", idx)
}

func TestRemove_SalvageThenReplace(t *testing.T) {
	u := testMech()
	u.Mounts[1].Shots = 4
	f := newFixture(u)
	r := f.roster(t)
	key := StockKey{Munition: "is-ammo-lrm-20"}

	require.NoError(t, r.Remove(1, true))
	assertExclusive(t, r, 1)

	m, ok := r.Missing(1)
	require.True(t, ok)
	assert.Equal(t, 6, m.Bin.Capacity)
	assert.True(t, u.IsDestroyed(1))
	assert.Equal(t, 4, f.stock.Available(key), "salvage returns loaded rounds")
	require.Len(t, f.shelf.spares, 1)
	assert.False(t, f.shelf.spares[0].Attached())
	assert.Zero(t, f.shelf.spares[0].Bin.ShotsNeeded)

	require.NoError(t, r.Fix(1, NewCheckLog(day)))
	assertExclusive(t, r, 1)
	assert.Empty(t, f.shelf.spares)
	assert.False(t, u.IsDestroyed(1))
	need, _ := r.ShotsNeeded(1)
	assert.Equal(t, 6, need, "replacement bins arrive empty")

	require.NoError(t, r.Fix(1, nil))
	assert.Equal(t, 4, u.CurrentLoad(1))
	assert.Zero(t, f.stock.Available(key))
}

func TestRemove_ScrapDiscardsRounds(t *testing.T) {
	u := testMech()
	u.Mounts[1].Shots = 4
	f := newFixture(u)
	r := f.roster(t)

	require.NoError(t, r.Remove(1, false))

	assert.Empty(t, f.shelf.spares)
	assert.Zero(t, f.stock.Available(StockKey{Munition: "is-ammo-lrm-20"}))
	assert.Zero(t, u.CurrentLoad(1))

	require.NoError(t, r.Fix(1, nil), "bins are fabricated when no spare exists")
	p, ok := r.Part(1)
	require.True(t, ok)
	assert.Equal(t, "is-ammo-lrm-20", p.TypeID)
}

func TestRemove_EmptySlot(t *testing.T) {
	u := testMech()
	u.Mounts[3].Destroyed = true
	r := newFixture(u).roster(t)

	assert.ErrorIs(t, r.Remove(3, true), ErrSlotEmpty)
	assert.ErrorIs(t, r.SetSalvaging(3, true), ErrSlotEmpty)
	assert.ErrorIs(t, r.Fix(42, nil), ErrSlotEmpty)
}

func TestFix_SalvageFlag(t *testing.T) {
	u := testMech()
	f := newFixture(u)
	r := f.roster(t)

	require.NoError(t, r.SetSalvaging(2, true))
	require.NoError(t, r.Fix(2, nil))

	_, missing := r.Missing(2)
	assert.True(t, missing)
	require.Len(t, f.shelf.spares, 1)
	assert.Equal(t, "heat-sink", f.shelf.spares[0].TypeID)
	assert.False(t, f.shelf.spares[0].Salvaging)
}

func TestFixMissing_SearchOncePerDay(t *testing.T) {
	u := testMech()
	f := newFixture(u)
	r := f.roster(t)
	checks := NewCheckLog(day)
	require.NoError(t, r.Remove(2, false))

	err := r.Fix(2, checks)
	assert.ErrorIs(t, err, ErrNoReplacement)
	assert.Equal(t, 1, checks.Len())

	err = r.Fix(2, checks)
	assert.ErrorIs(t, err, ErrAlreadyChecked)

	checks.Advance(day.AddDate(0, 0, 1))
	err = r.Fix(2, checks)
	assert.ErrorIs(t, err, ErrNoReplacement)

	f.shelf.AddSpare(&Part{ID: uuid.New(), Kind: KindHeatSink, TypeID: "heat-sink", Mount: unit.NoMount, Quantity: 1, Tonnage: 1})
	checks.Advance(day.AddDate(0, 0, 2))
	require.NoError(t, r.Fix(2, checks))

	assertExclusive(t, r, 2)
	_, ok := r.Part(2)
	assert.True(t, ok)
	assert.False(t, r.NeedsFixing(2))
}

func TestFixMissing_InvalidMount(t *testing.T) {
	r := newFixture(testMech()).roster(t)
	r.slots[4] = &Slot{Missing: &MissingPart{Kind: KindEquipment, TypeID: "case", Mount: 9}}

	err := r.Fix(4, nil)
	assert.ErrorIs(t, err, ErrNoMount)
	_, still := r.Missing(4)
	assert.True(t, still)
}

func TestIsAcceptableReplacement(t *testing.T) {
	cat := catalog.Default()
	missingBin := &MissingPart{
		Kind: KindAmmoBin, TypeID: "is-ammo-lrm-20", Mount: 1, Tonnage: 1,
		Bin: &Bin{Kind: BinStandard, Capacity: 6},
	}
	spare := func(typeID string, capacity int) *Part {
		return &Part{
			Kind: KindAmmoBin, TypeID: typeID, Mount: unit.NoMount, Tonnage: 1, Quantity: 1,
			Bin: &Bin{Kind: BinStandard, Capacity: capacity},
		}
	}

	tests := []struct {
		name    string
		missing *MissingPart
		part    *Part
		want    bool
	}{
		{"same bin", missingBin, spare("is-ammo-lrm-20", 6), true},
		{"compatible munition", missingBin, spare("is-ammo-lrm-20-thunder", 6), true},
		{"other family", missingBin, spare("is-ammo-srm-6", 6), false},
		{"other capacity", missingBin, spare("is-ammo-lrm-20", 12), false},
		{"attached", missingBin, func() *Part { p := spare("is-ammo-lrm-20", 6); p.Mount = 3; return p }(), false},
		{"nil", missingBin, nil, false},
		{
			"masc engine rating",
			&MissingPart{Kind: KindMASC, TypeID: "is-masc", Mount: 2, Tonnage: 4, EngineRating: 300},
			&Part{Kind: KindMASC, TypeID: "is-masc", Mount: unit.NoMount, Tonnage: 4, EngineRating: 250},
			false,
		},
		{
			"pod mounting",
			&MissingPart{Kind: KindHeatSink, TypeID: "heat-sink", Mount: 2, Tonnage: 1, OmniPod: true},
			&Part{Kind: KindHeatSink, TypeID: "heat-sink", Mount: unit.NoMount, Tonnage: 1},
			false,
		},
		{
			"trooper",
			&MissingPart{Kind: KindBAEquipment, TypeID: "ba-jump-pack", Mount: 2, Tonnage: 0.05, Trooper: 1},
			&Part{Kind: KindBAEquipment, TypeID: "ba-jump-pack", Mount: unit.NoMount, Tonnage: 0.05, Trooper: 1},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.missing.IsAcceptableReplacement(tt.part, cat))
		})
	}
}

func TestIsSamePartType(t *testing.T) {
	a := &Part{Kind: KindJumpJet, TypeID: "jump-jet", Tonnage: 0.5}
	b := a.Clone()
	assert.True(t, a.IsSamePartType(b))

	b.Tonnage = 1
	assert.False(t, a.IsSamePartType(b), "jump jets from heavier units are not interchangeable")

	assert.False(t, a.IsSamePartType(nil))
}

func TestMissingPart_BayHasNone(t *testing.T) {
	p := &Part{Kind: KindAmmoBin, TypeID: "is-ammo-ac-10", Bin: &Bin{Kind: BinBay}}
	_, ok := p.MissingPart()
	assert.False(t, ok)
}

func TestCheckLog(t *testing.T) {
	var nilLog *CheckLog
	assert.False(t, nilLog.Checked(uuid.New(), "heat-sink"))
	nilLog.Mark(uuid.New(), "heat-sink")
	assert.Zero(t, nilLog.Len())

	id := uuid.New()
	l := NewCheckLog(day)
	l.Mark(id, "heat-sink")
	assert.True(t, l.Checked(id, "heat-sink"))
	assert.False(t, l.Checked(id, "jump-jet"))
	assert.False(t, l.Checked(uuid.New(), "heat-sink"))

	l.Advance(day.Add(6 * time.Hour))
	assert.True(t, l.Checked(id, "heat-sink"), "same calendar day")

	l.Advance(day.AddDate(0, 0, 1))
	assert.False(t, l.Checked(id, "heat-sink"))
	assert.Zero(t, l.Len())
}
