package parts

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/armory/internal/catalog"
	"github.com/OCAP2/armory/internal/unit"
)

type fakeStock struct {
	shots map[StockKey]int
}

func newFakeStock() *fakeStock { return &fakeStock{shots: map[StockKey]int{}} }

func (s *fakeStock) Take(key StockKey, n int) int {
	got := min(s.shots[key], n)
	s.shots[key] -= got
	return got
}

func (s *fakeStock) Give(key StockKey, n int) { s.shots[key] += n }

func (s *fakeStock) Available(key StockKey) int { return s.shots[key] }

type fakeWarehouse struct {
	spares []*Part
}

func (w *fakeWarehouse) FindSpare(match func(*Part) bool) (*Part, bool) {
	for _, p := range w.spares {
		if match(p) {
			return p, true
		}
	}
	return nil, false
}

func (w *fakeWarehouse) ConsumeSpare(p *Part) {
	for i, s := range w.spares {
		if s == p {
			w.spares = append(w.spares[:i], w.spares[i+1:]...)
			return
		}
	}
}

func (w *fakeWarehouse) AddSpare(p *Part) { w.spares = append(w.spares, p) }

type fixture struct {
	unit  *unit.Unit
	stock *fakeStock
	shelf *fakeWarehouse
	deps  Dependencies
}

func newFixture(u *unit.Unit) *fixture {
	f := &fixture{unit: u, stock: newFakeStock(), shelf: &fakeWarehouse{}}
	f.deps = Dependencies{
		Catalog:   catalog.Default(),
		Stock:     f.stock,
		Warehouse: f.shelf,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return f
}

func (f *fixture) roster(t *testing.T) *Roster {
	t.Helper()
	r := NewRoster(f.unit, f.deps)
	require.NoError(t, r.Populate())
	return r
}

// testMech has an LRM bin at mount 1, a heat sink at 2, a jump jet at 3 and
// an arm-mounted CASE at 4.
func testMech() *unit.Unit {
	u := unit.New("Crusader CRD-3R", unit.KindMech, 65)
	u.EngineRating = 260
	lt := u.AddLocation("Left Torso")
	la := u.AddLocation("Left Arm")

	lrm := u.AddMount("is-lrm-20", lt)
	ammo := u.AddMount("is-ammo-lrm-20", lt)
	ammo.Capacity = 6
	lrm.Linked = ammo.Index
	u.AddMount("heat-sink", lt)
	u.AddMount("jump-jet", lt)
	u.AddMount("case", la)
	return u
}

func TestPopulate_BuildsSlots(t *testing.T) {
	u := testMech()
	u.Mounts[3].Destroyed = true
	r := newFixture(u).roster(t)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, r.Indexes())

	p, ok := r.Part(1)
	require.True(t, ok)
	assert.Equal(t, KindAmmoBin, p.Kind)
	assert.Equal(t, BinStandard, p.Bin.Kind)
	assert.Equal(t, 6, p.Bin.Capacity)
	assert.Equal(t, 6, p.Bin.ShotsNeeded)

	m, ok := r.Missing(3)
	require.True(t, ok)
	assert.Equal(t, KindJumpJet, m.Kind)
	assert.Equal(t, 1.0, m.Tonnage, "jump jets on a 65 ton unit weigh double")

	_, ok = r.Part(3)
	assert.False(t, ok)
}

func TestPopulate_UnknownType(t *testing.T) {
	u := testMech()
	u.AddMount("plasma-rifle", 0)

	err := NewRoster(u, newFixture(u).deps).Populate()
	assert.ErrorIs(t, err, catalog.ErrUnknownType)
}

func TestInstall_Occupied(t *testing.T) {
	u := testMech()
	f := newFixture(u)
	r := f.roster(t)

	p, _ := r.Part(2)
	err := r.Install(p.Clone())
	assert.ErrorIs(t, err, ErrNoMount, "a clone is detached")

	c := p.Clone()
	c.Mount = 2
	assert.ErrorIs(t, r.Install(c), ErrSlotOccupied)
	assert.ErrorIs(t, r.InstallMissing(&MissingPart{Kind: KindHeatSink, TypeID: "heat-sink", Mount: 2}), ErrSlotOccupied)
}

func TestNeedsFixing(t *testing.T) {
	u := testMech()
	u.Mounts[1].Shots = 6
	u.Mounts[2].Hits = 1
	u.Mounts[4].Hits = 1
	r := newFixture(u).roster(t)

	assert.False(t, r.NeedsFixing(0))
	assert.False(t, r.NeedsFixing(1), "full bin")
	assert.True(t, r.NeedsFixing(2))
	assert.False(t, r.NeedsFixing(4), "equipment without critical hits never needs repair")
	assert.False(t, r.NeedsFixing(99))
}

func TestCheckFixable_Location(t *testing.T) {
	u := testMech()
	u.Mounts[2].Hits = 1
	r := newFixture(u).roster(t)

	assert.Empty(t, r.CheckFixable(2))

	u.Locations[0].Breached = true
	assert.Equal(t, Reason("Left Torso is breached."), r.CheckFixable(2))

	u.Locations[0].Destroyed = true
	assert.Equal(t, Reason("Left Torso is destroyed."), r.CheckFixable(2))

	err := r.Fix(2, nil)
	assert.ErrorIs(t, err, ErrBlocked)
	p, _ := r.Part(2)
	assert.Equal(t, 1, p.Hits, "blocked work leaves the part untouched")

	require.NoError(t, r.SetSalvaging(2, true))
	assert.Empty(t, r.CheckFixable(2), "salvage ignores location state")
}

func TestFix_RepairsHits(t *testing.T) {
	u := testMech()
	u.Mounts[2].Hits = 2
	r := newFixture(u).roster(t)

	require.NoError(t, r.Fix(2, nil))

	p, _ := r.Part(2)
	assert.Zero(t, p.Hits)
	assert.Zero(t, u.Mounts[2].Hits)
	assert.False(t, r.NeedsFixing(2))
}

func TestRefresh_DestroyedBecomesMissing(t *testing.T) {
	u := testMech()
	r := newFixture(u).roster(t)

	u.Mounts[2].Hits = 1
	u.Mounts[3].Destroyed = true
	u.Mounts[1].Shots = 4
	r.Refresh()

	p, _ := r.Part(2)
	assert.Equal(t, 1, p.Hits)
	_, missing := r.Missing(3)
	assert.True(t, missing)
	need, err := r.ShotsNeeded(1)
	require.NoError(t, err)
	assert.Equal(t, 2, need)
}
