package parts

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/armory/internal/catalog"
	"github.com/OCAP2/armory/pkg/core"
)

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	u := testMech()
	u.Mounts[1].Shots = 2
	u.Mounts[2].Hits = 1
	u.Mounts[3].Destroyed = true
	f := newFixture(u)
	r := f.roster(t)
	require.NoError(t, r.SetSalvaging(2, true))

	records := r.Snapshot()
	require.Len(t, records, 5)
	assert.Equal(t, 4, records[1].Hits, "bins persist their deficit in the hits field")
	assert.Equal(t, "standard", records[1].BinKind)
	assert.True(t, records[3].Missing)

	restored, err := Restore(u, records, f.deps)
	require.NoError(t, err)

	assert.Equal(t, r.Indexes(), restored.Indexes())
	need, _ := restored.ShotsNeeded(1)
	assert.Equal(t, 4, need)
	p, ok := restored.Part(2)
	require.True(t, ok)
	assert.True(t, p.Salvaging)
	assert.Equal(t, 1, p.Hits)
	assert.Equal(t, records[2].ID, p.ID)
	_, missing := restored.Missing(3)
	assert.True(t, missing)
}

func TestSnapshot_MissingPartKeepsID(t *testing.T) {
	u := testMech()
	u.Mounts[3].Destroyed = true
	f := newFixture(u)
	r := f.roster(t)

	first := r.Snapshot()[3]
	require.True(t, first.Missing)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, first.ID, r.Snapshot()[3].ID, "saving twice keeps the placeholder ID")

	restored, err := Restore(u, r.Snapshot(), f.deps)
	require.NoError(t, err)
	m, ok := restored.Missing(3)
	require.True(t, ok)
	assert.Equal(t, first.ID, m.ID)
	assert.Equal(t, first.ID, restored.Snapshot()[3].ID)
}

func TestRestore_SkipsCorruptRecords(t *testing.T) {
	u := testMech()
	f := newFixture(u)
	records := f.roster(t).Snapshot()

	records[2].TypeID = "bogus"
	records[4].Mount = 42
	records[0].Kind = "phaser"

	r, err := Restore(u, records, f.deps)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, r.Indexes(), "skipped mounts are repopulated from the unit")
	p, ok := r.Part(2)
	require.True(t, ok)
	assert.Equal(t, "heat-sink", p.TypeID)
	assert.NotEqual(t, records[2].ID, p.ID)
}

func TestRestore_Partners(t *testing.T) {
	u := platoon()
	f := newFixture(u)
	records := f.roster(t).Snapshot()
	require.NotNil(t, records[1].Partner)
	assert.Equal(t, 2, *records[1].Partner)

	r, err := Restore(u, records, f.deps)
	require.NoError(t, err)

	partner, ok := r.Partner(1)
	require.True(t, ok)
	assert.Equal(t, 2, partner)
	p, _ := r.Part(2)
	assert.Equal(t, "inf-srm-launcher", p.Bin.Weapon)
}

func TestPartFromRecord_LegacyCapacity(t *testing.T) {
	data := []byte(`{
		"id": "5b0ea3c4-3c5a-4f0e-9d7e-0f4f4a1f2a11",
		"kind": "ammo_bin",
		"type": "inf-ammo-srm",
		"mount": 1,
		"hits": -2,
		"binKind": "infantry",
		"weapon": "inf-srm-launcher",
		"capacity": 4
	}`)
	var rec core.PartRecord
	require.NoError(t, json.Unmarshal(data, &rec))

	p, err := PartFromRecord(rec, catalog.Default())
	require.NoError(t, err)

	assert.Equal(t, 4.0, p.Bin.Size)
	assert.Equal(t, -2, p.Bin.ShotsNeeded)
	assert.Zero(t, p.Hits)
	assert.Equal(t, BinInfantry, p.Bin.Kind)
}

func TestPartFromRecord_Errors(t *testing.T) {
	cat := catalog.Default()

	_, err := PartFromRecord(core.PartRecord{Kind: "ammo_bin", TypeID: "nope"}, cat)
	assert.ErrorIs(t, err, catalog.ErrUnknownType)

	_, err = PartFromRecord(core.PartRecord{Kind: "ammo_bin", TypeID: "is-ammo-mg", BinKind: "hopper"}, cat)
	assert.Error(t, err)

	p, err := PartFromRecord(core.PartRecord{Kind: "heatsink", TypeID: "heat-sink"}, cat)
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", p.ID.String())
	assert.Equal(t, 1, p.Quantity)
}
