package campaign

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/armory/internal/catalog"
	"github.com/OCAP2/armory/internal/parts"
	"github.com/OCAP2/armory/internal/quartermaster"
	"github.com/OCAP2/armory/internal/scheduler"
)

var startDay = time.Date(3025, time.March, 1, 0, 0, 0, 0, time.UTC)

func testDeps(t *testing.T) Dependencies {
	t.Helper()
	cat := catalog.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	qm, err := quartermaster.New(cat, quartermaster.WithLogger(logger))
	require.NoError(t, err)
	return Dependencies{Catalog: cat, Quartermaster: qm, Logger: logger, MaxAttempts: 1}
}

func demoCampaign(t *testing.T) *Campaign {
	t.Helper()
	c := New("Kell Hounds", startDay, testDeps(t))
	for _, u := range DemoLance() {
		_, err := c.AddUnit(u)
		require.NoError(t, err)
	}
	require.NoError(t, SeedDemoStock(c.Quartermaster()))
	return c
}

func TestDemoLance_Populates(t *testing.T) {
	c := demoCampaign(t)

	assert.Equal(t, 5, c.Units().Len())
	assert.Greater(t, c.Changes(), 0)

	for _, e := range c.Units().All() {
		assert.Len(t, e.Roster.Indexes(), len(e.Unit.Mounts), e.Unit.Name)
	}

	atlas, err := c.Find("atlas as7-d")
	require.NoError(t, err)
	_, missing := atlas.Roster.Missing(7)
	assert.True(t, missing, "destroyed targeting computer starts missing")

	platoon, err := c.Find("Foot Platoon")
	require.NoError(t, err)
	partner, ok := platoon.Roster.Partner(1)
	require.True(t, ok)
	assert.Equal(t, 2, partner)
}

func TestFind_ByID(t *testing.T) {
	c := demoCampaign(t)
	atlas, err := c.Find("Atlas AS7-D")
	require.NoError(t, err)

	byID, err := c.Find(atlas.Unit.ID.String())
	require.NoError(t, err)
	assert.Same(t, atlas.Roster, byID.Roster)

	_, err = c.Find("Mad Cat")
	assert.Error(t, err)
}

func TestAdvance_ReloadsAndRepairs(t *testing.T) {
	c := demoCampaign(t)
	queued := c.Refresh()
	require.Greater(t, queued, 0)

	results, err := c.Advance(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, results, queued)
	assert.Equal(t, startDay.AddDate(0, 0, 1), c.Day())
	assert.Equal(t, c.Day(), c.Scheduler().Day())

	atlas, err := c.Find("Atlas AS7-D")
	require.NoError(t, err)
	assert.Equal(t, 6, atlas.Unit.Mounts[1].Shots, "LRM bin topped up")
	assert.Equal(t, 10, atlas.Unit.Mounts[3].Shots, "AC bin filled")
	assert.Zero(t, atlas.Unit.Mounts[4].Hits, "heat sink repaired")
	assert.False(t, atlas.Roster.NeedsFixing(4))
	assert.Zero(t, c.Quartermaster().Available(parts.StockKey{Munition: "is-ammo-ac-10"}))

	var waiting bool
	for _, r := range results {
		if r.Task.Unit == atlas.Unit.ID && r.Task.Mount == 7 {
			waiting = r.Outcome == scheduler.Waiting
		}
	}
	assert.True(t, waiting, "no targeting computer on the shelf")
}

func TestAdvance_CancelledContext(t *testing.T) {
	c := demoCampaign(t)
	c.Refresh()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Advance(ctx, 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, startDay, c.Day())
}

func TestSalvageThenReplace(t *testing.T) {
	c := demoCampaign(t)
	atlas, err := c.Find("Atlas AS7-D")
	require.NoError(t, err)

	require.True(t, c.Scheduler().Enqueue(scheduler.Task{Unit: atlas.Unit.ID, Mount: 5, Salvage: true}))
	_, err = c.Advance(context.Background(), 1)
	require.NoError(t, err)

	_, missing := atlas.Roster.Missing(5)
	assert.True(t, missing)
	assert.Equal(t, 1, c.Quartermaster().SpareCount("jump-jet"))

	require.Greater(t, c.Refresh(), 0)
	_, err = c.Advance(context.Background(), 1)
	require.NoError(t, err)

	p, ok := atlas.Roster.Part(5)
	require.True(t, ok, "spare jump jet reinstalled")
	assert.Equal(t, "jump-jet", p.TypeID)
	assert.Zero(t, c.Quartermaster().SpareCount("jump-jet"))
	assert.False(t, atlas.Unit.Mounts[5].Destroyed)
}

func TestRecordRestore(t *testing.T) {
	c := demoCampaign(t)
	c.Refresh()
	rec := c.Record()

	assert.Equal(t, "Kell Hounds", rec.Name)
	assert.Len(t, rec.Units, 5)
	assert.NotEmpty(t, rec.Stock)
	assert.NotEmpty(t, rec.Tasks)

	restored, err := Restore(rec, testDeps(t))
	require.NoError(t, err)
	assert.Zero(t, restored.Changes())
	assert.Equal(t, c.Units().Len(), restored.Units().Len())
	assert.Len(t, restored.Scheduler().Pending(), len(rec.Tasks))

	key := parts.StockKey{Munition: "inf-ammo-auto-rifle", Weapon: "inf-auto-rifle"}
	assert.Equal(t, c.Quartermaster().Available(key), restored.Quartermaster().Available(key))

	atlas, err := restored.Find("Atlas AS7-D")
	require.NoError(t, err)
	_, missing := atlas.Roster.Missing(7)
	assert.True(t, missing)

	again := restored.Record()
	assert.Equal(t, rec.Stock, again.Stock)
	assert.Len(t, again.Units, len(rec.Units))
}
