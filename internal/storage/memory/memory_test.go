package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/armory/internal/config"
	"github.com/OCAP2/armory/pkg/core"
)

func sample(name string) *core.Campaign {
	return &core.Campaign{
		Name:  name,
		Day:   time.Date(3025, 3, 1, 0, 0, 0, 0, time.UTC),
		Stock: []core.StockRecord{{Munition: "is-ammo-lrm-20", Shots: 18}},
	}
}

func TestSaveLoad_InMemory(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.Init())
	defer b.Close()
	ctx := context.Background()

	c := sample("Kell Hounds")
	require.NoError(t, b.SaveCampaign(ctx, c))

	c.Stock[0].Shots = 0 // later edits are not visible to readers

	got, err := b.LoadCampaign(ctx, "Kell Hounds")
	require.NoError(t, err)
	assert.Equal(t, 18, got.Stock[0].Shots)
	assert.True(t, got.Day.Equal(c.Day))
	assert.Empty(t, b.LastExportPath())

	_, err = b.LoadCampaign(ctx, "Gray Death")
	assert.ErrorIs(t, err, core.ErrCampaignNotFound)
}

func TestSaveCampaign_RequiresName(t *testing.T) {
	b := New(config.MemoryConfig{})
	assert.Error(t, b.SaveCampaign(context.Background(), &core.Campaign{}))
	assert.Error(t, b.SaveCampaign(context.Background(), nil))
}

func TestExport(t *testing.T) {
	tests := []struct {
		name     string
		compress bool
		file     string
	}{
		{"gzip", true, "Kell_Hounds.json.gz"},
		{"plain", false, "Kell_Hounds.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			ctx := context.Background()
			b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: tt.compress})
			require.NoError(t, b.SaveCampaign(ctx, sample("Kell Hounds")))

			path := filepath.Join(dir, tt.file)
			assert.Equal(t, path, b.LastExportPath())
			_, err := os.Stat(path)
			require.NoError(t, err)

			// a fresh backend finds it on disk
			fresh := New(config.MemoryConfig{OutputDir: dir})
			got, err := fresh.LoadCampaign(ctx, "Kell Hounds")
			require.NoError(t, err)
			assert.Equal(t, "Kell Hounds", got.Name)

			names, err := fresh.ListCampaigns(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"Kell Hounds"}, names)
		})
	}
}

func TestListCampaigns_MergesMemoryAndDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	require.NoError(t, WriteFile(filepath.Join(dir, "old.json"), sample("Eridani Light Horse")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.json"), []byte("not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	b := New(config.MemoryConfig{OutputDir: dir})
	require.NoError(t, b.SaveCampaign(ctx, sample("Kell Hounds")))

	names, err := b.ListCampaigns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Eridani Light Horse", "Kell Hounds"}, names)
}

func TestListCampaigns_MissingDir(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: filepath.Join(t.TempDir(), "absent")})
	names, err := b.ListCampaigns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestReadFile_DetectsGzip(t *testing.T) {
	dir := t.TempDir()
	gz := filepath.Join(dir, "a.json.gz")
	require.NoError(t, WriteFile(gz, sample("A")))

	renamed := filepath.Join(dir, "a.bin")
	require.NoError(t, os.Rename(gz, renamed))

	got, err := ReadFile(renamed)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestReadFile_LegacyCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	doc := `{"name":"Legacy","day":"3025-03-01T00:00:00Z","units":[{"id":"6f1c2a3e-8a3b-4a3f-9a55-2d6b8a1f0c11","name":"Foot Platoon","kind":"infantry","tonnage":3,
	"locations":[],"mounts":[],"parts":[{"id":"0b6f6f8e-2a8c-4b9a-8e57-3d6a1e0f2b44","kind":"ammo_bin","type":"inf-ammo-auto-rifle","mount":1,"hits":0,"binKind":"infantry","capacity":2}]}],"stock":[],"spares":[]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got.Units, 1)
	require.Len(t, got.Units[0].Parts, 1)
	assert.Equal(t, 2.0, got.Units[0].Parts[0].Size)
}

func TestWriteFile_VersionedExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.json")
	require.NoError(t, WriteFile(path, sample("Wolf's Dragoons")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"exportVersion": "1"`)
	assert.Contains(t, string(data), `"pooledRounds": 18`)

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Wolf's Dragoons", got.Name)
	assert.Equal(t, 18, got.Stock[0].Shots)
}
