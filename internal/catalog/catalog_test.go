package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Greater(t, c.Len(), 30)

	lrm, err := c.Lookup("is-ammo-lrm-20")
	require.NoError(t, err)
	assert.True(t, lrm.IsAmmo())
	assert.True(t, lrm.IsStandardMunition())
	assert.Equal(t, 6, lrm.Shots)

	_, err = c.Lookup("is-ammo-gauss")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
equipment:
  - { id: ammo-a, kind: ammo, family: x, rackSize: 5, shots: 10, tonnage: 1, price: "1000" }
  - { id: ammo-b, kind: ammo, family: X, rackSize: 5, munition: special, shots: 5, tonnage: 1, price: "1500" }
  - { id: ammo-c, kind: ammo, family: x, rackSize: 10, shots: 5, tonnage: 1, price: "1000" }
  - { id: widget, tonnage: 2, price: "99.5" }
`))
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	a, _ := c.Get("ammo-a")
	assert.Equal(t, StandardMunition, a.Munition)
	w, _ := c.Get("widget")
	assert.Equal(t, KindEquipment, w.Kind)
	assert.True(t, decimal.RequireFromString("99.5").Equal(w.Price))

	ids := func(ts []*EquipmentType) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}
	assert.Equal(t, []string{"ammo-a", "ammo-b"}, ids(c.Munitions("ammo-a")), "family match ignores case")
	assert.Nil(t, c.Munitions("nope"))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("equipment: [{ id: a }, { id: a }]"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = Parse([]byte("equipment: [{ name: nameless }]"))
	assert.ErrorContains(t, err, "without id")

	_, err = Parse([]byte("equipment: {"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Len(), c.Len())

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("equipment: [{ id: only, kind: weapon }]"), 0644))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCompatible(t *testing.T) {
	c := Default()
	get := func(id string) *EquipmentType {
		e, err := c.Lookup(id)
		require.NoError(t, err)
		return e
	}

	assert.True(t, Compatible(get("is-ammo-lrm-20"), get("is-ammo-lrm-20-swarm")))
	assert.False(t, Compatible(get("is-ammo-srm-6"), get("is-ammo-srm-4")), "rack size differs")
	assert.False(t, Compatible(get("is-ammo-ac-10"), get("is-ac-10")), "weapon is not ammo")
	assert.False(t, Compatible(nil, get("is-ammo-ac-10")))
}

func TestShotArithmetic(t *testing.T) {
	c := Default()

	ac, _ := c.Get("is-ammo-ac-10")
	assert.Equal(t, 10.0, ac.ShotsPerTon())
	assert.Equal(t, 2.0, ac.TonsFor(11))
	assert.Zero(t, ac.TonsFor(0))
	assert.True(t, decimal.NewFromInt(600).Equal(ac.PricePerShot()))

	barracuda, _ := c.Get("cap-ammo-barracuda")
	assert.InDelta(t, 1.0/30, barracuda.ShotsPerTon(), 1e-9)
	assert.Equal(t, 60.0, barracuda.TonsFor(2))

	ba, _ := c.Get("ba-ammo-srm-2")
	assert.InDelta(t, 40.0, ba.ShotsPerTon(), 1e-9)

	clip, _ := c.Get("inf-ammo-auto-rifle")
	assert.Equal(t, 10.0, clip.ShotsPerTon(), "weightless clips fall back to shots")
}

func TestShotsIn(t *testing.T) {
	c := Default()
	tests := []struct {
		id   string
		tons float64
		want int
	}{
		{"is-ammo-ac-10", 3, 30},
		{"ba-ammo-srm-2", 1, 40},
		{"ba-ammo-srm-2", 0.3, 12},
		{"cap-ammo-barracuda", 60, 2},
		{"cap-ammo-barracuda", 59, 1},
		{"cap-ammo-white-shark", 30, 0},
		{"inf-ammo-srm", 2, 4},
	}
	for _, tt := range tests {
		typ, ok := c.Get(tt.id)
		require.True(t, ok, tt.id)
		assert.Equal(t, tt.want, typ.ShotsIn(tt.tons), "%s x %v", tt.id, tt.tons)
	}
}

func TestFeeds(t *testing.T) {
	c := Default()
	launcher, _ := c.Get("inf-srm-launcher")
	srm, _ := c.Get("inf-ammo-srm-inferno")
	rifle, _ := c.Get("inf-ammo-auto-rifle")
	mech, _ := c.Get("is-lrm-20")
	lrm, _ := c.Get("is-ammo-lrm-20")

	assert.True(t, launcher.Feeds(srm))
	assert.False(t, launcher.Feeds(rifle))
	assert.False(t, launcher.Feeds(nil))
	assert.True(t, mech.Feeds(lrm), "weapons without an ammo family accept any ammo")
	assert.False(t, lrm.Feeds(lrm))
}
