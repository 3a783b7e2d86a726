// Package catalog holds the immutable equipment catalog that parts refer to by
// type ID. Entries define native capacity, tonnage and cost basis; nothing in
// the catalog changes once loaded.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Kind classifies catalog entries.
type Kind string

const (
	KindWeapon    Kind = "weapon"
	KindAmmo      Kind = "ammo"
	KindHeatSink  Kind = "heatsink"
	KindJumpJet   Kind = "jumpjet"
	KindMASC      Kind = "masc"
	KindBAEquip   Kind = "ba_equipment"
	KindEquipment Kind = "equipment"
)

// StandardMunition is the munition name of the default load for a family.
const StandardMunition = "standard"

// ErrUnknownType is returned when a type ID is not in the catalog.
var ErrUnknownType = errors.New("unknown equipment type")

// EquipmentType is one catalog entry.
type EquipmentType struct {
	ID      string          `yaml:"id"`
	Name    string          `yaml:"name"`
	Kind    Kind            `yaml:"kind"`
	Tonnage float64         `yaml:"tonnage"`
	Price   decimal.Decimal `yaml:"price"`

	// Ammunition. Shots is the number of rounds one catalog unit (Tonnage
	// tons) holds.
	Family   string `yaml:"family,omitempty"`
	RackSize int    `yaml:"rackSize,omitempty"`
	Munition string `yaml:"munition,omitempty"`
	Shots    int    `yaml:"shots,omitempty"`
	Capital  bool   `yaml:"capital,omitempty"`

	// Infantry weapons. AmmoFamily names the ammo family the weapon fires.
	ShotsPerClip int    `yaml:"shotsPerClip,omitempty"`
	AmmoFamily   string `yaml:"ammoFamily,omitempty"`

	// Flags.
	OneShot     bool `yaml:"oneShot,omitempty"`
	NoCritHits  bool `yaml:"noCritHits,omitempty"`
	OmniPodable bool `yaml:"omniPodable,omitempty"`
}

// IsAmmo reports whether the entry is an ammunition type.
func (t *EquipmentType) IsAmmo() bool { return t.Kind == KindAmmo }

// IsStandardMunition reports whether the ammo is the family's default load.
func (t *EquipmentType) IsStandardMunition() bool {
	return t.Munition == "" || t.Munition == StandardMunition
}

// ShotsPerTon returns rounds per ton of ammunition. Capital munitions weigh
// more than a ton per round, so the result may be below one.
func (t *EquipmentType) ShotsPerTon() float64 {
	if t.Tonnage <= 0 {
		return float64(t.Shots)
	}
	return float64(t.Shots) / t.Tonnage
}

// ShotsIn returns the whole rounds that fit in the given tonnage.
func (t *EquipmentType) ShotsIn(tons float64) int {
	if t.Tonnage <= 0 {
		return int(math.Floor(tons * float64(t.Shots)))
	}
	return int(math.Floor(tons*float64(t.Shots)/t.Tonnage + 1e-9))
}

// TonsFor returns whole tons occupied by the given number of rounds.
func (t *EquipmentType) TonsFor(shots int) float64 {
	if shots <= 0 || t.Shots <= 0 {
		return 0
	}
	return math.Ceil(float64(shots) * t.Tonnage / float64(t.Shots))
}

// PricePerShot is the ton price divided by rounds per ton. Prices are kept
// per standard ton in the catalog so bins of any size value consistently.
func (t *EquipmentType) PricePerShot() decimal.Decimal {
	if t.Shots <= 0 {
		return decimal.Zero
	}
	perTon := t.Price
	if t.Tonnage > 0 {
		perTon = t.Price.Div(decimal.NewFromFloat(t.Tonnage))
	}
	return perTon.Div(decimal.NewFromFloat(t.ShotsPerTon()))
}

// Feeds reports whether the ammo type can be loaded into clips for the
// weapon. Weapons without an ammo family accept any ammunition.
func (t *EquipmentType) Feeds(ammo *EquipmentType) bool {
	if ammo == nil || !ammo.IsAmmo() || t.Kind != KindWeapon {
		return false
	}
	return t.AmmoFamily == "" || strings.EqualFold(t.AmmoFamily, ammo.Family)
}

// Compatible reports whether two ammo types may be swapped in the same bin:
// same family and same rack size.
func Compatible(a, b *EquipmentType) bool {
	if a == nil || b == nil || !a.IsAmmo() || !b.IsAmmo() {
		return false
	}
	return strings.EqualFold(a.Family, b.Family) && a.RackSize == b.RackSize
}

// Catalog is a read-only set of equipment types keyed by ID.
type Catalog struct {
	types map[string]*EquipmentType
}

type catalogFile struct {
	Equipment []*EquipmentType `yaml:"equipment"`
}

//go:embed default.yaml
var defaultCatalog []byte

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Errorf("embedded catalog: %w", err))
	}
	return c
}

// Load reads a YAML catalog from disk. An empty path yields the embedded
// catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(f.Equipment...)
}

// New builds a catalog from explicit entries.
func New(types ...*EquipmentType) (*Catalog, error) {
	c := &Catalog{types: make(map[string]*EquipmentType, len(types))}
	for _, t := range types {
		if t == nil || t.ID == "" {
			return nil, errors.New("catalog entry without id")
		}
		if _, dup := c.types[t.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", t.ID)
		}
		if t.Kind == "" {
			t.Kind = KindEquipment
		}
		if t.IsAmmo() && t.Munition == "" {
			t.Munition = StandardMunition
		}
		c.types[t.ID] = t
	}
	return c, nil
}

// Get returns the entry for id.
func (c *Catalog) Get(id string) (*EquipmentType, bool) {
	t, ok := c.types[id]
	return t, ok
}

// Lookup returns the entry for id or ErrUnknownType.
func (c *Catalog) Lookup(id string) (*EquipmentType, error) {
	t, ok := c.types[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, id)
	}
	return t, nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.types) }

// Munitions lists every ammo type compatible with the given one, sorted by ID.
func (c *Catalog) Munitions(id string) []*EquipmentType {
	base, ok := c.types[id]
	if !ok {
		return nil
	}
	var out []*EquipmentType
	for _, t := range c.types {
		if Compatible(base, t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
