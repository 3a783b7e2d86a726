// Package parts implements the equipment and ammunition part lifecycle:
// functional, damaged, missing and salvage states for parts on a unit, and
// the shots-needed bookkeeping that keeps ammunition bins in balance with
// the quartermaster's stock.
package parts

import (
	"math"

	"github.com/google/uuid"

	"github.com/OCAP2/armory/internal/catalog"
	"github.com/OCAP2/armory/internal/unit"
)

// Kind is the concrete part variant.
type Kind int

const (
	KindEquipment Kind = iota
	KindHeatSink
	KindJumpJet
	KindMASC
	KindBAEquipment
	KindAmmoBin
)

func (k Kind) String() string {
	switch k {
	case KindEquipment:
		return "equipment"
	case KindHeatSink:
		return "heatsink"
	case KindJumpJet:
		return "jumpjet"
	case KindMASC:
		return "masc"
	case KindBAEquipment:
		return "ba_equipment"
	case KindAmmoBin:
		return "ammo_bin"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k := KindEquipment; k <= KindAmmoBin; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return KindEquipment, false
}

// kindFor maps a catalog entry to the part variant that represents it.
func kindFor(t *catalog.EquipmentType) Kind {
	switch t.Kind {
	case catalog.KindAmmo:
		return KindAmmoBin
	case catalog.KindHeatSink:
		return KindHeatSink
	case catalog.KindJumpJet:
		return KindJumpJet
	case catalog.KindMASC:
		return KindMASC
	case catalog.KindBAEquip:
		return KindBAEquipment
	default:
		return KindEquipment
	}
}

// Part is one physical equipment instance, either installed on a mount or
// held as a spare (Mount == unit.NoMount).
type Part struct {
	ID        uuid.UUID
	Kind      Kind
	TypeID    string
	Mount     int
	Hits      int
	Salvaging bool
	OmniPod   bool

	// Quantity counts identical spares folded into one warehouse entry.
	Quantity int
	Tonnage  float64

	EngineRating int
	Trooper      int

	// Bin is set iff Kind == KindAmmoBin.
	Bin *Bin
}

// Attached reports whether the part fills a mount slot.
func (p *Part) Attached() bool { return p.Mount != unit.NoMount }

// Clone returns a detached single copy with a fresh ID.
func (p *Part) Clone() *Part {
	c := *p
	c.ID = uuid.New()
	c.Mount = unit.NoMount
	c.Hits = 0
	c.Salvaging = false
	c.Quantity = 1
	if p.Bin != nil {
		b := *p.Bin
		c.Bin = &b
	}
	return &c
}

// IsSamePartType reports whether two spares are interchangeable for
// warehouse consolidation: same variant, same type, same tonnage and, for
// ammunition, the same effective capacity.
func (p *Part) IsSamePartType(o *Part) bool {
	if p == nil || o == nil || p.Kind != o.Kind || p.TypeID != o.TypeID {
		return false
	}
	if !sameTonnage(p.Tonnage, o.Tonnage) || p.OmniPod != o.OmniPod {
		return false
	}
	switch p.Kind {
	case KindMASC:
		return p.EngineRating == o.EngineRating
	case KindBAEquipment:
		return p.Trooper == o.Trooper
	case KindAmmoBin:
		return p.Bin != nil && o.Bin != nil &&
			p.Bin.Kind == o.Bin.Kind &&
			p.Bin.Capacity == o.Bin.Capacity
	default:
		return true
	}
}

// MissingPart returns the placeholder that stands in for this part when it
// is removed. Bay bins model capacity and have none.
func (p *Part) MissingPart() (*MissingPart, bool) {
	if p.Kind == KindAmmoBin && p.Bin != nil && p.Bin.Kind == BinBay {
		return nil, false
	}
	m := &MissingPart{
		ID:           uuid.New(),
		Kind:         p.Kind,
		TypeID:       p.TypeID,
		Mount:        p.Mount,
		Tonnage:      p.Tonnage,
		OmniPod:      p.OmniPod,
		EngineRating: p.EngineRating,
		Trooper:      p.Trooper,
	}
	if p.Bin != nil {
		b := *p.Bin
		b.ShotsNeeded = 0
		m.Bin = &b
	}
	return m, true
}

// MissingPart occupies a mount slot whose physical part is absent.
type MissingPart struct {
	ID           uuid.UUID
	Kind         Kind
	TypeID       string
	Mount        int
	Tonnage      float64
	OmniPod      bool
	EngineRating int
	Trooper      int
	Bin          *Bin
}

// IsAcceptableReplacement reports whether a spare can fill this slot. It is
// stricter than IsSamePartType: variant identity keys must match too.
func (m *MissingPart) IsAcceptableReplacement(c *Part, cat *catalog.Catalog) bool {
	if c == nil || c.Attached() || c.Kind != m.Kind {
		return false
	}
	if !sameTonnage(m.Tonnage, c.Tonnage) {
		return false
	}
	switch m.Kind {
	case KindAmmoBin:
		if m.Bin == nil || c.Bin == nil {
			return false
		}
		if m.Bin.Kind != c.Bin.Kind || m.Bin.OneShot != c.Bin.OneShot || m.Bin.Capacity != c.Bin.Capacity {
			return false
		}
		if m.Bin.Kind == BinInfantry && m.Bin.Weapon != c.Bin.Weapon {
			return false
		}
		if c.TypeID == m.TypeID {
			return true
		}
		want, okWant := cat.Get(m.TypeID)
		got, okGot := cat.Get(c.TypeID)
		return okWant && okGot && catalog.Compatible(want, got)
	case KindMASC:
		return c.TypeID == m.TypeID && c.EngineRating == m.EngineRating
	case KindBAEquipment:
		return c.TypeID == m.TypeID && c.Trooper == m.Trooper
	default:
		return c.TypeID == m.TypeID && c.OmniPod == m.OmniPod
	}
}

func sameTonnage(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// derivedTonnage is the weight of a part as fitted to a unit of the given
// mass. MASC and jump jets scale with the unit.
func derivedTonnage(t *catalog.EquipmentType, unitTonnage float64) float64 {
	switch t.Kind {
	case catalog.KindMASC:
		return math.Round(unitTonnage / 20)
	case catalog.KindJumpJet:
		scale := 1.0
		switch {
		case unitTonnage > 85:
			scale = 4
		case unitTonnage > 55:
			scale = 2
		}
		return t.Tonnage * scale
	default:
		return t.Tonnage
	}
}
