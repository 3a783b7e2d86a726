package parts

import (
	"github.com/OCAP2/armory/internal/catalog"
	"github.com/OCAP2/armory/internal/unit"
)

// BinKind selects the capacity arithmetic of an ammunition bin.
type BinKind int

const (
	// BinStandard holds the mount's native shot capacity.
	BinStandard BinKind = iota
	// BinSquad is a battle armor bin scaled by squad size.
	BinSquad
	// BinInfantry is measured in clips and may share a weapon with a
	// partner bin of another munition.
	BinInfantry
	// BinBay is a slice of tonnage in a large craft weapon bay.
	BinBay
)

// String returns the persisted name of the bin kind.
func (k BinKind) String() string {
	switch k {
	case BinStandard:
		return "standard"
	case BinSquad:
		return "squad"
	case BinInfantry:
		return "infantry"
	case BinBay:
		return "bay"
	default:
		return "unknown"
	}
}

// ParseBinKind is the inverse of BinKind.String.
func ParseBinKind(s string) (BinKind, bool) {
	for k := BinStandard; k <= BinBay; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return BinStandard, false
}

// binKindFor picks the bin variant for a unit type.
func binKindFor(k unit.Kind) BinKind {
	switch k {
	case unit.KindBattleArmor:
		return BinSquad
	case unit.KindInfantry:
		return BinInfantry
	case unit.KindLargeCraft:
		return BinBay
	default:
		return BinStandard
	}
}

// Bin is the ammunition state of a part. The configured munition is the
// owning Part's TypeID.
type Bin struct {
	Kind BinKind
	// ShotsNeeded is the stored deficit against full capacity. Infantry and
	// bay bins may hold a negative value meaning excess to shed.
	ShotsNeeded int
	OneShot     bool
	// Size is the clip count (infantry) or tons (bay).
	Size float64
	// Bay is the weapon bay mount index for BinBay.
	Bay int
	// Weapon is the infantry weapon type; infantry stock is keyed by it.
	Weapon string
	// Capacity is the full shot count captured when the bin was detached,
	// used to compare spares.
	Capacity int
}

// StockKey identifies a quantity in the ammunition pool. Weapon is empty
// except for infantry clips, which are not interchangeable across weapons.
type StockKey struct {
	Munition string
	Weapon   string
}

// bay bins are chunked by ton; a ton holds at least one round.
func shotsPerChunk(t *catalog.EquipmentType) int {
	return max(1, t.ShotsIn(1))
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
