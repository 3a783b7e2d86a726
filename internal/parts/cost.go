package parts

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/OCAP2/armory/internal/catalog"
)

// costRow holds the repair cost of one part variant. Times are minutes.
type costRow struct {
	repair  int // per hit when damaged
	replace int // installing or removing the whole part
	podded  int // installing or removing an omni-pod
	repairD int
	replD   int
	poddedD int
}

var costTable = map[Kind]costRow{
	KindEquipment:   {repair: 100, replace: 120, podded: 30, repairD: 0, replD: 0, poddedD: -1},
	KindHeatSink:    {repair: 90, replace: 90, podded: 30, repairD: -2, replD: -2, poddedD: -3},
	KindJumpJet:     {repair: 60, replace: 60, podded: 30, repairD: 0, replD: 0, poddedD: -1},
	KindMASC:        {repair: 120, replace: 270, podded: 30, repairD: 2, replD: 2, poddedD: 1},
	KindBAEquipment: {repair: 120, replace: 120, podded: 120, repairD: 0, replD: 0, poddedD: 0},
	KindAmmoBin:     {repair: 15, replace: 120, podded: 30, repairD: -2, replD: 0, poddedD: -1},
}

const (
	capitalChunkTime = 60
	tonChunkTime     = 15
)

// WorkOrder is the cost input of one slot.
type WorkOrder struct {
	Kind      Kind
	BinKind   BinKind
	Capital   bool
	Hits      int
	Salvaging bool
	Missing   bool
	OmniPod   bool
	// Tons of ammunition the next reload moves.
	Tons float64
}

// BaseTime is the minutes of work for one Fix.
func BaseTime(w WorkOrder) int {
	row := costTable[w.Kind]
	if w.Salvaging || w.Missing {
		if w.OmniPod {
			return row.podded
		}
		return row.replace
	}
	if w.Kind == KindAmmoBin {
		if w.BinKind == BinBay && w.Capital {
			return capitalChunkTime
		}
		return tonChunkTime * max(1, int(math.Ceil(w.Tons)))
	}
	return row.repair * max(w.Hits, 1)
}

// Difficulty is the target modifier for one Fix.
func Difficulty(w WorkOrder) int {
	row := costTable[w.Kind]
	switch {
	case (w.Salvaging || w.Missing) && w.OmniPod:
		return row.poddedD
	case w.Salvaging || w.Missing:
		return row.replD
	default:
		return row.repairD + max(w.Hits-1, 0)
	}
}

// WorkOrder describes the pending work on a slot.
func (r *Roster) WorkOrder(idx int) (WorkOrder, bool) {
	s, ok := r.slots[idx]
	if !ok {
		return WorkOrder{}, false
	}
	if m := s.Missing; m != nil {
		w := WorkOrder{Kind: m.Kind, Missing: true, OmniPod: m.OmniPod}
		if m.Bin != nil {
			w.BinKind = m.Bin.Kind
		}
		return w, true
	}
	p := s.Part
	w := WorkOrder{Kind: p.Kind, Hits: p.Hits, Salvaging: p.Salvaging, OmniPod: p.OmniPod}
	if p.Bin != nil {
		w.BinKind = p.Bin.Kind
		if t := r.lookup(p.TypeID); t != nil {
			w.Capital = t.Capital
			w.Tons = r.reloadTons(p, t)
		}
	}
	return w, true
}

// reloadTons is the tonnage the next Fix on a bin moves in or out. Bay bins
// move at most one chunk.
func (r *Roster) reloadTons(p *Part, t *catalog.EquipmentType) float64 {
	shots := absInt(r.shotsNeeded(p))
	if p.Bin.Kind == BinBay {
		shots = min(shots, shotsPerChunk(t))
	}
	return t.TonsFor(shots)
}

// BaseTime returns the minutes the next Fix on a slot takes.
func (r *Roster) BaseTime(idx int) int {
	w, ok := r.WorkOrder(idx)
	if !ok {
		return 0
	}
	return BaseTime(w)
}

// Difficulty returns the target modifier of the next Fix on a slot.
func (r *Roster) Difficulty(idx int) int {
	w, ok := r.WorkOrder(idx)
	if !ok {
		return 0
	}
	return Difficulty(w)
}

// Value returns the worth of the part in a slot, including loaded rounds.
func (r *Roster) Value(idx int) decimal.Decimal {
	p, ok := r.Part(idx)
	if !ok {
		return decimal.Zero
	}
	loaded := 0
	if p.Kind == KindAmmoBin && !r.mismatched(p) {
		loaded = r.unit.CurrentLoad(idx)
	}
	return PartValue(p, r.deps.Catalog, loaded)
}

// PartValue prices a part. Ammunition is priced per ton and divided into
// shots; an empty bin is worth nothing.
func PartValue(p *Part, cat *catalog.Catalog, loaded int) decimal.Decimal {
	t, ok := cat.Get(p.TypeID)
	if !ok {
		return decimal.Zero
	}
	var v decimal.Decimal
	switch p.Kind {
	case KindAmmoBin:
		v = t.PricePerShot().Mul(decimal.NewFromInt(int64(loaded)))
	case KindMASC:
		v = t.Price.Mul(decimal.NewFromInt(int64(p.EngineRating))).Mul(decimal.NewFromFloat(p.Tonnage))
	case KindJumpJet:
		if t.Tonnage > 0 {
			v = t.Price.Mul(decimal.NewFromFloat(math.Round(p.Tonnage / t.Tonnage)))
		} else {
			v = t.Price
		}
	default:
		v = t.Price
	}
	return v.Mul(decimal.NewFromInt(int64(max(p.Quantity, 1))))
}
