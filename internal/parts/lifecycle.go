package parts

import (
	"fmt"

	"github.com/google/uuid"
)

// NeedsFixing reports whether the slot has pending work.
func (r *Roster) NeedsFixing(idx int) bool {
	s, ok := r.slots[idx]
	if !ok {
		return false
	}
	if s.Missing != nil {
		return true
	}
	p := s.Part
	switch p.Kind {
	case KindAmmoBin:
		return r.binNeedsFixing(p)
	case KindBAEquipment:
		return false
	default:
		if t := r.lookup(p.TypeID); t != nil && t.NoCritHits {
			return false
		}
		return p.Hits > 0
	}
}

func (r *Roster) binNeedsFixing(p *Part) bool {
	switch p.Bin.Kind {
	case BinBay:
		if r.mismatched(p) {
			return r.unit.CurrentLoad(p.Mount) > 0 || r.bayChangeFeasible(p)
		}
		return p.Bin.ShotsNeeded != 0
	case BinInfantry:
		return r.shotsNeeded(p) != 0
	case BinSquad:
		return r.shotsNeeded(p) >= r.unit.NominalSquadSize()
	default:
		return r.shotsNeeded(p) > 0
	}
}

// Reason explains why work on a slot is blocked. The zero value means the
// work can proceed.
type Reason string

// CheckFixable returns why work on the slot cannot proceed now, or "" if it
// can. Callers re-check every scheduling cycle.
func (r *Roster) CheckFixable(idx int) Reason {
	s, ok := r.slots[idx]
	if !ok {
		return "Nothing is installed in this slot."
	}
	if s.Part != nil && s.Part.Salvaging {
		return ""
	}
	loc := r.unit.LocationOf(idx)
	if r.unit.IsLocationDestroyed(loc) {
		return Reason(fmt.Sprintf("%s is destroyed.", r.unit.LocationName(loc)))
	}
	if r.unit.IsLocationBreached(loc) {
		return Reason(fmt.Sprintf("%s is breached.", r.unit.LocationName(loc)))
	}
	if s.Part == nil || s.Part.Kind != KindAmmoBin {
		return ""
	}
	return r.checkBin(s.Part)
}

func (r *Roster) checkBin(p *Part) Reason {
	if r.shotsNeeded(p) <= 0 {
		return ""
	}
	key := r.stockKey(p, p.TypeID)
	switch p.Bin.Kind {
	case BinSquad:
		squad := r.unit.NominalSquadSize()
		if r.shotsNeeded(p) < squad {
			return ""
		}
		if r.deps.Stock.Available(key) < squad {
			return Reason(fmt.Sprintf("Not enough ammunition to outfit all %d troopers in the squad.", squad))
		}
		return ""
	case BinBay:
		if r.mismatched(p) {
			if r.unit.CurrentLoad(p.Mount) > 0 {
				return ""
			}
			if !r.bayChangeFeasible(p) {
				return "Insufficient bay capacity for this munition. Unload a sibling bin first."
			}
		}
	}
	if r.deps.Stock.Available(key) == 0 {
		return "No ammunition of this type is available."
	}
	return ""
}

// SetSalvaging marks the part in a slot as targeted for removal.
func (r *Roster) SetSalvaging(idx int, salvaging bool) error {
	p, ok := r.Part(idx)
	if !ok {
		return fmt.Errorf("mount %d: %w", idx, ErrSlotEmpty)
	}
	p.Salvaging = salvaging
	return nil
}

// Fix performs one unit of repair work on the slot: repair damage, reload a
// bin, salvage a part flagged for salvage, or replace a missing part. The
// check log deduplicates replacement searches; it may be nil.
func (r *Roster) Fix(idx int, checks *CheckLog) error {
	s, ok := r.slots[idx]
	if !ok {
		return fmt.Errorf("mount %d: %w", idx, ErrSlotEmpty)
	}
	if reason := r.CheckFixable(idx); reason != "" {
		return fmt.Errorf("mount %d: %w: %s", idx, ErrBlocked, reason)
	}
	if s.Missing != nil {
		return r.fixMissing(idx, s.Missing, checks)
	}
	p := s.Part
	if p.Salvaging {
		return r.Remove(idx, true)
	}
	if p.Kind == KindAmmoBin {
		r.fixBin(p)
		return nil
	}
	if !r.NeedsFixing(idx) {
		return nil
	}
	p.Hits = 0
	r.unit.SetHits(idx, 0)
	r.unit.SetDestroyed(idx, false)
	r.log().Info("Repaired part", "mount", idx, "type", p.TypeID, "kind", p.Kind.String())
	return nil
}

func (r *Roster) fixBin(p *Part) {
	switch p.Bin.Kind {
	case BinStandard:
		r.loadBin(p)
	case BinSquad:
		r.loadSquad(p)
	case BinInfantry:
		r.loadInfantry(p)
	case BinBay:
		if r.mismatched(p) && r.unit.CurrentLoad(p.Mount) > 0 {
			r.unloadSingleTon(p)
			return
		}
		if r.shotsNeeded(p) < 0 {
			r.unloadSingleTon(p)
			return
		}
		r.loadBinSingleTon(p)
	}
}

// Remove takes the part out of its slot and installs a placeholder. With
// salvage the part goes to the warehouse as a spare; otherwise it is
// scrapped. Squad bins cannot be removed individually and bay bins only
// unload.
func (r *Roster) Remove(idx int, salvage bool) error {
	p, ok := r.Part(idx)
	if !ok {
		return fmt.Errorf("mount %d: %w", idx, ErrSlotEmpty)
	}
	if p.Kind == KindAmmoBin {
		switch p.Bin.Kind {
		case BinSquad:
			p.Salvaging = false
			r.log().Debug("Squad bins are not removable", "mount", idx)
			return nil
		case BinBay:
			p.Salvaging = false
			r.unload(p)
			return nil
		}
	}
	m, ok := p.MissingPart()
	if !ok {
		return fmt.Errorf("mount %d: %w", idx, ErrNotRemovable)
	}

	if p.Kind == KindAmmoBin {
		p.Bin.Capacity = r.fullShots(p)
		m.Bin.Capacity = p.Bin.Capacity
		if salvage {
			r.unload(p)
		} else if lost := r.unit.CurrentLoad(idx); lost > 0 {
			r.unit.SetLoad(idx, 0)
			r.log().Warn("Scrapped loaded bin", "mount", idx, "type", p.TypeID, "shots", lost)
		}
	}

	if salvage {
		spare := p.Clone()
		spare.ID = p.ID
		if spare.Bin != nil {
			spare.Bin.ShotsNeeded = 0
		}
		r.deps.Warehouse.AddSpare(spare)
		r.log().Info("Salvaged part", "mount", idx, "type", p.TypeID)
	} else {
		r.log().Info("Scrapped part", "mount", idx, "type", p.TypeID)
	}

	r.slots[idx] = &Slot{Missing: m}
	r.unit.SetDestroyed(idx, true)
	return nil
}

// fixMissing fills a placeholder from the warehouse. Ammo bins that have no
// spare are fabricated empty, since the rounds come from stock afterwards.
func (r *Roster) fixMissing(idx int, m *MissingPart, checks *CheckLog) error {
	if m.Mount != idx || !r.unit.HasMount(idx) {
		r.log().Error("Missing part without a valid mount", "mount", m.Mount, "slot", idx, "type", m.TypeID)
		return fmt.Errorf("slot %d: %w", idx, ErrNoMount)
	}
	if checks.Checked(r.UnitID(), m.TypeID) {
		return fmt.Errorf("%s: %w", m.TypeID, ErrAlreadyChecked)
	}

	var part *Part
	if spare, ok := r.deps.Warehouse.FindSpare(func(c *Part) bool {
		return m.IsAcceptableReplacement(c, r.deps.Catalog)
	}); ok {
		part = spare.Clone()
		r.deps.Warehouse.ConsumeSpare(spare)
	} else if m.Kind == KindAmmoBin {
		part = r.fabricateBin(m)
	} else {
		checks.Mark(r.UnitID(), m.TypeID)
		return fmt.Errorf("%s: %w", m.TypeID, ErrNoReplacement)
	}

	part.Mount = idx
	part.OmniPod = m.OmniPod
	r.slots[idx] = &Slot{Part: part}
	r.unit.SetDestroyed(idx, false)
	r.unit.SetHits(idx, 0)
	if part.Kind == KindAmmoBin {
		r.unit.SetMountType(idx, part.TypeID)
		r.unit.SetLoad(idx, 0)
		r.unit.SetSize(idx, part.Bin.Size)
		part.Bin.ShotsNeeded = r.fullShots(part)
	}
	r.log().Info("Replaced missing part", "mount", idx, "type", part.TypeID)
	return nil
}

func (r *Roster) fabricateBin(m *MissingPart) *Part {
	b := *m.Bin
	return &Part{
		ID:       uuid.New(),
		Kind:     KindAmmoBin,
		TypeID:   m.TypeID,
		Mount:    m.Mount,
		Quantity: 1,
		Tonnage:  m.Tonnage,
		Trooper:  m.Trooper,
		Bin:      &b,
	}
}

// Refresh pulls damage and ammunition state from the simulation: hits are
// copied onto parts, destroyed equipment becomes missing and bin deficits
// follow the mount load.
func (r *Roster) Refresh() {
	for _, idx := range r.Indexes() {
		p, ok := r.Part(idx)
		if !ok {
			continue
		}
		if r.unit.IsDestroyed(idx) && !isSquadBin(p) {
			if m, ok := p.MissingPart(); ok {
				if m.Bin != nil {
					m.Bin.Capacity = r.fullShots(p)
				}
				r.slots[idx] = &Slot{Missing: m}
				r.log().Info("Part destroyed", "mount", idx, "type", p.TypeID)
				continue
			}
		}
		if p.Kind == KindAmmoBin {
			r.resync(p)
			continue
		}
		p.Hits = r.unit.Hits(idx)
	}
}

func isSquadBin(p *Part) bool {
	return p.Kind == KindAmmoBin && p.Bin != nil && p.Bin.Kind == BinSquad
}
