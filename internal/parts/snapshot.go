package parts

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/OCAP2/armory/internal/catalog"
	"github.com/OCAP2/armory/internal/unit"
	"github.com/OCAP2/armory/pkg/core"
)

// Record converts a part to its persisted form. For bins Hits carries the
// signed shots-needed deficit.
func (p *Part) Record() core.PartRecord {
	rec := core.PartRecord{
		ID:           p.ID,
		Kind:         p.Kind.String(),
		TypeID:       p.TypeID,
		Mount:        p.Mount,
		Hits:         p.Hits,
		Salvaging:    p.Salvaging,
		OmniPod:      p.OmniPod,
		Quantity:     p.Quantity,
		Tonnage:      p.Tonnage,
		EngineRating: p.EngineRating,
		Trooper:      p.Trooper,
	}
	if b := p.Bin; b != nil {
		rec.Hits = b.ShotsNeeded
		binRecord(&rec, b)
	}
	return rec
}

// Record converts a placeholder to its persisted form. A placeholder keeps
// its ID across saves.
func (m *MissingPart) Record() core.PartRecord {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	rec := core.PartRecord{
		ID:           m.ID,
		Kind:         m.Kind.String(),
		TypeID:       m.TypeID,
		Mount:        m.Mount,
		Missing:      true,
		OmniPod:      m.OmniPod,
		Tonnage:      m.Tonnage,
		EngineRating: m.EngineRating,
		Trooper:      m.Trooper,
	}
	if m.Bin != nil {
		binRecord(&rec, m.Bin)
	}
	return rec
}

func binRecord(rec *core.PartRecord, b *Bin) {
	rec.BinKind = b.Kind.String()
	rec.OneShot = b.OneShot
	rec.Bay = b.Bay
	rec.Size = b.Size
	rec.Weapon = b.Weapon
	rec.Capacity = b.Capacity
}

// PartFromRecord rebuilds a part. The type must exist in the catalog.
func PartFromRecord(rec core.PartRecord, cat *catalog.Catalog) (*Part, error) {
	kind, ok := ParseKind(rec.Kind)
	if !ok {
		return nil, fmt.Errorf("part %s: unknown kind %q", rec.ID, rec.Kind)
	}
	if _, err := cat.Lookup(rec.TypeID); err != nil {
		return nil, err
	}
	p := &Part{
		ID:           rec.ID,
		Kind:         kind,
		TypeID:       rec.TypeID,
		Mount:        rec.Mount,
		Hits:         rec.Hits,
		Salvaging:    rec.Salvaging,
		OmniPod:      rec.OmniPod,
		Quantity:     max(rec.Quantity, 1),
		Tonnage:      rec.Tonnage,
		EngineRating: rec.EngineRating,
		Trooper:      rec.Trooper,
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if kind == KindAmmoBin {
		b, err := binFromRecord(rec)
		if err != nil {
			return nil, err
		}
		b.ShotsNeeded = rec.Hits
		p.Bin = b
		p.Hits = 0
	}
	return p, nil
}

func missingFromRecord(rec core.PartRecord, cat *catalog.Catalog) (*MissingPart, error) {
	kind, ok := ParseKind(rec.Kind)
	if !ok {
		return nil, fmt.Errorf("part %s: unknown kind %q", rec.ID, rec.Kind)
	}
	if _, err := cat.Lookup(rec.TypeID); err != nil {
		return nil, err
	}
	m := &MissingPart{
		ID:           rec.ID,
		Kind:         kind,
		TypeID:       rec.TypeID,
		Mount:        rec.Mount,
		Tonnage:      rec.Tonnage,
		OmniPod:      rec.OmniPod,
		EngineRating: rec.EngineRating,
		Trooper:      rec.Trooper,
	}
	if kind == KindAmmoBin {
		b, err := binFromRecord(rec)
		if err != nil {
			return nil, err
		}
		m.Bin = b
	}
	return m, nil
}

func binFromRecord(rec core.PartRecord) (*Bin, error) {
	bk, ok := ParseBinKind(rec.BinKind)
	if !ok {
		return nil, fmt.Errorf("part %s: unknown bin kind %q", rec.ID, rec.BinKind)
	}
	return &Bin{
		Kind:     bk,
		OneShot:  rec.OneShot,
		Bay:      rec.Bay,
		Size:     rec.Size,
		Weapon:   rec.Weapon,
		Capacity: rec.Capacity,
	}, nil
}

// Snapshot returns the persisted form of every slot in mount order.
func (r *Roster) Snapshot() []core.PartRecord {
	out := make([]core.PartRecord, 0, len(r.slots))
	for _, idx := range r.Indexes() {
		s := r.slots[idx]
		var rec core.PartRecord
		if s.Missing != nil {
			rec = s.Missing.Record()
		} else {
			rec = s.Part.Record()
		}
		if pi, ok := r.partners[idx]; ok {
			rec.Partner = &pi
		}
		out = append(out, rec)
	}
	return out
}

// Restore rebuilds a roster from persisted records. Records that reference
// unknown types or invalid mounts indicate corrupted state: they are logged
// and skipped, and the affected mounts are repopulated from the simulation.
func Restore(u Mounts, records []core.PartRecord, deps Dependencies) (*Roster, error) {
	r := NewRoster(u, deps)
	for _, rec := range records {
		if rec.Mount == unit.NoMount || !u.HasMount(rec.Mount) {
			r.log().Warn("Skipping part record without a valid mount", "mount", rec.Mount, "type", rec.TypeID)
			continue
		}
		if _, taken := r.slots[rec.Mount]; taken {
			r.log().Warn("Skipping duplicate part record", "mount", rec.Mount, "type", rec.TypeID)
			continue
		}
		if rec.Missing {
			m, err := missingFromRecord(rec, deps.Catalog)
			if err != nil {
				r.log().Warn("Skipping missing part record", "mount", rec.Mount, "type", rec.TypeID, "error", err)
				continue
			}
			r.slots[rec.Mount] = &Slot{Missing: m}
			continue
		}
		p, err := PartFromRecord(rec, deps.Catalog)
		if err != nil {
			r.log().Warn("Skipping part record", "mount", rec.Mount, "type", rec.TypeID, "error", err)
			continue
		}
		r.slots[rec.Mount] = &Slot{Part: p}
	}
	for _, rec := range records {
		if rec.Partner == nil {
			continue
		}
		if err := r.LinkPartners(rec.Mount, *rec.Partner); err != nil {
			r.log().Warn("Dropping partner link", "mount", rec.Mount, "partner", *rec.Partner, "error", err)
		}
	}
	if err := r.Populate(); err != nil {
		return nil, err
	}
	return r, nil
}
