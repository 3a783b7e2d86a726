package unit

import "github.com/OCAP2/armory/pkg/core"

// Record converts the simulation state to its persisted form. Parts are
// filled in by the caller.
func (u *Unit) Record() core.UnitRecord {
	rec := core.UnitRecord{
		ID:           u.ID,
		Name:         u.Name,
		Kind:         string(u.Kind),
		Tonnage:      u.Tonnage,
		EngineRating: u.EngineRating,
		SquadSize:    u.SquadSize,
		Troopers:     u.Troopers,
		Locations:    make([]core.LocationRecord, 0, len(u.Locations)),
		Mounts:       make([]core.MountRecord, 0, len(u.Mounts)),
	}
	for _, l := range u.Locations {
		rec.Locations = append(rec.Locations, core.LocationRecord(l))
	}
	for _, m := range u.Mounts {
		rec.Mounts = append(rec.Mounts, core.MountRecord(*m))
	}
	return rec
}

// FromRecord rebuilds a unit. Mount indexes are renumbered by position.
func FromRecord(rec core.UnitRecord) *Unit {
	u := &Unit{
		ID:           rec.ID,
		Name:         rec.Name,
		Kind:         Kind(rec.Kind),
		Tonnage:      rec.Tonnage,
		EngineRating: rec.EngineRating,
		SquadSize:    rec.SquadSize,
		Troopers:     rec.Troopers,
	}
	for _, l := range rec.Locations {
		u.Locations = append(u.Locations, Location(l))
	}
	for i, m := range rec.Mounts {
		mount := Mount(m)
		mount.Index = i
		u.Mounts = append(u.Mounts, &mount)
	}
	return u
}
