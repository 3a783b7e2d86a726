// Package unit models the simulation side of a vehicle: which equipment is
// mounted where, how much ammunition each mount holds and which locations are
// destroyed. The repair engine reads and writes these summaries only.
package unit

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind is the unit type. Some ammunition rules depend on it.
type Kind string

const (
	KindMech        Kind = "mech"
	KindVehicle     Kind = "vehicle"
	KindProtoMech   Kind = "protomech"
	KindBattleArmor Kind = "battlearmor"
	KindInfantry    Kind = "infantry"
	KindLargeCraft  Kind = "largecraft"
)

// NoMount marks an unattached part.
const NoMount = -1

// Location is a hit location (arm, torso, bay section).
type Location struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Destroyed bool   `json:"destroyed,omitempty"`
	Breached  bool   `json:"breached,omitempty"`
}

// Mount is one equipment attachment point.
type Mount struct {
	Index    int    `json:"index"`
	TypeID   string `json:"type"`
	Location int    `json:"location"`

	// Shots is the current ammunition load. Capacity is the native load of
	// a full bin.
	Shots    int `json:"shots,omitempty"`
	Capacity int `json:"capacity,omitempty"`

	Hits      int  `json:"hits,omitempty"`
	Destroyed bool `json:"destroyed,omitempty"`
	Missing   bool `json:"missing,omitempty"`
	OmniPod   bool `json:"omniPod,omitempty"`

	// Linked is the next mount in the weapon -> ammo chain, NoMount when
	// the chain ends.
	Linked int `json:"linked"`
	// Bay is the weapon bay mount index for large craft ammunition.
	Bay int `json:"bay"`
	// Size is clip count (infantry) or tons (large craft).
	Size float64 `json:"size,omitempty"`
	// Trooper is the battle armor trooper index, NoMount for squad-wide gear.
	Trooper int `json:"trooper"`
}

// Unit is a single vehicle, squad or craft.
type Unit struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Kind         Kind       `json:"kind"`
	Tonnage      float64    `json:"tonnage"`
	EngineRating int        `json:"engineRating,omitempty"`
	SquadSize    int        `json:"squadSize,omitempty"`
	Troopers     int        `json:"troopers,omitempty"`
	Locations    []Location `json:"locations"`
	Mounts       []*Mount   `json:"mounts"`
}

// New creates an empty unit.
func New(name string, kind Kind, tonnage float64) *Unit {
	return &Unit{
		ID:      uuid.New(),
		Name:    name,
		Kind:    kind,
		Tonnage: tonnage,
	}
}

// AddLocation appends a location and returns its ID.
func (u *Unit) AddLocation(name string) int {
	id := len(u.Locations)
	u.Locations = append(u.Locations, Location{ID: id, Name: name})
	return id
}

// AddMount appends a mount of the given type at location and returns its
// index. Link, bay and trooper references start unset.
func (u *Unit) AddMount(typeID string, location int) *Mount {
	m := &Mount{
		Index:    len(u.Mounts),
		TypeID:   typeID,
		Location: location,
		Linked:   NoMount,
		Bay:      NoMount,
		Trooper:  NoMount,
	}
	u.Mounts = append(u.Mounts, m)
	return m
}

// Mount returns the mount at index.
func (u *Unit) Mount(index int) (*Mount, error) {
	if index < 0 || index >= len(u.Mounts) {
		return nil, fmt.Errorf("unit %s has no mount %d", u.Name, index)
	}
	return u.Mounts[index], nil
}

func (u *Unit) mount(index int) *Mount {
	if index < 0 || index >= len(u.Mounts) {
		return nil
	}
	return u.Mounts[index]
}

// UnitID returns the unit identifier.
func (u *Unit) UnitID() uuid.UUID { return u.ID }

// UnitKind returns the unit type.
func (u *Unit) UnitKind() Kind { return u.Kind }

// UnitTonnage returns the unit mass in tons.
func (u *Unit) UnitTonnage() float64 { return u.Tonnage }

// Engine returns the engine rating.
func (u *Unit) Engine() int { return u.EngineRating }

// NominalSquadSize is the full-strength trooper count, including troopers
// currently lost.
func (u *Unit) NominalSquadSize() int {
	if u.SquadSize < 1 {
		return 1
	}
	return u.SquadSize
}

// ActiveTroopers returns the number of troopers still fielded.
func (u *Unit) ActiveTroopers() int { return u.Troopers }

// HasMount reports whether index refers to a mount on this unit.
func (u *Unit) HasMount(index int) bool { return u.mount(index) != nil }

// MountCount returns the number of mounts.
func (u *Unit) MountCount() int { return len(u.Mounts) }

// CurrentLoad returns the shots loaded in a mount.
func (u *Unit) CurrentLoad(index int) int {
	if m := u.mount(index); m != nil {
		return m.Shots
	}
	return 0
}

// SetLoad sets the shots loaded in a mount.
func (u *Unit) SetLoad(index, shots int) {
	if m := u.mount(index); m != nil {
		m.Shots = shots
	}
}

// NativeCapacity is the shot capacity of a full bin in this mount.
func (u *Unit) NativeCapacity(index int) int {
	if m := u.mount(index); m != nil {
		return m.Capacity
	}
	return 0
}

// MountType returns the catalog type currently on the mount.
func (u *Unit) MountType(index int) string {
	if m := u.mount(index); m != nil {
		return m.TypeID
	}
	return ""
}

// SetMountType changes the catalog type on the mount.
func (u *Unit) SetMountType(index int, typeID string) {
	if m := u.mount(index); m != nil {
		m.TypeID = typeID
	}
}

// IsMissing reports whether the mounted equipment is absent.
func (u *Unit) IsMissing(index int) bool {
	m := u.mount(index)
	return m == nil || m.Missing
}

// IsDestroyed reports whether the mounted equipment is destroyed.
func (u *Unit) IsDestroyed(index int) bool {
	m := u.mount(index)
	return m == nil || m.Destroyed
}

// SetDestroyed flags the mount destroyed and missing. Clearing the flag
// also clears hits.
func (u *Unit) SetDestroyed(index int, destroyed bool) {
	m := u.mount(index)
	if m == nil {
		return
	}
	m.Destroyed = destroyed
	m.Missing = destroyed
	if !destroyed {
		m.Hits = 0
	}
}

// Hits returns the critical hits recorded on a mount.
func (u *Unit) Hits(index int) int {
	if m := u.mount(index); m != nil {
		return m.Hits
	}
	return 0
}

// SetHits records critical hits on a mount.
func (u *Unit) SetHits(index, hits int) {
	if m := u.mount(index); m != nil {
		m.Hits = hits
	}
}

// IsOmniPodded reports whether the mount is pod-mounted.
func (u *Unit) IsOmniPodded(index int) bool {
	if m := u.mount(index); m != nil {
		return m.OmniPod
	}
	return false
}

// LocationOf returns the location of a mount.
func (u *Unit) LocationOf(index int) int {
	if m := u.mount(index); m != nil {
		return m.Location
	}
	return NoMount
}

// LocationName returns a display name for a location.
func (u *Unit) LocationName(id int) string {
	if id < 0 || id >= len(u.Locations) {
		return "unknown"
	}
	return u.Locations[id].Name
}

// IsLocationDestroyed reports whether the location is destroyed.
func (u *Unit) IsLocationDestroyed(id int) bool {
	return id >= 0 && id < len(u.Locations) && u.Locations[id].Destroyed
}

// IsLocationBreached reports whether the location is breached.
func (u *Unit) IsLocationBreached(id int) bool {
	return id >= 0 && id < len(u.Locations) && u.Locations[id].Breached
}

// LinkedFrom returns the mount whose link points at index, NoMount if none.
func (u *Unit) LinkedFrom(index int) int {
	for _, m := range u.Mounts {
		if m.Linked == index {
			return m.Index
		}
	}
	return NoMount
}

// LinkOf returns the next mount in the link chain.
func (u *Unit) LinkOf(index int) int {
	if m := u.mount(index); m != nil {
		return m.Linked
	}
	return NoMount
}

// BayOf returns the weapon bay index of a mount.
func (u *Unit) BayOf(index int) int {
	if m := u.mount(index); m != nil {
		return m.Bay
	}
	return NoMount
}

// MountsInBay lists all mounts fed from the given bay.
func (u *Unit) MountsInBay(bay int) []int {
	if bay == NoMount {
		return nil
	}
	var out []int
	for _, m := range u.Mounts {
		if m.Bay == bay {
			out = append(out, m.Index)
		}
	}
	return out
}

// SizeOf returns the clip count or tonnage of a mount.
func (u *Unit) SizeOf(index int) float64 {
	if m := u.mount(index); m != nil {
		return m.Size
	}
	return 0
}

// SetSize updates the clip count or tonnage of a mount.
func (u *Unit) SetSize(index int, size float64) {
	if m := u.mount(index); m != nil {
		m.Size = size
	}
}

// TrooperOf returns the trooper index of a mount.
func (u *Unit) TrooperOf(index int) int {
	if m := u.mount(index); m != nil {
		return m.Trooper
	}
	return NoMount
}
