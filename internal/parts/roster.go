package parts

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/OCAP2/armory/internal/catalog"
	"github.com/OCAP2/armory/internal/unit"
)

// Mounts is the simulation surface read and written by the engine.
// *unit.Unit implements it.
type Mounts interface {
	UnitID() uuid.UUID
	UnitKind() unit.Kind
	UnitTonnage() float64
	Engine() int
	NominalSquadSize() int

	HasMount(index int) bool
	MountCount() int
	CurrentLoad(index int) int
	SetLoad(index, shots int)
	NativeCapacity(index int) int
	MountType(index int) string
	SetMountType(index int, typeID string)
	IsMissing(index int) bool
	IsDestroyed(index int) bool
	SetDestroyed(index int, destroyed bool)
	Hits(index int) int
	SetHits(index, hits int)
	IsOmniPodded(index int) bool

	LocationOf(index int) int
	LocationName(id int) string
	IsLocationDestroyed(id int) bool
	IsLocationBreached(id int) bool

	LinkOf(index int) int
	LinkedFrom(index int) int
	BayOf(index int) int
	SizeOf(index int) float64
	SetSize(index int, size float64)
	TrooperOf(index int) int
}

// AmmoStock is the shared ammunition pool. Take never returns more than is
// available; callers reduce their deficit by exactly what they receive.
type AmmoStock interface {
	Take(key StockKey, n int) int
	Give(key StockKey, n int)
	Available(key StockKey) int
}

// Warehouse holds spare parts.
type Warehouse interface {
	FindSpare(match func(*Part) bool) (*Part, bool)
	ConsumeSpare(p *Part)
	AddSpare(p *Part)
}

// Dependencies holds the collaborators of a Roster.
type Dependencies struct {
	Catalog   *catalog.Catalog
	Stock     AmmoStock
	Warehouse Warehouse
	Logger    *slog.Logger
}

// Slot is a mount position. Exactly one of Part and Missing is set.
type Slot struct {
	Part    *Part
	Missing *MissingPart
}

// Roster owns every Part and MissingPart of one unit, keyed by mount index.
// Parts refer back to the unit only through their mount index.
type Roster struct {
	unit     Mounts
	deps     Dependencies
	slots    map[int]*Slot
	partners map[int]int
}

// NewRoster creates an empty roster for a unit.
func NewRoster(u Mounts, deps Dependencies) *Roster {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Roster{
		unit:     u,
		deps:     deps,
		slots:    make(map[int]*Slot),
		partners: make(map[int]int),
	}
}

// Unit returns the simulation handle.
func (r *Roster) Unit() Mounts { return r.unit }

// UnitID returns the unit identifier.
func (r *Roster) UnitID() uuid.UUID { return r.unit.UnitID() }

func (r *Roster) log() *slog.Logger {
	return r.deps.Logger.With("unit", r.unit.UnitID().String())
}

// Populate creates a functional part for every mount that has no slot yet,
// deriving state from the mount. Infantry bins sharing a weapon are linked
// as partners.
func (r *Roster) Populate() error {
	for idx := 0; idx < r.unit.MountCount(); idx++ {
		if _, ok := r.slots[idx]; ok {
			continue
		}
		p, err := r.partFromMount(idx)
		if err != nil {
			return err
		}
		if r.unit.IsDestroyed(idx) || r.unit.IsMissing(idx) {
			if m, ok := p.MissingPart(); ok {
				r.slots[idx] = &Slot{Missing: m}
				continue
			}
		}
		r.slots[idx] = &Slot{Part: p}
	}
	r.linkInfantryPartners()
	return nil
}

func (r *Roster) partFromMount(idx int) (*Part, error) {
	t, err := r.deps.Catalog.Lookup(r.unit.MountType(idx))
	if err != nil {
		return nil, fmt.Errorf("mount %d: %w", idx, err)
	}
	p := &Part{
		ID:       uuid.New(),
		Kind:     kindFor(t),
		TypeID:   t.ID,
		Mount:    idx,
		Hits:     r.unit.Hits(idx),
		OmniPod:  r.unit.IsOmniPodded(idx),
		Quantity: 1,
		Tonnage:  derivedTonnage(t, r.unit.UnitTonnage()),
		Trooper:  r.unit.TrooperOf(idx),
	}
	if p.Kind == KindMASC {
		p.EngineRating = r.unit.Engine()
	}
	if p.Kind == KindAmmoBin {
		b := &Bin{
			Kind:    binKindFor(r.unit.UnitKind()),
			OneShot: t.OneShot,
			Size:    r.unit.SizeOf(idx),
			Bay:     r.unit.BayOf(idx),
		}
		if b.Kind == BinInfantry {
			b.Weapon = r.weaponFor(idx)
		}
		if b.Kind == BinBay {
			p.Tonnage = b.Size
		}
		if b.Kind == BinInfantry {
			p.Tonnage = 0
		}
		p.Bin = b
		b.Capacity = r.fullShots(p)
		r.resync(p)
	}
	return p, nil
}

// weaponFor returns the weapon type feeding from an ammo mount.
func (r *Roster) weaponFor(idx int) string {
	w := r.weaponMount(idx)
	if w == unit.NoMount {
		return ""
	}
	return r.unit.MountType(w)
}

// linkInfantryPartners pairs infantry bins fed to the same weapon.
func (r *Roster) linkInfantryPartners() {
	byWeapon := map[int][]int{}
	for _, idx := range r.Indexes() {
		p := r.binPart(idx)
		if p == nil || p.Bin.Kind != BinInfantry {
			continue
		}
		w := r.weaponMount(idx)
		if w == unit.NoMount {
			continue
		}
		byWeapon[w] = append(byWeapon[w], idx)
	}
	for _, bins := range byWeapon {
		if len(bins) == 2 {
			if _, linked := r.partners[bins[0]]; !linked {
				r.partners[bins[0]] = bins[1]
				r.partners[bins[1]] = bins[0]
			}
		}
	}
}

// weaponMount follows the link chain back from an ammo mount to the weapon.
func (r *Roster) weaponMount(idx int) int {
	seen := map[int]bool{}
	cur := idx
	for {
		prev := r.unit.LinkedFrom(cur)
		if prev == unit.NoMount || seen[prev] {
			return unit.NoMount
		}
		seen[prev] = true
		if t, ok := r.deps.Catalog.Get(r.unit.MountType(prev)); ok && !t.IsAmmo() {
			return prev
		}
		cur = prev
	}
}

// LinkPartners records two infantry bins as sharing one clip allowance.
func (r *Roster) LinkPartners(a, b int) error {
	pa, pb := r.binPart(a), r.binPart(b)
	if pa == nil || pb == nil {
		return ErrNotBin
	}
	if pa.Bin.Kind != BinInfantry || pb.Bin.Kind != BinInfantry || a == b {
		return fmt.Errorf("mounts %d and %d: %w", a, b, ErrNoPartner)
	}
	r.partners[a] = b
	r.partners[b] = a
	return nil
}

// Partner returns the partner bin mount of an infantry bin.
func (r *Roster) Partner(idx int) (int, bool) {
	p, ok := r.partners[idx]
	return p, ok
}

// Install places a part into an empty slot on its mount.
func (r *Roster) Install(p *Part) error {
	if p == nil || !r.unit.HasMount(p.Mount) {
		return ErrNoMount
	}
	if s, ok := r.slots[p.Mount]; ok && (s.Part != nil || s.Missing != nil) {
		return fmt.Errorf("mount %d: %w", p.Mount, ErrSlotOccupied)
	}
	r.slots[p.Mount] = &Slot{Part: p}
	return nil
}

// InstallMissing places a placeholder into an empty slot.
func (r *Roster) InstallMissing(m *MissingPart) error {
	if m == nil || !r.unit.HasMount(m.Mount) {
		return ErrNoMount
	}
	if s, ok := r.slots[m.Mount]; ok && (s.Part != nil || s.Missing != nil) {
		return fmt.Errorf("mount %d: %w", m.Mount, ErrSlotOccupied)
	}
	r.slots[m.Mount] = &Slot{Missing: m}
	return nil
}

// Indexes returns occupied mount indexes in ascending order.
func (r *Roster) Indexes() []int {
	out := make([]int, 0, len(r.slots))
	for idx := range r.slots {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Slot returns the occupant of a mount.
func (r *Roster) Slot(idx int) (*Slot, bool) {
	s, ok := r.slots[idx]
	return s, ok
}

// Part returns the installed part of a mount, if any.
func (r *Roster) Part(idx int) (*Part, bool) {
	s, ok := r.slots[idx]
	if !ok || s.Part == nil {
		return nil, false
	}
	return s.Part, true
}

// Missing returns the placeholder of a mount, if any.
func (r *Roster) Missing(idx int) (*MissingPart, bool) {
	s, ok := r.slots[idx]
	if !ok || s.Missing == nil {
		return nil, false
	}
	return s.Missing, true
}

func (r *Roster) binPart(idx int) *Part {
	p, ok := r.Part(idx)
	if !ok || p.Kind != KindAmmoBin || p.Bin == nil {
		return nil
	}
	return p
}

func (r *Roster) lookup(id string) *catalog.EquipmentType {
	t, _ := r.deps.Catalog.Get(id)
	return t
}
