package parts

import (
	"fmt"
	"math"

	"github.com/OCAP2/armory/internal/catalog"
	"github.com/OCAP2/armory/internal/unit"
)

// fullShots is the capacity of an installed bin. Detached bins report the
// capacity captured when they were removed.
func (r *Roster) fullShots(p *Part) int {
	b := p.Bin
	if !p.Attached() {
		return b.Capacity
	}
	t := r.lookup(p.TypeID)
	if t == nil {
		return 0
	}
	switch b.Kind {
	case BinStandard:
		if b.OneShot {
			return 1
		}
		n := r.nativeShots(p, t)
		if r.unit.UnitKind() == unit.KindProtoMech && !t.IsStandardMunition() {
			n /= 2
		}
		return n
	case BinSquad:
		return r.nativeShots(p, t) * r.unit.NominalSquadSize()
	case BinInfantry:
		perClip := t.Shots
		if w := r.lookup(b.Weapon); w != nil && w.ShotsPerClip > 0 {
			perClip = w.ShotsPerClip
		}
		return int(math.Floor(float64(perClip) * b.Size))
	case BinBay:
		return t.ShotsIn(b.Size)
	}
	return 0
}

func (r *Roster) nativeShots(p *Part, t *catalog.EquipmentType) int {
	if n := r.unit.NativeCapacity(p.Mount); n > 0 {
		return n
	}
	return t.Shots
}

// mismatched reports whether the mount carries a different munition than
// the bin is configured for.
func (r *Roster) mismatched(p *Part) bool {
	return r.unit.MountType(p.Mount) != p.TypeID
}

// shotsNeeded is the deficit the next reload must cover. A munition
// mismatch owes the full capacity.
func (r *Roster) shotsNeeded(p *Part) int {
	if r.mismatched(p) {
		return r.fullShots(p)
	}
	return p.Bin.ShotsNeeded
}

// resync recomputes the stored deficit from the mount load. Squad deficits
// are whole multiples of the squad size; a remainder left after troopers
// fired cannot be issued evenly and is not owed.
func (r *Roster) resync(p *Part) {
	full := r.fullShots(p)
	if r.mismatched(p) {
		p.Bin.ShotsNeeded = full
		return
	}
	need := full - r.unit.CurrentLoad(p.Mount)
	switch p.Bin.Kind {
	case BinStandard:
		need = max(0, min(need, full))
	case BinSquad:
		need = max(0, min(need, full))
		need -= need % r.unit.NominalSquadSize()
	}
	p.Bin.ShotsNeeded = need
}

func (r *Roster) stockKey(p *Part, munition string) StockKey {
	k := StockKey{Munition: munition}
	if p.Bin.Kind == BinInfantry {
		k.Weapon = p.Bin.Weapon
	}
	return k
}

// FullShots returns the capacity of the bin on a mount.
func (r *Roster) FullShots(idx int) (int, error) {
	p := r.binPart(idx)
	if p == nil {
		return 0, ErrNotBin
	}
	return r.fullShots(p), nil
}

// ShotsNeeded returns the deficit of the bin on a mount.
func (r *Roster) ShotsNeeded(idx int) (int, error) {
	p := r.binPart(idx)
	if p == nil {
		return 0, ErrNotBin
	}
	return r.shotsNeeded(p), nil
}

// LoadBin requisitions the bin's deficit from stock. It returns the number
// of shots actually loaded, which may be less than needed when stock runs
// out. Bay bins load at most one ton per call.
func (r *Roster) LoadBin(idx int) (int, error) {
	p := r.binPart(idx)
	if p == nil {
		return 0, ErrNotBin
	}
	switch p.Bin.Kind {
	case BinSquad:
		return r.loadSquad(p), nil
	case BinBay:
		return r.loadBinSingleTon(p), nil
	case BinInfantry:
		return r.loadInfantry(p), nil
	default:
		return r.loadBin(p), nil
	}
}

// loadInfantry makes the partner bin shed its excess before this bin grows
// into the freed clips, so the pair never exceeds the weapon's allowance.
func (r *Roster) loadInfantry(p *Part) int {
	if pi, ok := r.partners[p.Mount]; ok {
		if partner := r.binPart(pi); partner != nil {
			r.shedExcess(partner)
		}
	}
	if r.shotsNeeded(p) < 0 {
		r.shedExcess(p)
		return 0
	}
	return r.loadBin(p)
}

// loadBin fills a bin with whatever stock can supply. On a mismatch the old
// munition is returned to stock before the new rounds go in.
func (r *Roster) loadBin(p *Part) int {
	needed := r.shotsNeeded(p)
	if needed <= 0 {
		return 0
	}
	got := r.deps.Stock.Take(r.stockKey(p, p.TypeID), needed)
	r.applyLoad(p, got)
	return got
}

// loadSquad requisitions in whole multiples of the squad size so every
// trooper is outfitted at once.
func (r *Roster) loadSquad(p *Part) int {
	needed := r.shotsNeeded(p)
	squad := r.unit.NominalSquadSize()
	key := r.stockKey(p, p.TypeID)
	n := min(needed, r.deps.Stock.Available(key))
	n -= n % squad
	if n <= 0 {
		return 0
	}
	got := r.deps.Stock.Take(key, n)
	if rem := got % squad; rem != 0 {
		r.deps.Stock.Give(key, rem)
		got -= rem
	}
	r.applyLoad(p, got)
	return got
}

func (r *Roster) applyLoad(p *Part, got int) {
	if got <= 0 {
		return
	}
	if r.mismatched(p) {
		r.dumpMount(p)
		r.unit.SetMountType(p.Mount, p.TypeID)
		r.unit.SetLoad(p.Mount, got)
		p.Bin.ShotsNeeded = r.fullShots(p) - got
		return
	}
	r.unit.SetLoad(p.Mount, r.unit.CurrentLoad(p.Mount)+got)
	p.Bin.ShotsNeeded -= got
}

// dumpMount empties the mount and returns its rounds to stock under the
// munition currently on the mount.
func (r *Roster) dumpMount(p *Part) int {
	load := r.unit.CurrentLoad(p.Mount)
	r.unit.SetLoad(p.Mount, 0)
	if load > 0 {
		r.deps.Stock.Give(r.stockKey(p, r.unit.MountType(p.Mount)), load)
	}
	return load
}

// Unload empties the bin, returns the rounds to stock and resets the
// deficit to full capacity.
func (r *Roster) Unload(idx int) (int, error) {
	p := r.binPart(idx)
	if p == nil {
		return 0, ErrNotBin
	}
	return r.unload(p), nil
}

func (r *Roster) unload(p *Part) int {
	n := r.dumpMount(p)
	r.unit.SetMountType(p.Mount, p.TypeID)
	p.Bin.ShotsNeeded = r.fullShots(p)
	if n > 0 {
		r.log().Debug("Unloaded bin", "mount", p.Mount, "type", p.TypeID, "shots", n)
	}
	return n
}

// shedExcess returns rounds above capacity to stock, under whatever
// munition is on the mount.
func (r *Roster) shedExcess(p *Part) int {
	load := r.unit.CurrentLoad(p.Mount)
	full := r.fullShots(p)
	n := load - full
	if n <= 0 {
		return 0
	}
	r.unit.SetLoad(p.Mount, full)
	r.deps.Stock.Give(r.stockKey(p, r.unit.MountType(p.Mount)), n)
	if !r.mismatched(p) {
		p.Bin.ShotsNeeded = min(p.Bin.ShotsNeeded+n, 0)
	}
	r.log().Debug("Shed excess rounds", "mount", p.Mount, "shots", n)
	return n
}

// loadBinSingleTon moves at most one ton of rounds into a bay bin.
func (r *Roster) loadBinSingleTon(p *Part) int {
	t := r.lookup(p.TypeID)
	if t == nil {
		return 0
	}
	if r.mismatched(p) {
		if r.unit.CurrentLoad(p.Mount) > 0 {
			return 0
		}
		r.unit.SetMountType(p.Mount, p.TypeID)
		p.Bin.ShotsNeeded = r.fullShots(p)
	}
	needed := p.Bin.ShotsNeeded
	if needed <= 0 {
		return 0
	}
	n := min(needed, shotsPerChunk(t))
	got := r.deps.Stock.Take(r.stockKey(p, p.TypeID), n)
	if got > 0 {
		r.unit.SetLoad(p.Mount, r.unit.CurrentLoad(p.Mount)+got)
		p.Bin.ShotsNeeded -= got
	}
	return got
}

// unloadSingleTon moves at most one ton of rounds out of a bay bin. A
// pending munition change sheds the old munition first.
func (r *Roster) unloadSingleTon(p *Part) int {
	load := r.unit.CurrentLoad(p.Mount)
	if load <= 0 {
		return 0
	}
	onMount := r.unit.MountType(p.Mount)
	t := r.lookup(onMount)
	if t == nil {
		return 0
	}
	n := min(load, shotsPerChunk(t))
	if !r.mismatched(p) {
		n = min(n, -p.Bin.ShotsNeeded)
	}
	if n <= 0 {
		return 0
	}
	r.unit.SetLoad(p.Mount, load-n)
	r.deps.Stock.Give(r.stockKey(p, onMount), n)
	if !r.mismatched(p) {
		p.Bin.ShotsNeeded += n
	}
	return n
}

// ChangeMunition reconfigures a bin for another munition of the same
// family and rack size. The rounds on the mount stay until the next reload.
func (r *Roster) ChangeMunition(idx int, typeID string) error {
	p := r.binPart(idx)
	if p == nil {
		return ErrNotBin
	}
	cur, err := r.deps.Catalog.Lookup(p.TypeID)
	if err != nil {
		return err
	}
	next, err := r.deps.Catalog.Lookup(typeID)
	if err != nil {
		return err
	}
	if !catalog.Compatible(cur, next) {
		return fmt.Errorf("%s to %s: %w", cur.ID, next.ID, ErrIncompatibleMunition)
	}
	p.TypeID = next.ID
	p.Bin.OneShot = next.OneShot
	r.resync(p)
	r.log().Info("Changed munition", "mount", idx, "from", cur.ID, "to", next.ID)
	return nil
}

// ChangeCapacity resizes an infantry bin (clips) or bay bin (tons). For an
// infantry bin with a partner the shared clip allowance is preserved: the
// partner takes whatever this bin gives up. Deficits may go negative.
func (r *Roster) ChangeCapacity(idx int, size float64) error {
	p := r.binPart(idx)
	if p == nil {
		return ErrNotBin
	}
	if size < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidCapacity, size)
	}
	switch p.Bin.Kind {
	case BinInfantry:
		if pi, ok := r.partners[idx]; ok {
			partner := r.binPart(pi)
			if partner == nil {
				return fmt.Errorf("mount %d: %w", pi, ErrNoPartner)
			}
			total := p.Bin.Size + partner.Bin.Size
			if size > total {
				return fmt.Errorf("%w: %v exceeds %v clips", ErrInvalidCapacity, size, total)
			}
			r.setSize(partner, total-size)
		}
		r.setSize(p, size)
	case BinBay:
		r.setSize(p, size)
		p.Tonnage = size
	default:
		return fmt.Errorf("%s bin: %w", p.Bin.Kind, ErrInvalidCapacity)
	}
	return nil
}

func (r *Roster) setSize(p *Part, size float64) {
	p.Bin.Size = size
	r.unit.SetSize(p.Mount, size)
	r.resync(p)
}

// BayAvailableCapacity sums the unused tons of every bin in the same bay
// that carries a compatible munition, this bin included.
func (r *Roster) BayAvailableCapacity(idx int) (float64, error) {
	p := r.binPart(idx)
	if p == nil {
		return 0, ErrNotBin
	}
	if p.Bin.Kind != BinBay {
		return 0, fmt.Errorf("%s bin: %w", p.Bin.Kind, ErrNotBin)
	}
	return r.bayAvailable(p), nil
}

func (r *Roster) bayAvailable(p *Part) float64 {
	self := r.lookup(p.TypeID)
	var total float64
	for _, idx := range r.Indexes() {
		s := r.binPart(idx)
		if s == nil || s.Bin.Kind != BinBay || s.Bin.Bay != p.Bin.Bay {
			continue
		}
		loaded := r.lookup(r.unit.MountType(idx))
		if loaded == nil || !catalog.Compatible(self, loaded) {
			continue
		}
		used := loaded.TonsFor(r.unit.CurrentLoad(idx))
		total += math.Max(0, s.Bin.Size-used)
	}
	return total
}

// bayChangeFeasible reports whether the bay has room for at least one round
// of the bin's configured munition.
func (r *Roster) bayChangeFeasible(p *Part) bool {
	t := r.lookup(p.TypeID)
	if t == nil {
		return false
	}
	return r.bayAvailable(p) >= t.TonsFor(1)
}
