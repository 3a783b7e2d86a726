package cache

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/OCAP2/armory/internal/parts"
	"github.com/OCAP2/armory/internal/unit"
)

// Entry pairs a unit with the roster of parts mounted on it.
type Entry struct {
	Unit   *unit.Unit
	Roster *parts.Roster
}

// UnitCache holds the units of the running campaign so actions never go
// back to storage between saves.
type UnitCache struct {
	m     sync.RWMutex
	units map[uuid.UUID]Entry
	names map[string]uuid.UUID
}

func NewUnitCache() *UnitCache {
	return &UnitCache{
		units: make(map[uuid.UUID]Entry),
		names: make(map[string]uuid.UUID),
	}
}

func (c *UnitCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.units = make(map[uuid.UUID]Entry)
	c.names = make(map[string]uuid.UUID)
}

// Add stores an entry, replacing any entry with the same unit ID.
func (c *UnitCache) Add(e Entry) {
	c.m.Lock()
	defer c.m.Unlock()
	c.units[e.Unit.ID] = e
	c.names[strings.ToLower(e.Unit.Name)] = e.Unit.ID
}

func (c *UnitCache) Get(id uuid.UUID) (Entry, bool) {
	c.m.RLock()
	defer c.m.RUnlock()
	e, ok := c.units[id]
	return e, ok
}

// Find resolves a unit by ID string or case-insensitive name.
func (c *UnitCache) Find(ref string) (Entry, bool) {
	if id, err := uuid.Parse(ref); err == nil {
		return c.Get(id)
	}
	c.m.RLock()
	defer c.m.RUnlock()
	id, ok := c.names[strings.ToLower(ref)]
	if !ok {
		return Entry{}, false
	}
	e, ok := c.units[id]
	return e, ok
}

// Roster returns the roster of a unit.
func (c *UnitCache) Roster(id uuid.UUID) (*parts.Roster, bool) {
	e, ok := c.Get(id)
	if !ok {
		return nil, false
	}
	return e.Roster, true
}

func (c *UnitCache) Remove(id uuid.UUID) {
	c.m.Lock()
	defer c.m.Unlock()
	if e, ok := c.units[id]; ok {
		delete(c.names, strings.ToLower(e.Unit.Name))
		delete(c.units, id)
	}
}

// All returns the entries ordered by unit name.
func (c *UnitCache) All() []Entry {
	c.m.RLock()
	defer c.m.RUnlock()
	out := make([]Entry, 0, len(c.units))
	for _, e := range c.units {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Unit.Name < out[j].Unit.Name })
	return out
}

func (c *UnitCache) Len() int {
	c.m.RLock()
	defer c.m.RUnlock()
	return len(c.units)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
