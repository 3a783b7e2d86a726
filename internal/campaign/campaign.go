// Package campaign ties the armory together: the current day, the units in
// service with their part rosters, the quartermaster pool and the repair
// scheduler. It converts the whole state to and from core.Campaign.
package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/OCAP2/armory/internal/cache"
	"github.com/OCAP2/armory/internal/catalog"
	"github.com/OCAP2/armory/internal/parts"
	"github.com/OCAP2/armory/internal/quartermaster"
	"github.com/OCAP2/armory/internal/scheduler"
	"github.com/OCAP2/armory/internal/unit"
	"github.com/OCAP2/armory/pkg/core"
)

// Dependencies holds the collaborators of a campaign.
type Dependencies struct {
	Catalog       *catalog.Catalog
	Quartermaster *quartermaster.Quartermaster
	Logger        *slog.Logger
	MaxAttempts   int
}

// Campaign is the running campaign state.
type Campaign struct {
	mu   sync.RWMutex
	name string
	day  time.Time

	deps      Dependencies
	units     *cache.UnitCache
	scheduler *scheduler.Scheduler
	changes   cache.SafeCounter
}

// New creates an empty campaign starting on day.
func New(name string, day time.Time, deps Dependencies) *Campaign {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	c := &Campaign{
		name:  name,
		day:   day,
		deps:  deps,
		units: cache.NewUnitCache(),
	}
	c.scheduler = scheduler.New(c.units, day,
		scheduler.WithMaxAttempts(deps.MaxAttempts),
		scheduler.WithLogger(deps.Logger),
	)
	return c
}

// Name returns the campaign name.
func (c *Campaign) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// Day returns the current campaign day.
func (c *Campaign) Day() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.day
}

// Catalog returns the equipment catalog.
func (c *Campaign) Catalog() *catalog.Catalog { return c.deps.Catalog }

// Quartermaster returns the inventory pool.
func (c *Campaign) Quartermaster() *quartermaster.Quartermaster { return c.deps.Quartermaster }

// Scheduler returns the repair scheduler.
func (c *Campaign) Scheduler() *scheduler.Scheduler { return c.scheduler }

// Units returns the unit cache.
func (c *Campaign) Units() *cache.UnitCache { return c.units }

// Changes returns the number of mutations since the last MarkSaved.
func (c *Campaign) Changes() int { return c.changes.Value() }

// Touch records a mutation.
func (c *Campaign) Touch() { c.changes.Inc() }

// MarkSaved resets the change counter.
func (c *Campaign) MarkSaved() { c.changes.Set(0) }

func (c *Campaign) partsDeps() parts.Dependencies {
	return parts.Dependencies{
		Catalog:   c.deps.Catalog,
		Stock:     c.deps.Quartermaster,
		Warehouse: c.deps.Quartermaster,
		Logger:    c.deps.Logger,
	}
}

// AddUnit brings a unit into service and builds its roster from the mounts.
func (c *Campaign) AddUnit(u *unit.Unit) (*parts.Roster, error) {
	r := parts.NewRoster(u, c.partsDeps())
	if err := r.Populate(); err != nil {
		return nil, fmt.Errorf("unit %s: %w", u.Name, err)
	}
	c.units.Add(cache.Entry{Unit: u, Roster: r})
	c.Touch()
	c.deps.Logger.Info("Unit added", "unit", u.Name, "kind", string(u.Kind), "slots", len(r.Indexes()))
	return r, nil
}

// Find resolves a unit by name or ID.
func (c *Campaign) Find(ref string) (cache.Entry, error) {
	e, ok := c.units.Find(ref)
	if !ok {
		return cache.Entry{}, fmt.Errorf("no unit %q", ref)
	}
	return e, nil
}

// Refresh pulls damage from the simulation into every roster and queues
// any slot that now needs work.
func (c *Campaign) Refresh() int {
	n := 0
	for _, e := range c.units.All() {
		e.Roster.Refresh()
		n += c.scheduler.EnqueueRoster(e.Roster)
	}
	if n > 0 {
		c.Touch()
	}
	return n
}

// Advance runs the scheduler for the given number of days.
func (c *Campaign) Advance(ctx context.Context, days int) ([]scheduler.Result, error) {
	var all []scheduler.Result
	for range days {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		c.mu.Lock()
		c.day = c.day.AddDate(0, 0, 1)
		day := c.day
		c.mu.Unlock()

		results := c.scheduler.RunDay(ctx, day)
		all = append(all, results...)
		c.Touch()
		c.deps.Logger.Info("Day complete", "day", day.Format(time.DateOnly), "tasks", len(results),
			"pending", len(c.scheduler.Pending()))
	}
	return all, nil
}

// Record converts the campaign to its persisted form.
func (c *Campaign) Record() core.Campaign {
	c.mu.RLock()
	rec := core.Campaign{Name: c.name, Day: c.day}
	c.mu.RUnlock()

	for _, e := range c.units.All() {
		ur := e.Unit.Record()
		ur.Parts = e.Roster.Snapshot()
		rec.Units = append(rec.Units, ur)
	}
	rec.Stock, rec.Spares = c.deps.Quartermaster.Snapshot()
	rec.Tasks = c.scheduler.Records()
	return rec
}

// Restore rebuilds a campaign from its persisted form. Corrupted part
// records are logged and skipped by the roster.
func Restore(rec core.Campaign, deps Dependencies) (*Campaign, error) {
	c := New(rec.Name, rec.Day, deps)
	c.deps.Quartermaster.Restore(rec.Stock, rec.Spares)
	for _, ur := range rec.Units {
		u := unit.FromRecord(ur)
		r, err := parts.Restore(u, ur.Parts, c.partsDeps())
		if err != nil {
			return nil, fmt.Errorf("unit %s: %w", u.Name, err)
		}
		c.units.Add(cache.Entry{Unit: u, Roster: r})
	}
	c.scheduler.Load(rec.Tasks)
	c.MarkSaved()
	return c, nil
}
