// Package worker turns dispatcher events into campaign actions.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/OCAP2/armory/internal/cache"
	"github.com/OCAP2/armory/internal/campaign"
	"github.com/OCAP2/armory/internal/storage"
)

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Campaign *campaign.Campaign
	Backend  storage.Backend
	Logger   *slog.Logger
}

// Manager serializes campaign actions. Handlers may run on dispatcher
// goroutines, so every action holds mu while it touches campaign state.
type Manager struct {
	deps Dependencies
	mu   sync.Mutex

	lastSave         time.Time
	lastSaveDuration time.Duration
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{deps: deps}
}

// Campaign returns the campaign the manager acts on.
func (m *Manager) Campaign() *campaign.Campaign { return m.deps.Campaign }

// LastSave returns when the campaign was last persisted and how long the
// write took. Both are zero before the first save.
func (m *Manager) LastSave() (time.Time, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSave, m.lastSaveDuration
}

// Save persists the campaign through the backend. The snapshot is taken
// under the action lock; the write happens outside it.
func (m *Manager) Save(ctx context.Context) (string, error) {
	if m.deps.Backend == nil {
		return "", fmt.Errorf("no storage backend configured")
	}
	m.mu.Lock()
	rec := m.deps.Campaign.Record()
	changes := m.deps.Campaign.Changes()
	m.mu.Unlock()

	start := time.Now()
	if err := m.deps.Backend.SaveCampaign(ctx, &rec); err != nil {
		return "", fmt.Errorf("saving campaign %s: %w", rec.Name, err)
	}
	took := time.Since(start)

	m.mu.Lock()
	m.deps.Campaign.MarkSaved()
	m.lastSave = start
	m.lastSaveDuration = took
	m.mu.Unlock()

	msg := fmt.Sprintf("saved %s (%d changes)", rec.Name, changes)
	if e, ok := m.deps.Backend.(storage.Exporter); ok && e.LastExportPath() != "" {
		msg += " to " + e.LastExportPath()
	}
	m.deps.Logger.Info("Campaign saved", "campaign", rec.Name, "changes", changes, "duration", took)
	return msg, nil
}

// target is a unit and mount resolved from event arguments.
type target struct {
	entry cache.Entry
	mount int
}

// resolve parses "<unit> <mount>" from the head of args.
func (m *Manager) resolve(args []string) (target, error) {
	if len(args) < 2 {
		return target{}, fmt.Errorf("expected <unit> <mount>, got %d args", len(args))
	}
	e, err := m.deps.Campaign.Find(args[0])
	if err != nil {
		return target{}, err
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		return target{}, fmt.Errorf("invalid mount %q: %w", args[1], err)
	}
	if !e.Unit.HasMount(idx) {
		return target{}, fmt.Errorf("%s has no mount %d", e.Unit.Name, idx)
	}
	return target{entry: e, mount: idx}, nil
}
