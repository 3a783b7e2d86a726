// internal/storage/memory/memory.go
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/OCAP2/armory/internal/config"
	"github.com/OCAP2/armory/pkg/core"
)

// Backend keeps campaigns in memory and exports each save to JSON when an
// output directory is configured.
type Backend struct {
	cfg       config.MemoryConfig
	campaigns map[string][]byte

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:       cfg,
		campaigns: make(map[string][]byte),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// SaveCampaign stores an encoded copy so later changes to c are not seen by
// readers, then writes the export file.
func (b *Backend) SaveCampaign(ctx context.Context, c *core.Campaign) error {
	if c == nil || c.Name == "" {
		return fmt.Errorf("campaign without a name")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode campaign: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.campaigns[c.Name] = data

	if b.cfg.OutputDir == "" {
		return nil
	}
	return b.exportJSON(c)
}

// LoadCampaign returns a saved campaign, falling back to the export
// directory for campaigns saved by an earlier run.
func (b *Backend) LoadCampaign(ctx context.Context, name string) (*core.Campaign, error) {
	b.mu.RLock()
	data, ok := b.campaigns[name]
	b.mu.RUnlock()
	if ok {
		var c core.Campaign
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to decode campaign: %w", err)
		}
		return &c, nil
	}
	if b.cfg.OutputDir == "" {
		return nil, fmt.Errorf("%w: %s", core.ErrCampaignNotFound, name)
	}
	return b.importJSON(name)
}

// ListCampaigns returns the names held in memory and in the export
// directory, sorted.
func (b *Backend) ListCampaigns(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	b.mu.RLock()
	for name := range b.campaigns {
		seen[name] = true
	}
	b.mu.RUnlock()

	if b.cfg.OutputDir != "" {
		names, err := b.exportedNames()
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			seen[n] = true
		}
	}

	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// LastExportPath returns the file written by the last save.
func (b *Backend) LastExportPath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
