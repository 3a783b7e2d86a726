// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/OCAP2/armory/pkg/core"
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Campaign persistence. LoadCampaign returns core.ErrCampaignNotFound
	// for unknown names.
	SaveCampaign(ctx context.Context, c *core.Campaign) error
	LoadCampaign(ctx context.Context, name string) (*core.Campaign, error)
	ListCampaigns(ctx context.Context) ([]string, error)
}

// Exporter is an optional interface for storage backends that write a
// campaign file on save.
type Exporter interface {
	LastExportPath() string
}
