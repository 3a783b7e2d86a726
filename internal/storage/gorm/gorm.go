// Package gormstorage implements the storage.Backend interface on any GORM
// dialect. A save replaces the campaign's child rows inside one transaction.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/OCAP2/armory/internal/model"
	"github.com/OCAP2/armory/internal/model/convert"
	"github.com/OCAP2/armory/pkg/core"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps    Dependencies
	dbReady bool
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{deps: deps}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB { return b.deps.DB }

// Init runs schema migration.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("no database connection")
	}
	b.deps.Logger.Info("Migrating schema", "dialect", b.deps.DB.Dialector.Name())
	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	b.dbReady = true
	return nil
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// childModels are the tables replaced on each save.
var childModels = []any{&model.Unit{}, &model.Part{}, &model.Stock{}, &model.Task{}}

// SaveCampaign writes the campaign, replacing any earlier save of the same
// name.
func (b *Backend) SaveCampaign(ctx context.Context, c *core.Campaign) error {
	if !b.dbReady {
		return errors.New("backend not initialized")
	}
	if c == nil || c.Name == "" {
		return errors.New("campaign without a name")
	}
	rows, err := convert.CoreToRows(*c)
	if err != nil {
		return err
	}

	err = b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Campaign
		if err := tx.Where("name = ?", c.Name).Limit(1).Find(&existing).Error; err != nil {
			return err
		}
		if existing.ID == 0 {
			if err := tx.Create(&rows.Campaign).Error; err != nil {
				return fmt.Errorf("creating campaign: %w", err)
			}
		} else {
			if err := tx.Model(&existing).Update("day", c.Day).Error; err != nil {
				return fmt.Errorf("updating campaign: %w", err)
			}
			for _, m := range childModels {
				if err := tx.Where("campaign_id = ?", existing.ID).Delete(m).Error; err != nil {
					return fmt.Errorf("clearing %T: %w", m, err)
				}
			}
			rows.Campaign = existing
		}
		rows.SetCampaignID(rows.Campaign.ID)

		create := tx.Omit(clause.Associations)
		if len(rows.Units) > 0 {
			if err := create.Create(&rows.Units).Error; err != nil {
				return fmt.Errorf("writing units: %w", err)
			}
		}
		if len(rows.Parts) > 0 {
			if err := create.Create(&rows.Parts).Error; err != nil {
				return fmt.Errorf("writing parts: %w", err)
			}
		}
		if len(rows.Stock) > 0 {
			if err := create.Create(&rows.Stock).Error; err != nil {
				return fmt.Errorf("writing stock: %w", err)
			}
		}
		if len(rows.Tasks) > 0 {
			if err := create.Create(&rows.Tasks).Error; err != nil {
				return fmt.Errorf("writing tasks: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving campaign %s: %w", c.Name, err)
	}
	b.deps.Logger.Debug("Saved campaign", "campaign", c.Name, "units", len(rows.Units), "parts", len(rows.Parts))
	return nil
}

// LoadCampaign reads a campaign by name.
func (b *Backend) LoadCampaign(ctx context.Context, name string) (*core.Campaign, error) {
	if !b.dbReady {
		return nil, errors.New("backend not initialized")
	}
	db := b.deps.DB.WithContext(ctx)

	var rows convert.Rows
	if err := db.Where("name = ?", name).Limit(1).Find(&rows.Campaign).Error; err != nil {
		return nil, err
	}
	if rows.Campaign.ID == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrCampaignNotFound, name)
	}
	id := rows.Campaign.ID
	if err := db.Where("campaign_id = ?", id).Order("id").Find(&rows.Units).Error; err != nil {
		return nil, err
	}
	if err := db.Where("campaign_id = ?", id).Order("id").Find(&rows.Parts).Error; err != nil {
		return nil, err
	}
	if err := db.Where("campaign_id = ?", id).Order("id").Find(&rows.Stock).Error; err != nil {
		return nil, err
	}
	if err := db.Where("campaign_id = ?", id).Order("position").Find(&rows.Tasks).Error; err != nil {
		return nil, err
	}

	c, err := convert.RowsToCore(rows)
	if err != nil {
		return nil, fmt.Errorf("loading campaign %s: %w", name, err)
	}
	return &c, nil
}

// ListCampaigns returns saved campaign names, sorted.
func (b *Backend) ListCampaigns(ctx context.Context) ([]string, error) {
	if !b.dbReady {
		return nil, errors.New("backend not initialized")
	}
	var names []string
	err := b.deps.DB.WithContext(ctx).Model(&model.Campaign{}).Order("name").Pluck("name", &names).Error
	return names, err
}
