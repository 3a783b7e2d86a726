// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"

	"github.com/OCAP2/armory/internal/config"
	"github.com/OCAP2/armory/internal/database"
	gormstorage "github.com/OCAP2/armory/internal/storage/gorm"
	"github.com/OCAP2/armory/internal/storage/memory"
	sqlitestorage "github.com/OCAP2/armory/internal/storage/sqlite"
)

// NewBackend creates a storage backend based on configuration. The
// postgres backend falls back to a local SQLite file when the server is
// unreachable.
func NewBackend(cfg config.StorageConfig, logger *slog.Logger, dbLog zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		m := database.NewManager(dbLog, cfg.SQLite.Path)
		if err := m.Connect(); err != nil {
			return nil, err
		}
		return gormstorage.New(gormstorage.Dependencies{DB: m.DB, Logger: logger}), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: cfg.SQLite.DumpInterval,
			DumpPath:     cfg.SQLite.Path,
		}, logger)
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

var (
	_ Backend  = (*memory.Backend)(nil)
	_ Backend  = (*gormstorage.Backend)(nil)
	_ Backend  = (*sqlitestorage.Backend)(nil)
	_ Exporter = (*memory.Backend)(nil)
)
