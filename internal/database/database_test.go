package database

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   uint `gorm:"primarykey"`
	Name string
}

func (*row) TableName() string { return "rows" }

func TestGetSqliteDBStandalone_PrivateMemory(t *testing.T) {
	a, err := GetSqliteDBStandalone("")
	require.NoError(t, err)
	b, err := GetSqliteDBStandalone("")
	require.NoError(t, err)

	require.NoError(t, a.AutoMigrate(&row{}))
	assert.True(t, a.Migrator().HasTable(&row{}))
	assert.False(t, b.Migrator().HasTable(&row{}), "each memory DB is private")
}

func TestDumpAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.db")

	src, err := GetSqliteDBStandalone("")
	require.NoError(t, err)
	require.NoError(t, src.AutoMigrate(&row{}))
	require.NoError(t, src.Create(&[]row{{Name: "Atlas"}, {Name: "Locust"}}).Error)
	require.NoError(t, DumpMemoryDBToDisk(src, path))
	// a second dump replaces the first
	require.NoError(t, DumpMemoryDBToDisk(src, path))

	dst, err := GetSqliteDBStandalone("")
	require.NoError(t, err)
	require.NoError(t, dst.AutoMigrate(&row{}))
	require.NoError(t, LoadDiskIntoMemory(dst, path, []string{"rows"}))

	var names []string
	require.NoError(t, dst.Model(&row{}).Order("id").Pluck("name", &names).Error)
	assert.Equal(t, []string{"Atlas", "Locust"}, names)
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	db, err := GetSqliteDBStandalone("")
	require.NoError(t, err)
	assert.Error(t, DumpMemoryDBToDisk(db, ""))
}

func TestLoadDiskIntoMemory_MissingFile(t *testing.T) {
	db, err := GetSqliteDBStandalone("")
	require.NoError(t, err)
	assert.Error(t, LoadDiskIntoMemory(db, filepath.Join(t.TempDir(), "absent.db"), nil))
}

func TestManager_FallsBackToSqlite(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("db.host", "127.0.0.1")
	viper.Set("db.port", "1")

	path := filepath.Join(t.TempDir(), "fallback.db")
	m := NewManager(zerolog.Nop(), path)
	require.NoError(t, m.Connect())
	defer m.Close()

	assert.True(t, m.IsValid)
	assert.True(t, m.ShouldSaveLocal)
	assert.Equal(t, "sqlite", m.DB.Dialector.Name())
}

func TestPostgresDSN(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("db.host", "db.example")
	viper.Set("db.port", "5433")
	viper.Set("db.username", "qm")
	viper.Set("db.password", "secret")
	viper.Set("db.database", "armory")

	assert.Equal(t, "host=db.example port=5433 user=qm password=secret dbname=armory sslmode=disable", PostgresDSN())
}
