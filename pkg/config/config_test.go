package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: debug
  json: true
db:
  path: /var/lib/lsmkv
  memtable:
    capacity: 64
  sstable:
    encoding: zstd
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.True(t, cfg.Logger.JSON)
	level, err := cfg.Logger.SlogLevel()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, level)

	require.Equal(t, "/var/lib/lsmkv", cfg.DB.RootPath)
	require.Equal(t, 64, cfg.DB.Memtable.Capacity)
	require.Equal(t, "zstd", cfg.DB.SSTable.Encoding)

	// untouched keys keep their defaults
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 2, cfg.DB.SSTable.IndexStride)
	require.True(t, cfg.DB.SSTable.Sync)
	require.True(t, cfg.DB.FlushOnClose)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
db:
  memtable:
    capacity: 0
  sstable:
    index_stride: -1
    encoding: ""
`)

	_, err := Load(path)
	require.Error(t, err)
	require.ErrorContains(t, err, "db.memtable.capacity")
	require.ErrorContains(t, err, "db.sstable.index_stride")
	require.ErrorContains(t, err, "db.sstable.encoding")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "db: [unclosed"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	cfg := Default()
	cfg.Server.Port = 0
	cfg.Logger.Level = "verbose"
	err := cfg.Validate()
	require.ErrorContains(t, err, "http-server.port")
	require.ErrorContains(t, err, "logger.level")

	db := DefaultDB("")
	require.ErrorContains(t, db.Validate(), "db.path")
}

func TestExampleConfigIsValid(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}
