package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config is the root configuration of an lsmkv node.
type Config struct {
	Logger LoggerConfig `yaml:"logger"`
	Server ServerConfig `yaml:"http-server"`
	DB     DB           `yaml:"db"`
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

// DB configures the storage engine.
type DB struct {
	RootPath     string         `yaml:"path"`
	FlushOnClose bool           `yaml:"flush_on_close"`
	Memtable     MemtableConfig `yaml:"memtable"`
	SSTable      SSTableConfig  `yaml:"sstable"`
}

type MemtableConfig struct {
	// Capacity is the number of distinct keys buffered before rotation.
	Capacity int `yaml:"capacity"`
}

type SSTableConfig struct {
	// IndexStride is the number of records per sparse index block.
	IndexStride int `yaml:"index_stride"`
	// Encoding names a registered record codec, see encoding.Names. The
	// store rejects unknown names when it opens.
	Encoding string `yaml:"encoding"`
	// Sync fsyncs segment files after every write.
	Sync bool `yaml:"sync"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns a baseline development config.
func Default() Config {
	return Config{
		Logger: LoggerConfig{
			Level: "INFO",
			JSON:  false,
		},
		Server: ServerConfig{
			Port:              8080,
			ReadHeaderTimeout: time.Second,
		},
		DB: DefaultDB("./data"),
	}
}

// DefaultDB returns the default engine config rooted at path.
func DefaultDB(path string) DB {
	return DB{
		RootPath:     path,
		FlushOnClose: true,
		Memtable: MemtableConfig{
			Capacity: 10,
		},
		SSTable: SSTableConfig{
			IndexStride: 2,
			Encoding:    "custom",
			Sync:        true,
		},
	}
}

func (c Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("http-server.port %d out of range", c.Server.Port))
	}
	if _, err := c.Logger.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if err := c.DB.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (db DB) Validate() error {
	var errs []error

	if db.RootPath == "" {
		errs = append(errs, errors.New("db.path is required"))
	}
	if db.Memtable.Capacity < 1 {
		errs = append(errs, fmt.Errorf("db.memtable.capacity must be >= 1, got %d", db.Memtable.Capacity))
	}
	if db.SSTable.IndexStride < 1 {
		errs = append(errs, fmt.Errorf("db.sstable.index_stride must be >= 1, got %d", db.SSTable.IndexStride))
	}
	if db.SSTable.Encoding == "" {
		errs = append(errs, errors.New("db.sstable.encoding is required"))
	}

	return errors.Join(errs...)
}

// SlogLevel maps the configured level name to a slog level.
func (l LoggerConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToUpper(l.Level) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logger.level %q is not one of DEBUG, INFO, WARN, ERROR", l.Level)
	}
}
