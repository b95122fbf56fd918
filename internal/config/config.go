// Package config loads contact-sync settings from defaults, an optional TOML
// file and CONTACTSYNC_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// Config holds all application configuration
type Config struct {
	Store   StoreConfig
	Source  SourceConfig
	Sync    SyncConfig
	Log     LogConfig
	Publish PublishConfig
}

// StoreConfig selects and configures the contact store backend
type StoreConfig struct {
	Backend      string
	SQLitePath   string
	GCPProjectID string
	ContainerID  string
}

// SourceConfig locates the contact list. URL wins over File when both are set.
type SourceConfig struct {
	File string
	URL  string
}

// SyncConfig holds engine settings
type SyncConfig struct {
	BatchSize int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	File   string // empty for stderr, otherwise a rotated file
}

// PublishConfig enables report publishing when TopicID is set
type PublishConfig struct {
	TopicID string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.sqlite_path", ".contactsync/contacts.db")
	v.SetDefault("source.file", "contacts.json")
	v.SetDefault("sync.batch_size", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration.
//
// Priority (highest to lowest):
// 1. Environment variables with CONTACTSYNC_ prefix (e.g., CONTACTSYNC_STORE_BACKEND)
// 2. The file at path, or contactsync.toml in the working directory when path is empty
// 3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("contactsync")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("CONTACTSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Store: StoreConfig{
			Backend:      v.GetString("store.backend"),
			SQLitePath:   v.GetString("store.sqlite_path"),
			GCPProjectID: v.GetString("store.gcp_project_id"),
			ContainerID:  v.GetString("store.container_id"),
		},
		Source: SourceConfig{
			File: v.GetString("source.file"),
			URL:  v.GetString("source.url"),
		},
		Sync: SyncConfig{
			BatchSize: v.GetInt("sync.batch_size"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   v.GetString("log.file"),
		},
		Publish: PublishConfig{
			TopicID: v.GetString("publish.topic_id"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can be used.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path is required for the sqlite backend")
		}
	case BackendFirestore:
		if c.Store.GCPProjectID == "" {
			return errors.New("store.gcp_project_id is required for the firestore backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Sync.BatchSize < 1 {
		return fmt.Errorf("sync.batch_size must be at least 1, got %d", c.Sync.BatchSize)
	}
	if c.Publish.TopicID != "" && c.Store.GCPProjectID == "" {
		return errors.New("store.gcp_project_id is required when publish.topic_id is set")
	}
	return nil
}
