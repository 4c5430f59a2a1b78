package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rusenback/trackerdash/internal/model"
	"github.com/rusenback/trackerdash/internal/render"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Sync      SyncConfig      `yaml:"sync"`
	Live      LiveConfig      `yaml:"live"`
	Offline   OfflineConfig   `yaml:"offline"`
	Markers   MarkersConfig   `yaml:"markers"`
	Log       LogConfig       `yaml:"log"`
	Storage   StorageConfig   `yaml:"storage"`
	Downloads DownloadsConfig `yaml:"downloads"`
}

// ServerConfig defines how to reach the tracker server
type ServerConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SyncConfig defines the background dashboard sync
type SyncConfig struct {
	Interval                 time.Duration  `yaml:"interval"`
	Regions                  []model.Region `yaml:"regions"`
	ManualRefreshMinInterval time.Duration  `yaml:"manual_refresh_min_interval"`
}

// LiveConfig defines live streaming behaviour
type LiveConfig struct {
	LoadingFallback time.Duration `yaml:"loading_fallback"` // overlay is hidden after this even without frames
}

// OfflineConfig defines offline processing behaviour
type OfflineConfig struct {
	DisconnectDelay time.Duration `yaml:"disconnect_delay"` // wait after dropping the stream before the request
}

// MarkersConfig defines the texts the server uses to encode state
type MarkersConfig struct {
	Away   string `yaml:"away"`   // action text of an employee leaving the desk
	Result string `yaml:"result"` // title text of the result view
}

// LogConfig defines logging settings
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// StorageConfig defines the local sync journal
type StorageConfig struct {
	Path      string        `yaml:"path"`
	Retention time.Duration `yaml:"retention"`
}

// DownloadsConfig defines where saved videos and reports go
type DownloadsConfig struct {
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the settings used when no config file exists
func DefaultConfig() Config {
	dataDir := dataDir()
	return Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 10 * time.Second,
		},
		Sync: SyncConfig{
			Interval:                 3 * time.Second,
			Regions:                  append([]model.Region(nil), model.SyncRegions...),
			ManualRefreshMinInterval: time.Second,
		},
		Live: LiveConfig{
			LoadingFallback: 800 * time.Millisecond,
		},
		Offline: OfflineConfig{
			DisconnectDelay: 100 * time.Millisecond,
		},
		Markers: MarkersConfig{
			Away:   render.AwayMarker,
			Result: "KẾT QUẢ",
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dataDir, "trackerdash.log"),
		},
		Storage: StorageConfig{
			Path:      filepath.Join(dataDir, "journal.db"),
			Retention: 7 * 24 * time.Hour,
		},
		Downloads: DownloadsConfig{
			Dir: filepath.Join(dataDir, "downloads"),
		},
	}
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".trackerdash"
	}
	return filepath.Join(home, ".trackerdash")
}

// Load reads the configuration file on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}

	if c.Sync.Interval < 100*time.Millisecond {
		return fmt.Errorf("sync.interval must be at least 100ms")
	}

	if len(c.Sync.Regions) == 0 {
		return fmt.Errorf("sync.regions must name at least one region")
	}
	for _, r := range c.Sync.Regions {
		if r == "" {
			return fmt.Errorf("sync.regions contains an empty region id")
		}
	}

	if c.Live.LoadingFallback <= 0 {
		return fmt.Errorf("live.loading_fallback must be positive")
	}

	if c.Offline.DisconnectDelay < 0 {
		return fmt.Errorf("offline.disconnect_delay must not be negative")
	}

	if c.Markers.Away == "" || c.Markers.Result == "" {
		return fmt.Errorf("markers.away and markers.result are required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: must be debug, info, warn or error", c.Log.Level)
	}

	return nil
}
