// Package config handles service configuration: defaults, an optional YAML
// file, then environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"

	"github.com/ezoic/tsreg/pipeline"
	"github.com/ezoic/tsreg/pkg/errors"
	"github.com/ezoic/tsreg/report"
	"github.com/ezoic/tsreg/storage"
)

// Storage backends.
const (
	BackendMemory = storage.BackendMemory
	BackendBadger = storage.BackendBadger
	BackendAzure  = storage.BackendAzure
)

// Config defines the structure for all service configuration.
type Config struct {
	Addr     string       `yaml:"addr"`
	LogLevel string       `yaml:"log_level"`
	Console  bool         `yaml:"console_log"`
	Storage  StorageConf  `yaml:"storage"`
	Charts   ChartConf    `yaml:"charts"`
	HTTP     HTTPConf     `yaml:"http"`
	CV       CrossValConf `yaml:"cross_validation"`
}

// StorageConf selects and configures the object store.
type StorageConf struct {
	Backend    string         `yaml:"backend"`
	Timeout    Duration       `yaml:"timeout"`
	BadgerDir  string         `yaml:"badger_dir"`
	Containers ContainersConf `yaml:"containers"`

	// PublicBaseURL roots the blob URLs of the memory and badger backends.
	PublicBaseURL string `yaml:"public_base_url"`

	AzureConnectionString string `yaml:"-"` // Loaded from env
	AzureContainer        string `yaml:"azure_container"`
}

// ContainersConf names the logical containers for datasets, models and charts.
type ContainersConf struct {
	Data   string `yaml:"data"`
	Models string `yaml:"models"`
	Charts string `yaml:"charts"`
}

// ChartConf holds cosmetic chart settings.
type ChartConf struct {
	DPI           int     `yaml:"dpi"`
	PanelWidthIn  float64 `yaml:"panel_width_in"`
	PanelHeightIn float64 `yaml:"panel_height_in"`
}

// HTTPConf holds HTTP server settings.
type HTTPConf struct {
	AllowOrigins    []string `yaml:"allow_origins"`
	MaxUploadMB     int64    `yaml:"max_upload_mb"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// CrossValConf configures training cross-validation.
type CrossValConf struct {
	NSplits int `yaml:"n_splits"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Addr:     ":8000",
		LogLevel: "info",
		Storage: StorageConf{
			Backend:   BackendMemory,
			Timeout:   Duration(30 * time.Second),
			BadgerDir: "data/blobs",
			Containers: ContainersConf{
				Data:   "data",
				Models: "models",
				Charts: "charts",
			},
			PublicBaseURL:  "http://localhost:8000",
			AzureContainer: "tsreg",
		},
		Charts: ChartConf{DPI: 96, PanelWidthIn: 6, PanelHeightIn: 3.5},
		HTTP: HTTPConf{
			AllowOrigins:    []string{"*"},
			MaxUploadMB:     32,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		CV: CrossValConf{NSplits: 5},
	}
}

// LoadConfig loads defaults, then the YAML file at configPath (skipped when
// empty), then environment variables.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", configPath)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", configPath)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	if port, ok := lookup("PORT"); ok && port != "" {
		cfg.Addr = ":" + port
	}
	if addr, ok := lookup("TSREG_ADDR"); ok && addr != "" {
		cfg.Addr = addr
	}
	if level, ok := lookup("LOG_LEVEL"); ok && level != "" {
		cfg.LogLevel = level
	}
	if backend, ok := lookup("STORAGE_BACKEND"); ok && backend != "" {
		cfg.Storage.Backend = strings.ToLower(backend)
	}
	if dir, ok := lookup("BADGER_DIR"); ok && dir != "" {
		cfg.Storage.BadgerDir = dir
	}
	if conn, ok := lookup("AZURE_STORAGE_CONNECTION_STRING"); ok && conn != "" {
		cfg.Storage.AzureConnectionString = conn
	}
	if container, ok := lookup("AZURE_CONTAINER_NAME"); ok && container != "" {
		cfg.Storage.AzureContainer = container
	}
	if base, ok := lookup("PUBLIC_BASE_URL"); ok && base != "" {
		cfg.Storage.PublicBaseURL = base
	}
	if timeout, ok := lookup("STORAGE_TIMEOUT"); ok && timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return errors.Wrap(err, "STORAGE_TIMEOUT")
		}
		cfg.Storage.Timeout = Duration(d)
	}
	return nil
}

// Validate rejects configurations the service cannot start with.
func (cfg *Config) Validate() error {
	switch cfg.Storage.Backend {
	case BackendMemory:
	case BackendBadger:
		if cfg.Storage.BadgerDir == "" {
			return errors.NewValueError("config.Validate", "badger backend requires storage.badger_dir")
		}
	case BackendAzure:
		if cfg.Storage.AzureConnectionString == "" {
			return errors.NewValueError("config.Validate", "azure backend requires AZURE_STORAGE_CONNECTION_STRING")
		}
		if cfg.Storage.AzureContainer == "" {
			return errors.NewValueError("config.Validate", "azure backend requires a container name")
		}
	default:
		return errors.NewValueError("config.Validate", fmt.Sprintf("unknown storage backend %q", cfg.Storage.Backend))
	}

	if cfg.Storage.Timeout <= 0 {
		return errors.NewValueError("config.Validate", "storage.timeout must be positive")
	}
	if cfg.CV.NSplits < 2 {
		return errors.NewValueError("config.Validate", "cross_validation.n_splits must be at least 2")
	}
	return nil
}

// StoreOptions returns the options for storage.Open.
func (cfg *Config) StoreOptions() storage.Options {
	return storage.Options{
		Backend:               cfg.Storage.Backend,
		BaseURL:               cfg.Storage.PublicBaseURL,
		BadgerDir:             cfg.Storage.BadgerDir,
		AzureConnectionString: cfg.Storage.AzureConnectionString,
		AzureContainer:        cfg.Storage.AzureContainer,
	}
}

// PipelineOptions returns the options for pipeline.NewService.
func (cfg *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Containers: pipeline.Containers{
			Data:   cfg.Storage.Containers.Data,
			Models: cfg.Storage.Containers.Models,
			Charts: cfg.Storage.Containers.Charts,
		},
		StorageTimeout: cfg.Storage.Timeout.Std(),
		NSplits:        cfg.CV.NSplits,
	}
}

// Renderer returns the chart renderer. Unset chart settings keep the
// renderer defaults.
func (cfg *Config) Renderer() *report.PNGRenderer {
	r := report.NewPNGRenderer()
	if cfg.Charts.DPI > 0 {
		r.DPI = cfg.Charts.DPI
	}
	if cfg.Charts.PanelWidthIn > 0 {
		r.PanelWidth = vg.Length(cfg.Charts.PanelWidthIn) * vg.Inch
	}
	if cfg.Charts.PanelHeightIn > 0 {
		r.PanelHeight = vg.Length(cfg.Charts.PanelHeightIn) * vg.Inch
	}
	return r
}
