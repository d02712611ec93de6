// Package config loads and validates tracker configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/legislation-tracker/internal/legiscan"
	"github.com/JakeFAU/legislation-tracker/internal/render"
	"github.com/JakeFAU/legislation-tracker/internal/snapshot"
)

// APIKeyEnv is the unprefixed environment variable that also supplies the LegiScan key.
const APIKeyEnv = "LEGISCAN_API_KEY"

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	LegiScan      LegiScanConfig  `mapstructure:"legiscan"`
	Pacing        PacingConfig    `mapstructure:"pacing"`
	Reference     ReferenceConfig `mapstructure:"reference"`
	Jurisdictions []string        `mapstructure:"jurisdictions"`
	Output        OutputConfig    `mapstructure:"output"`
	Storage       StorageConfig   `mapstructure:"storage"`
	PubSub        PubSubConfig    `mapstructure:"pubsub"`
	Metrics       MetricsConfig   `mapstructure:"metrics"`
	Server        ServerConfig    `mapstructure:"server"`
	Logging       LoggingConfig   `mapstructure:"logging"`
	Site          SiteConfig      `mapstructure:"site"`
}

// LegiScanConfig controls the provider client and its request ceiling.
type LegiScanConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Query             string        `mapstructure:"query"`
	Year              int           `mapstructure:"year"`
	Timeout           time.Duration `mapstructure:"timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// PacingConfig holds the fixed pauses between provider calls.
type PacingConfig struct {
	DetailDelay       time.Duration `mapstructure:"detail_delay"`
	JurisdictionDelay time.Duration `mapstructure:"jurisdiction_delay"`
}

// ReferenceConfig points at an operator-supplied reference table file.
type ReferenceConfig struct {
	Path string `mapstructure:"path"`
}

// OutputConfig sets the local output directory and artifact names.
type OutputConfig struct {
	Dir          string `mapstructure:"dir"`
	SnapshotName string `mapstructure:"snapshot_name"`
	DocumentName string `mapstructure:"document_name"`
}

// StorageConfig enables the optional remote stores.
type StorageConfig struct {
	GCS      GCSConfig      `mapstructure:"gcs"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// GCSConfig configures static-site uploads.
type GCSConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
}

// PostgresConfig configures the latest-snapshot row.
type PostgresConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// PubSubConfig holds metadata for run notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// MetricsConfig configures the Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// ServerConfig controls the preview server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// SiteConfig feeds the rendered document's canonical links and dates.
type SiteConfig struct {
	CanonicalURL string `mapstructure:"canonical_url"`
	Timezone     string `mapstructure:"timezone"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := v.BindEnv("legiscan.api_key", "TRACKER_LEGISCAN_API_KEY", APIKeyEnv); err != nil {
		return Config{}, fmt.Errorf("bind api key env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("legiscan.api_key", "")
	v.SetDefault("legiscan.base_url", legiscan.DefaultBaseURL)
	v.SetDefault("legiscan.query", legiscan.DefaultQuery)
	v.SetDefault("legiscan.year", legiscan.DefaultYear)
	v.SetDefault("legiscan.timeout", 30*time.Second)
	v.SetDefault("legiscan.user_agent", "legislation-tracker/1.0")
	v.SetDefault("legiscan.requests_per_second", 4.0)
	v.SetDefault("legiscan.burst", 1)
	v.SetDefault("pacing.detail_delay", 500*time.Millisecond)
	v.SetDefault("pacing.jurisdiction_delay", time.Second)
	v.SetDefault("reference.path", "")
	v.SetDefault("jurisdictions", []string{})
	v.SetDefault("output.dir", "public")
	v.SetDefault("output.snapshot_name", snapshot.DefaultSnapshotName)
	v.SetDefault("output.document_name", snapshot.DefaultDocumentName)
	v.SetDefault("storage.gcs.bucket", "")
	v.SetDefault("storage.gcs.prefix", "")
	v.SetDefault("storage.postgres.dsn", "")
	v.SetDefault("storage.postgres.table", "tracker_snapshots")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_id", "")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "legislation_tracker")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("site.canonical_url", render.DefaultSite().CanonicalURL)
	v.SetDefault("site.timezone", "UTC")
}

// Validate enforces required values and reasonable limits. A missing API key
// is not a configuration error; the collector refuses to start without one.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if err := validateURL("legiscan.base_url", c.LegiScan.BaseURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.LegiScan.Query) == "" {
		return fmt.Errorf("legiscan.query must be set")
	}
	if c.LegiScan.Year <= 0 {
		return fmt.Errorf("legiscan.year must be > 0")
	}
	if c.LegiScan.Timeout <= 0 {
		return fmt.Errorf("legiscan.timeout must be > 0")
	}
	if c.LegiScan.RequestsPerSecond < 0 || c.LegiScan.Burst < 0 {
		return fmt.Errorf("legiscan.requests_per_second and legiscan.burst must be >= 0")
	}
	if c.Pacing.DetailDelay < 0 || c.Pacing.JurisdictionDelay < 0 {
		return fmt.Errorf("pacing delays must be >= 0")
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("output.dir must be set")
	}
	if c.Output.SnapshotName == "" || c.Output.DocumentName == "" {
		return fmt.Errorf("output.snapshot_name and output.document_name must be set")
	}
	if c.Output.SnapshotName == c.Output.DocumentName {
		return fmt.Errorf("output.snapshot_name and output.document_name must differ")
	}
	if c.PubSub.TopicID != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id must be set when pubsub.topic_id is set")
	}
	if c.Metrics.PushgatewayURL != "" {
		if err := validateURL("metrics.pushgateway_url", c.Metrics.PushgatewayURL); err != nil {
			return err
		}
	}
	if err := validateURL("site.canonical_url", c.Site.CanonicalURL); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves site.timezone.
func (c Config) Location() (*time.Location, error) {
	name := c.Site.Timezone
	if name == "" {
		name = "UTC"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("site.timezone: %w", err)
	}
	return loc, nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", key)
	}
	return nil
}
