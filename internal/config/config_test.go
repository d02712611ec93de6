package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	t.Setenv("TRACKER_LEGISCAN_API_KEY", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LegiScan.BaseURL != "https://api.legiscan.com/" {
		t.Fatalf("unexpected base url %q", cfg.LegiScan.BaseURL)
	}
	if cfg.LegiScan.Query != "cannabis OR marijuana" || cfg.LegiScan.Year != 2 {
		t.Fatalf("unexpected search defaults: %+v", cfg.LegiScan)
	}
	if cfg.Pacing.DetailDelay != 500*time.Millisecond || cfg.Pacing.JurisdictionDelay != time.Second {
		t.Fatalf("unexpected pacing defaults: %+v", cfg.Pacing)
	}
	if cfg.Output.SnapshotName != "bills.json" || cfg.Output.DocumentName != "index.html" {
		t.Fatalf("unexpected output defaults: %+v", cfg.Output)
	}
	if cfg.LegiScan.APIKey != "" {
		t.Fatalf("expected empty api key, got %q", cfg.LegiScan.APIKey)
	}
	if len(cfg.Jurisdictions) != 0 {
		t.Fatalf("expected no jurisdiction filter, got %v", cfg.Jurisdictions)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
legiscan:
  api_key: from-file
  query: hemp
  year: 3
  timeout: 5s
  requests_per_second: 2
  burst: 3
pacing:
  detail_delay: 250ms
  jurisdiction_delay: 2s
jurisdictions: ["CA", "us"]
output:
  dir: /tmp/site
storage:
  gcs:
    bucket: tracker-site
    prefix: live
  postgres:
    dsn: postgres://localhost/tracker
pubsub:
  project_id: proj
  topic_id: runs
server:
  port: 9090
logging:
  development: false
site:
  canonical_url: https://example.com/tracker/
  timezone: America/Chicago
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv(APIKeyEnv, "")
	t.Setenv("TRACKER_LEGISCAN_API_KEY", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.LegiScan.APIKey != "from-file" || cfg.LegiScan.Query != "hemp" || cfg.LegiScan.Year != 3 {
		t.Fatalf("expected legiscan overrides to apply: %+v", cfg.LegiScan)
	}
	if cfg.LegiScan.Timeout != 5*time.Second || cfg.LegiScan.Burst != 3 {
		t.Fatalf("expected client overrides to apply: %+v", cfg.LegiScan)
	}
	if cfg.Pacing.DetailDelay != 250*time.Millisecond || cfg.Pacing.JurisdictionDelay != 2*time.Second {
		t.Fatalf("expected pacing overrides to apply: %+v", cfg.Pacing)
	}
	if len(cfg.Jurisdictions) != 2 || cfg.Jurisdictions[1] != "us" {
		t.Fatalf("unexpected jurisdictions %v", cfg.Jurisdictions)
	}
	if cfg.Storage.GCS.Bucket != "tracker-site" || cfg.Storage.Postgres.Table != "tracker_snapshots" {
		t.Fatalf("unexpected storage config %+v", cfg.Storage)
	}
	if cfg.Logging.Development {
		t.Fatal("expected development logging to be disabled")
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "America/Chicago" {
		t.Fatalf("Location() = %v, %v", loc, err)
	}
}

func TestLoadAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("TRACKER_LEGISCAN_API_KEY", "")
	t.Setenv(APIKeyEnv, "env-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LegiScan.APIKey != "env-key" {
		t.Fatalf("expected api key from %s, got %q", APIKeyEnv, cfg.LegiScan.APIKey)
	}
}

func TestLoadPrefixedEnvironment(t *testing.T) {
	t.Setenv("TRACKER_SERVER_PORT", "7070")
	t.Setenv("TRACKER_OUTPUT_DIR", "dist")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 || cfg.Output.Dir != "dist" {
		t.Fatalf("expected env overrides, got port=%d dir=%q", cfg.Server.Port, cfg.Output.Dir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		LegiScan: LegiScanConfig{
			BaseURL: "https://api.legiscan.com/",
			Query:   "cannabis",
			Year:    2,
			Timeout: time.Second,
		},
		Output: OutputConfig{Dir: "public", SnapshotName: "bills.json", DocumentName: "index.html"},
		Server: ServerConfig{Port: 8080},
		Site:   SiteConfig{CanonicalURL: "https://tracker.example.com/", Timezone: "UTC"},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = 0 }, want: "server.port"},
		{name: "relative base url", mutate: func(c *Config) { c.LegiScan.BaseURL = "/api" }, want: "legiscan.base_url"},
		{name: "empty query", mutate: func(c *Config) { c.LegiScan.Query = " " }, want: "legiscan.query"},
		{name: "invalid year", mutate: func(c *Config) { c.LegiScan.Year = 0 }, want: "legiscan.year"},
		{name: "invalid timeout", mutate: func(c *Config) { c.LegiScan.Timeout = 0 }, want: "legiscan.timeout"},
		{name: "negative burst", mutate: func(c *Config) { c.LegiScan.Burst = -1 }, want: "legiscan.burst"},
		{name: "negative delay", mutate: func(c *Config) { c.Pacing.DetailDelay = -time.Second }, want: "pacing"},
		{name: "missing output dir", mutate: func(c *Config) { c.Output.Dir = "" }, want: "output.dir"},
		{name: "same artifact names", mutate: func(c *Config) { c.Output.DocumentName = "bills.json" }, want: "must differ"},
		{name: "topic without project", mutate: func(c *Config) { c.PubSub.TopicID = "runs" }, want: "pubsub.project_id"},
		{name: "bad pushgateway", mutate: func(c *Config) { c.Metrics.PushgatewayURL = "nope" }, want: "metrics.pushgateway_url"},
		{name: "bad timezone", mutate: func(c *Config) { c.Site.Timezone = "Mars/Olympus" }, want: "site.timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
