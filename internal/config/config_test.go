package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8081" {
		t.Errorf("expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.Workspace.File != "data/workspace.json" {
		t.Errorf("expected default workspace file, got %q", cfg.Workspace.File)
	}
	if cfg.Refresh.Cron != "0 */5 * * * *" {
		t.Errorf("expected default cron, got %q", cfg.Refresh.Cron)
	}
	if cfg.Indicators.ShortWindow != 20 || cfg.Indicators.LongWindow != 50 {
		t.Errorf("expected default SMA windows, got %d/%d",
			cfg.Indicators.ShortWindow, cfg.Indicators.LongWindow)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_FileAndPartialIndicatorOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
indicators:
  short_window: 10
refresh:
  cron: "0 0 * * * *"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected :9000, got %q", cfg.Server.Addr)
	}
	if cfg.Indicators.ShortWindow != 10 {
		t.Errorf("expected overridden short window, got %d", cfg.Indicators.ShortWindow)
	}
	// Unset indicator fields fill in from defaults.
	if cfg.Indicators.RSIWindow != 14 || cfg.Indicators.MACDSlow != 26 {
		t.Errorf("expected default indicator fill, got %+v", cfg.Indicators)
	}
	if cfg.Refresh.Cron != "0 0 * * * *" {
		t.Errorf("expected overridden cron, got %q", cfg.Refresh.Cron)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":9000\"\n")
	t.Setenv("TRADESCAPE_ADDR", ":7777")
	t.Setenv("ALPHA_VANTAGE_API_KEY", "sekret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":7777" {
		t.Errorf("expected env to win, got %q", cfg.Server.Addr)
	}
	if cfg.Provider.AlphaVantageKey != "sekret" {
		t.Errorf("expected env api key, got %q", cfg.Provider.AlphaVantageKey)
	}
}

func TestValidate_RejectsBadMACD(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Indicators.MACDFast = 30
	cfg.Indicators.MACDSlow = 26
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for fast >= slow")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
