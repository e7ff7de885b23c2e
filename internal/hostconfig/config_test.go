package hostconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crowdeckd.toml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadOverridesOnlyDefinedKeys(t *testing.T) {
	path := writeConfig(t, `
bindings = "/etc/crowdeck/bindings.toml"
report_device = "unix:/tmp/crowdeck.sock"
stats_interval = "5s"
stats_metrics = ["cpu", "temp"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BindingsPath != "/etc/crowdeck/bindings.toml" {
		t.Fatalf("bindings=%q", cfg.BindingsPath)
	}
	if cfg.ReportDevice != "unix:/tmp/crowdeck.sock" {
		t.Fatalf("report=%q", cfg.ReportDevice)
	}
	if cfg.StatsInterval != 5*time.Second {
		t.Fatalf("interval=%v", cfg.StatsInterval)
	}
	if len(cfg.StatsMetrics) != 2 {
		t.Fatalf("metrics=%v", cfg.StatsMetrics)
	}

	// Undefined keys keep their defaults.
	def := Default()
	if cfg.HTTPAddr != def.HTTPAddr {
		t.Fatalf("http=%q", cfg.HTTPAddr)
	}
	if cfg.VendorID != def.VendorID || cfg.ProductID != def.ProductID {
		t.Fatalf("usb id=%04x:%04x", cfg.VendorID, cfg.ProductID)
	}
	if cfg.ActionLogPath != def.ActionLogPath {
		t.Fatalf("action log=%q", cfg.ActionLogPath)
	}
}

func TestLoadParsesUSBIDs(t *testing.T) {
	path := writeConfig(t, `
vendor_id = "0x1209"
product_id = "BEEF"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.VendorID != 0x1209 || cfg.ProductID != 0xBEEF {
		t.Fatalf("usb id=%04x:%04x", cfg.VendorID, cfg.ProductID)
	}
}

func TestLoadRejectsBadUSBID(t *testing.T) {
	path := writeConfig(t, `vendor_id = "not-hex"`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadRejectsBadInterval(t *testing.T) {
	path := writeConfig(t, `stats_interval = "soonish"`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	cfg.BindingsPath = "  "
	if err := Validate(cfg); err == nil {
		t.Fatalf("blank bindings path accepted")
	}
	cfg = Default()
	cfg.StatsInterval = 0
	if err := Validate(cfg); err == nil {
		t.Fatalf("zero interval accepted")
	}
}
