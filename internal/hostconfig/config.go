// Package hostconfig loads the crowdeckd daemon configuration. This is
// the daemon's own config, distinct from the binding document the
// dispatcher watches.
package hostconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the daemon runtime configuration.
type Config struct {
	BindingsPath  string
	ActionLogPath string

	// ReportDevice selects the report endpoint: "hidraw:/dev/hidrawN",
	// "unix:/path/to.sock", a bare device path, or empty to discover the
	// bridge by USB id.
	ReportDevice string
	VendorID     uint16
	ProductID    uint16

	HTTPAddr    string
	CORSOrigins []string

	StatsInterval time.Duration
	StatsMetrics  []string

	MQTTBroker   string
	MQTTTopic    string
	MQTTUsername string
	MQTTPassword string
}

// Default returns the daemon defaults. The bridge's USB id matches the
// shipped firmware descriptor.
func Default() Config {
	return Config{
		BindingsPath:  "bindings.toml",
		ActionLogPath: "crowdeck-actions.log",
		VendorID:      0x303A,
		ProductID:     0x82C5,
		HTTPAddr:      ":9620",
		StatsInterval: 2 * time.Second,
		MQTTTopic:     "crowdeck/events",
	}
}

type fileConfig struct {
	Bindings      string   `toml:"bindings"`
	ActionLog     string   `toml:"action_log"`
	ReportDevice  string   `toml:"report_device"`
	VendorID      string   `toml:"vendor_id"`
	ProductID     string   `toml:"product_id"`
	HTTPAddr      string   `toml:"http_addr"`
	CORSOrigins   []string `toml:"cors_origins"`
	StatsInterval string   `toml:"stats_interval"`
	StatsMetrics  []string `toml:"stats_metrics"`
	MQTTBroker    string   `toml:"mqtt_broker"`
	MQTTTopic     string   `toml:"mqtt_topic"`
	MQTTUsername  string   `toml:"mqtt_username"`
	MQTTPassword  string   `toml:"mqtt_password"`
}

// Load reads a config file over the defaults. Absent keys keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("hostconfig: load %s: %w", path, err)
	}

	if meta.IsDefined("bindings") {
		cfg.BindingsPath = strings.TrimSpace(raw.Bindings)
	}
	if meta.IsDefined("action_log") {
		cfg.ActionLogPath = strings.TrimSpace(raw.ActionLog)
	}
	if meta.IsDefined("report_device") {
		cfg.ReportDevice = strings.TrimSpace(raw.ReportDevice)
	}
	if meta.IsDefined("vendor_id") {
		v, err := parseUSBID(raw.VendorID)
		if err != nil {
			return Config{}, fmt.Errorf("hostconfig: vendor_id: %w", err)
		}
		cfg.VendorID = v
	}
	if meta.IsDefined("product_id") {
		v, err := parseUSBID(raw.ProductID)
		if err != nil {
			return Config{}, fmt.Errorf("hostconfig: product_id: %w", err)
		}
		cfg.ProductID = v
	}
	if meta.IsDefined("http_addr") {
		cfg.HTTPAddr = strings.TrimSpace(raw.HTTPAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CORSOrigins = raw.CORSOrigins
	}
	if meta.IsDefined("stats_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.StatsInterval))
		if err != nil {
			return Config{}, fmt.Errorf("hostconfig: stats_interval: %w", err)
		}
		cfg.StatsInterval = d
	}
	if meta.IsDefined("stats_metrics") {
		cfg.StatsMetrics = raw.StatsMetrics
	}
	if meta.IsDefined("mqtt_broker") {
		cfg.MQTTBroker = strings.TrimSpace(raw.MQTTBroker)
	}
	if meta.IsDefined("mqtt_topic") {
		cfg.MQTTTopic = strings.TrimSpace(raw.MQTTTopic)
	}
	if meta.IsDefined("mqtt_username") {
		cfg.MQTTUsername = raw.MQTTUsername
	}
	if meta.IsDefined("mqtt_password") {
		cfg.MQTTPassword = raw.MQTTPassword
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required fields.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.BindingsPath) == "" {
		return fmt.Errorf("hostconfig: bindings path required")
	}
	if cfg.StatsInterval <= 0 {
		return fmt.Errorf("hostconfig: stats_interval must be positive")
	}
	return nil
}

func parseUSBID(raw string) (uint16, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(strings.ToLower(raw)), "0x")
	var v uint16
	if _, err := fmt.Sscanf(raw, "%04x", &v); err != nil {
		return 0, fmt.Errorf("invalid usb id %q", raw)
	}
	return v, nil
}
