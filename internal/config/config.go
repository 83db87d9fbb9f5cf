// Package config loads the application's JSON configuration file, creating
// one with defaults on first run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all tunables for the server and the monitor.
type Config struct {
	ListenAddr      string  `json:"listen_addr"`
	DataDir         string  `json:"data_dir"`
	LogFile         string  `json:"log_file"`
	MonitorInterval int     `json:"monitor_interval_seconds"`
	AlertCooldown   int     `json:"alert_cooldown_seconds"`
	CPUThreshold    float64 `json:"cpu_threshold"`
	MemoryThreshold float64 `json:"memory_threshold"`
	DiskThreshold   float64 `json:"disk_threshold"`
	SessionTTLHours int     `json:"session_ttl_hours"`
	RateLimitRPS    float64 `json:"rate_limit_rps"`
	RateLimitBurst  int     `json:"rate_limit_burst"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:      ":5000",
		DataDir:         "data",
		LogFile:         "eassist.log",
		MonitorInterval: 2,
		AlertCooldown:   60,
		CPUThreshold:    80,
		MemoryThreshold: 85,
		DiskThreshold:   90,
		SessionTTLHours: 24,
		RateLimitRPS:    20,
		RateLimitBurst:  40,
	}
}

// Load reads the config at path. A missing file is created with defaults so
// operators have something to edit.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.applyBounds()
	return cfg, nil
}

// Save writes the config as indented JSON via a temp file rename.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// applyBounds clamps nonsensical values back to defaults rather than
// refusing to start.
func (c *Config) applyBounds() {
	def := Default()
	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.MonitorInterval < 1 {
		c.MonitorInterval = def.MonitorInterval
	}
	if c.AlertCooldown < 0 {
		c.AlertCooldown = def.AlertCooldown
	}
	if c.SessionTTLHours < 1 {
		c.SessionTTLHours = def.SessionTTLHours
	}
	if c.RateLimitRPS <= 0 {
		c.RateLimitRPS = def.RateLimitRPS
	}
	if c.RateLimitBurst < 1 {
		c.RateLimitBurst = def.RateLimitBurst
	}
	for _, t := range []*float64{&c.CPUThreshold, &c.MemoryThreshold, &c.DiskThreshold} {
		if *t <= 0 || *t > 100 {
			*t = 0
		}
	}
	if c.CPUThreshold == 0 {
		c.CPUThreshold = def.CPUThreshold
	}
	if c.MemoryThreshold == 0 {
		c.MemoryThreshold = def.MemoryThreshold
	}
	if c.DiskThreshold == 0 {
		c.DiskThreshold = def.DiskThreshold
	}
}

// Interval returns the monitor tick interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.MonitorInterval) * time.Second
}

// Cooldown returns the alert cooldown as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.AlertCooldown) * time.Second
}

// SessionTTL returns the session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}
