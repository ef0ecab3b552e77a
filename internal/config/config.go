// Package config loads daemon configuration from a TOML file.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all mantrad configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Delivery DeliveryConfig `toml:"delivery"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

// DatabaseConfig controls SQLite storage.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// CatalogConfig points at the theme directory.
type CatalogConfig struct {
	Dir string `toml:"dir"`
}

// DeliveryConfig controls the tick loop and outbound notifications.
type DeliveryConfig struct {
	TickSeconds int    `toml:"tick_seconds"`
	WebhookURL  string `toml:"webhook_url"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	home := mantradHome()
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37711,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(home, "mantrad.db"),
		},
		Catalog: CatalogConfig{
			Dir: filepath.Join(home, "themes"),
		},
		Delivery: DeliveryConfig{
			TickSeconds: 30,
		},
	}
}

// Load reads the first config file found on the standard paths, falling
// back to defaults. An out-of-range tick interval heals to the default
// rather than stalling or spinning the delivery loop.
func Load() (Config, error) {
	cfg := Default()

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if _, err := toml.DecodeFile(p, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", p, err)
		}
		break
	}

	if cfg.Delivery.TickSeconds < 1 || cfg.Delivery.TickSeconds > 3600 {
		log.Printf("config: tick_seconds %d out of range, using %d",
			cfg.Delivery.TickSeconds, Default().Delivery.TickSeconds)
		cfg.Delivery.TickSeconds = Default().Delivery.TickSeconds
	}
	return cfg, nil
}

// Addr returns the host:port the API server listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

func configPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "mantrad", "config.toml"))
	}
	if home, _ := os.UserHomeDir(); home != "" {
		paths = append(paths, filepath.Join(home, ".config", "mantrad", "config.toml"))
	}
	paths = append(paths, filepath.Join(mantradHome(), "config.toml"))
	return paths
}

func mantradHome() string {
	if dir := os.Getenv("MANTRAD_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mantrad"
	}
	return filepath.Join(home, ".mantrad")
}
