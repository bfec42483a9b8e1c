// Package daemon wires ebphd's components together and manages its
// lifecycle: config load, registry/eventbus/persistence/settings setup,
// the event-source dispatch loop, the HTTP control surface, and the
// periodic save tick.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	Node    NodeConfig    `toml:"node"`
	API     APIConfig     `toml:"api"`
	Engine  EngineConfig  `toml:"engine"`
	Store   StoreConfig   `toml:"store"`
	Logging LoggingConfig `toml:"logging"`
}

// NodeConfig identifies this host.
type NodeConfig struct {
	Hostname string `toml:"hostname"`
}

// APIConfig controls the HTTP control surface.
type APIConfig struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	Prometheus bool   `toml:"prometheus"`
}

// EngineConfig sizes the anomaly engine and its tunable defaults
// (spec.md §3 GLOSSARY: C the call-space size, W the window size, L the
// locality-frame length; spec.md §6 tunables).
type EngineConfig struct {
	CallSpace       int    `toml:"call_space"`
	Window          int    `toml:"window"`
	LocalityFrame   int    `toml:"locality_frame"`
	EventBusBuffer  int    `toml:"event_bus_buffer"`
	Monitoring      bool   `toml:"monitoring"`
	Enforcing       bool   `toml:"enforcing"`
	NormalWait      uint64 `toml:"normal_wait"`
	NormalFactor    uint64 `toml:"normal_factor"`
	NormalFactorDen uint64 `toml:"normal_factor_den"`
	AnomalyLimit    uint64 `toml:"anomaly_limit"`
	TolerizeLimit   uint64 `toml:"tolerize_limit"`
	LogSequences    bool   `toml:"log_sequences"`
}

// StoreConfig controls profile persistence.
type StoreConfig struct {
	Dir          string `toml:"dir"`
	SaveInterval string `toml:"save_interval"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration; its engine
// tunables match settings.Default.
func DefaultConfig() Config {
	home := ebphHome()
	hostname, _ := os.Hostname()
	return Config{
		Node: NodeConfig{Hostname: hostname},
		API: APIConfig{
			Host:       "127.0.0.1",
			Port:       8666,
			Prometheus: true,
		},
		Engine: EngineConfig{
			CallSpace:       512,
			Window:          9,
			LocalityFrame:   128,
			EventBusBuffer:  4096,
			Monitoring:      true,
			Enforcing:       false,
			NormalWait:      128 * 4,
			NormalFactor:    3,
			NormalFactorDen: 4,
			AnomalyLimit:    30,
			TolerizeLimit:   12,
			LogSequences:    false,
		},
		Store: StoreConfig{
			Dir:          filepath.Join(home, "profiles"),
			SaveInterval: "30s",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(home, "ebphd.log"),
		},
	}
}

// LoadConfig reads config from ~/.ebph/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(ebphHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to ~/.ebph/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(ebphHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func ebphHome() string {
	if env := os.Getenv("EBPH_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ebph")
}

// EbphHome is exported for use by other packages (the CLI's direct-store
// subcommands need it to find the data directory without starting a
// daemon).
func EbphHome() string {
	return ebphHome()
}
