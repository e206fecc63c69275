package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ClientConfig names the monitor's own client and port
type ClientConfig struct {
	Name      string `json:"name" yaml:"name"`
	Sequencer string `json:"sequencer,omitempty" yaml:"sequencer,omitempty"`
	PortName  string `json:"portName" yaml:"portName"`
}

// SourceConfig is an address the monitor connects from
type SourceConfig struct {
	Address     string `json:"address" yaml:"address"` // "client:port" or a name fragment
	AutoConnect bool   `json:"autoConnect" yaml:"autoConnect"`
}

// DebugConfig controls the debug log
type DebugConfig struct {
	Enabled bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"` // empty means the default
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette   string `json:"palette,omitempty" yaml:"palette,omitempty"` // GPL file
	MaxEvents int    `json:"maxEvents,omitempty" yaml:"maxEvents,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Client   ClientConfig   `json:"client" yaml:"client"`
	Sources  []SourceConfig `json:"sources,omitempty" yaml:"sources,omitempty"`
	Announce bool           `json:"announce" yaml:"announce"` // follow hot-plug announcements
	Debug    DebugConfig    `json:"debug,omitempty" yaml:"debug,omitempty"`
	UI       UIConfig       `json:"ui,omitempty" yaml:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Name:      "go-alsaseq",
			Sequencer: "default",
			PortName:  "monitor",
		},
		Announce: true,
		UI: UIConfig{
			MaxEvents: 200,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-alsaseq"), nil
}

// ConfigPath returns the config file in use: config.yaml if present,
// else config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads one config file. A missing file yields the defaults;
// fields absent from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, as YAML or JSON by extension
func (c *Config) SaveFile(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// FindSource finds a source config by address
func (c *Config) FindSource(address string) *SourceConfig {
	for i := range c.Sources {
		if c.Sources[i].Address == address {
			return &c.Sources[i]
		}
	}
	return nil
}

// AddSource adds or updates a source config
func (c *Config) AddSource(src SourceConfig) {
	for i := range c.Sources {
		if c.Sources[i].Address == src.Address {
			c.Sources[i] = src
			return
		}
	}
	c.Sources = append(c.Sources, src)
}

// AutoConnectSources returns sources with autoConnect enabled
func (c *Config) AutoConnectSources() []SourceConfig {
	var result []SourceConfig
	for _, src := range c.Sources {
		if src.AutoConnect {
			result = append(result, src)
		}
	}
	return result
}
