package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the hitget configuration
type Config struct {
	Timeout    int               `json:"timeout,omitempty" yaml:"timeout,omitempty"`       // milliseconds
	Retries    int               `json:"retries,omitempty" yaml:"retries,omitempty"`       // extra connect attempts
	RetryDelay int               `json:"retryDelay,omitempty" yaml:"retryDelay,omitempty"` // milliseconds
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`       // Extra request headers
	Output     string            `json:"output,omitempty" yaml:"output,omitempty"`         // console or json
	HistoryDB  string            `json:"historyDB,omitempty" yaml:"historyDB,omitempty"`   // e.g. sqlite://.hitget/history.db
	Record     *bool             `json:"record,omitempty" yaml:"record,omitempty"`
	Verbose    *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	NoColor    *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetRecord returns whether fetches are written to history, defaulting to false
func (c *Config) GetRecord() bool {
	return getBool(c.Record, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

func (c *Config) RetryDelayDuration() time.Duration {
	return time.Duration(c.RetryDelay) * time.Millisecond
}

// ConfigFilenames contains the possible config file names, in search order
var ConfigFilenames = []string{
	".hitget.yaml",
	".hitget.yml",
	"hitget.yaml",
	".hitget.json",
	"hitget.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file. The format
// follows the extension; anything not ending in .json is read as YAML.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if isJSON(path) {
		err = json.Unmarshal(data, config)
	} else {
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retryDelay must not be negative")
	}
	switch c.Output {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown output %q (expected console or json)", c.Output)
	}
	for name, value := range c.Headers {
		if err := ValidateHeader(name, value); err != nil {
			return err
		}
	}
	return nil
}

// ValidateHeader rejects header fields that would break the request head:
// an empty name, a name holding ':' or whitespace, or a line break anywhere.
func ValidateHeader(name, value string) error {
	if name == "" || strings.ContainsAny(name, ": \t\r\n") {
		return fmt.Errorf("invalid header name %q", name)
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("header %s: value must not contain line breaks", name)
	}
	return nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.Retries > 0 {
		result.Retries = other.Retries
	}
	if other.RetryDelay > 0 {
		result.RetryDelay = other.RetryDelay
	}
	if other.Output != "" {
		result.Output = other.Output
	}
	if other.HistoryDB != "" {
		result.HistoryDB = other.HistoryDB
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Record != nil {
		result.Record = other.Record
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	// Merge headers
	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// SaveConfig saves the configuration to a file, as JSON or YAML by extension
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
