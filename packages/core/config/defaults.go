package config

// DefaultHistoryDB is where fetches are recorded unless configured otherwise
const DefaultHistoryDB = "sqlite://.hitget/history.db"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:    30000, // 30 seconds
		Retries:    0,
		RetryDelay: 1000, // 1 second
		Headers:    nil,
		Output:     "console",
		HistoryDB:  DefaultHistoryDB,
		Record:     BoolPtr(false),
		Verbose:    BoolPtr(false),
		NoColor:    BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Timeout == defaults.Timeout &&
		c.Retries == defaults.Retries &&
		c.RetryDelay == defaults.RetryDelay &&
		len(c.Headers) == 0 &&
		c.Output == defaults.Output &&
		c.HistoryDB == defaults.HistoryDB &&
		c.GetRecord() == defaults.GetRecord() &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor()
}
