package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	Storage  MStorageConfig  `yaml:"storage"`
	Network  MNetworkConfig  `yaml:"network"`
	Provider MProviderConfig `yaml:"provider"`
	Poller   MPollerConfig   `yaml:"poller"`
}

type MStorageConfig struct {
	DBType              string `yaml:"db_type"` // "postgres", "sqlite" or "memory"
	DBPath              string `yaml:"db_path"`
	DBConnectionString  string `yaml:"db_connection_string"`
	PingIntervalSeconds int    `yaml:"ping_interval_seconds"`
}

type MNetworkConfig struct {
	RequestTimeout     int    `yaml:"timeout"`
	ConcurrentRequests int    `yaml:"concurrent_requests"`
	UserAgent          string `yaml:"user_agent"`
}

type MProviderConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type MPollerConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`
}
