package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the RoboHome switcher.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Weather  WeatherConfig  `yaml:"weather"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// Timezone decides what "today" means for the flip schedule.
	// IANA name, e.g. "America/Chicago". "Local" uses the host zone.
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ScheduleConfig controls the flip scheduler.
type ScheduleConfig struct {
	// TickInterval is how often due flips are checked.
	// Default: 1m
	TickInterval time.Duration `yaml:"tick_interval"`

	// RefreshTopic carries "update" notifications when stored flips change.
	// Default: "robohome/switches/refresh"
	RefreshTopic string `yaml:"refresh_topic"`

	// CommandTopicPrefix is the base for toggle commands; the remote ID is
	// appended as the last topic level.
	// Default: "robohome/switches"
	CommandTopicPrefix string `yaml:"command_topic_prefix"`
}

// WeatherConfig contains the sun phase service settings used by the daily job.
type WeatherConfig struct {
	URL string `yaml:"url"`

	// Attempts is the total number of requests made before giving up.
	// Default: 3
	Attempts int `yaml:"attempts"`

	// RetryDelay is multiplied by the attempt number before each retry.
	// Default: 30s
	RetryDelay time.Duration `yaml:"retry_delay"`

	// Timeout bounds a single request.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: ROBOHOME_SECTION_KEY
// For example: ROBOHOME_DATABASE_PATH, ROBOHOME_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "home",
			Name:     "RoboHome",
			Timezone: "Local",
		},
		Database: DatabaseConfig{
			Path:        "./data/robohome.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "robohome-switcher",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Schedule: ScheduleConfig{
			TickInterval:       time.Minute,
			RefreshTopic:       "robohome/switches/refresh",
			CommandTopicPrefix: "robohome/switches",
		},
		Weather: WeatherConfig{
			Attempts:   3,
			RetryDelay: 30 * time.Second,
			Timeout:    10 * time.Second,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: ROBOHOME_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ROBOHOME_SITE_TIMEZONE"); v != "" {
		cfg.Site.Timezone = v
	}

	if v := os.Getenv("ROBOHOME_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("ROBOHOME_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("ROBOHOME_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("ROBOHOME_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("ROBOHOME_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// The weather URL usually embeds an API key.
	if v := os.Getenv("ROBOHOME_WEATHER_URL"); v != "" {
		cfg.Weather.URL = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("site.timezone %q is not a known zone", c.Site.Timezone))
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if c.Schedule.TickInterval <= 0 {
		errs = append(errs, "schedule.tick_interval must be positive")
	}
	if c.Schedule.RefreshTopic == "" {
		errs = append(errs, "schedule.refresh_topic is required")
	}
	if c.Schedule.CommandTopicPrefix == "" {
		errs = append(errs, "schedule.command_topic_prefix is required")
	}

	if c.Weather.Attempts < 1 {
		errs = append(errs, "weather.attempts must be at least 1")
	}
	if c.Weather.RetryDelay < 0 {
		errs = append(errs, "weather.retry_delay must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Location returns the site's time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Site.Timezone == "" || strings.EqualFold(c.Site.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Site.Timezone)
}
