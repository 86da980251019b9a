package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const pluginDir = "IMDb+"

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Paths         PathsConfig         `mapstructure:"paths"`
	Sync          SyncConfig          `mapstructure:"sync"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Language      string              `mapstructure:"language"`

	// File is the config file that was read, empty when running on defaults.
	File string `mapstructure:"-"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// PathsConfig holds the locations shared with the scraper script.
type PathsConfig struct {
	ConfigDir   string `mapstructure:"config_dir"`
	LanguageDir string `mapstructure:"language_dir"`
	DataDir     string `mapstructure:"data_dir"`
}

// SyncConfig holds the update synchronizer configuration.
type SyncConfig struct {
	ScraperURL      string        `mapstructure:"scraper_url"`
	ReplacementsURL string        `mapstructure:"replacements_url"`
	IntervalHours   int           `mapstructure:"interval_hours"`
	OnStartup       bool          `mapstructure:"on_startup"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
	DebugMode       bool          `mapstructure:"debug_mode"`
}

// NotificationsConfig controls user-facing completion notices.
type NotificationsConfig struct {
	Disabled bool `mapstructure:"disabled"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 31415,
		},
		Database: DatabaseConfig{
			Path: "./data/imdbplus.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			Path:       "./data/logs",
			MaxSizeMB:  10,
			MaxBackups: 1,
			MaxAgeDays: 30,
		},
		Paths: PathsConfig{
			ConfigDir:   "./data/config",
			LanguageDir: "./data/language/IMDb+",
			DataDir:     "./data",
		},
		Sync: SyncConfig{
			ScraperURL:      "http://imdbplus.googlecode.com/svn/trunk/Scraper/IMDb+.Scraper.SVN.xml",
			ReplacementsURL: "http://imdbplus.googlecode.com/svn/trunk/Rename%20dBase%20IMDb+%20Scraper.xml",
			IntervalHours:   24,
			StartupDelay:    3 * time.Second,
		},
		Language: "en",
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	// a missing .env is the normal case
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./data")
		v.AddConfigPath("$HOME/.imdbplus")
	}

	v.SetEnvPrefix("IMDBPLUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if cfg.Sync.IntervalHours <= 0 {
		cfg.Sync.IntervalHours = Default().Sync.IntervalHours
	}
	if cfg.Sync.StartupDelay <= 0 {
		cfg.Sync.StartupDelay = Default().Sync.StartupDelay
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", d.Logging.Path)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", d.Logging.Compress)

	v.SetDefault("paths.config_dir", d.Paths.ConfigDir)
	v.SetDefault("paths.language_dir", d.Paths.LanguageDir)
	v.SetDefault("paths.data_dir", d.Paths.DataDir)

	v.SetDefault("sync.scraper_url", d.Sync.ScraperURL)
	v.SetDefault("sync.replacements_url", d.Sync.ReplacementsURL)
	v.SetDefault("sync.interval_hours", d.Sync.IntervalHours)
	v.SetDefault("sync.on_startup", d.Sync.OnStartup)
	v.SetDefault("sync.startup_delay", d.Sync.StartupDelay)
	v.SetDefault("sync.debug_mode", d.Sync.DebugMode)

	v.SetDefault("notifications.disabled", d.Notifications.Disabled)
	v.SetDefault("language", d.Language)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Interval returns the sync interval as a duration.
func (c *SyncConfig) Interval() time.Duration {
	return time.Duration(c.IntervalHours) * time.Hour
}

// OptionsFile is the options document read by the scraper script.
func (c *PathsConfig) OptionsFile() string {
	return filepath.Join(c.ConfigDir, pluginDir, "Options IMDb+ Scraper.xml")
}

// ReplacementsFile is the distributable rename database.
func (c *PathsConfig) ReplacementsFile() string {
	return filepath.Join(c.ConfigDir, pluginDir, "Rename dBase IMDb+ Scraper.xml")
}

// CustomReplacementsFile is the user-authored rename database.
func (c *PathsConfig) CustomReplacementsFile() string {
	return filepath.Join(c.ConfigDir, pluginDir, "Rename dBase IMDb+ Scraper (Custom).xml")
}
