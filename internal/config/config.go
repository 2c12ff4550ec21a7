// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`
	Brand       string   `mapstructure:"brand"`
	Timezone    string   `mapstructure:"timezone"`

	// File paths
	DatabasePath string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings
	RosterPath   string `mapstructure:"rosterpath"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseMaxOpenConns int `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int `mapstructure:"dbmaxidleconns"`

	// HTTP API settings. The key is stored as a bcrypt hash; an empty
	// hash disables the query endpoint in production.
	APIKeyHash string `mapstructure:"apikeyhash"`

	// Matching thresholds. These were tuned against real query logs;
	// override only with a measured reason.
	FuzzyThreshold      float64 `mapstructure:"fuzzythreshold"`
	ContainsScoreFloor  float64 `mapstructure:"containsscorefloor"`
	EntityScoreFloor    float64 `mapstructure:"entityscorefloor"`
	SingleMatchScore    float64 `mapstructure:"singlematchscore"`
	SingleMatchMargin   float64 `mapstructure:"singlematchmargin"`
	WordRetryThreshold  float64 `mapstructure:"wordretrythreshold"`
	MaxMatchCandidates  int     `mapstructure:"maxmatchcandidates"`
	CandidateFetchLimit int     `mapstructure:"candidatefetchlimit"`

	// Reporting defaults
	DefaultRowLimit int `mapstructure:"defaultrowlimit"`
	MaxTableRows    int `mapstructure:"maxtablerows"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		// Set defaults
		v.SetDefault("appname", "raporbot")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("brand", "vatan")
		v.SetDefault("timezone", "Europe/Istanbul")
		v.SetDefault("storagepath", "storage")
		v.SetDefault("rosterpath", "storage/roster.csv")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("fuzzythreshold", 0.6)
		v.SetDefault("containsscorefloor", 0.7)
		v.SetDefault("entityscorefloor", 0.5)
		v.SetDefault("singlematchscore", 0.85)
		v.SetDefault("singlematchmargin", 0.15)
		v.SetDefault("wordretrythreshold", 0.5)
		v.SetDefault("maxmatchcandidates", 5)
		v.SetDefault("candidatefetchlimit", 1000)
		v.SetDefault("defaultrowlimit", 10)
		v.SetDefault("maxtablerows", 20)

		// Bind environment variables
		v.BindEnv("appname", "RAPORBOT_APP_NAME")
		v.BindEnv("appport", "RAPORBOT_APP_PORT")
		v.BindEnv("environment", "RAPORBOT_ENV")
		v.BindEnv("loglevel", "RAPORBOT_LOG_LEVEL")
		v.BindEnv("brand", "RAPORBOT_BRAND")
		v.BindEnv("timezone", "RAPORBOT_TIMEZONE")
		v.BindEnv("storagepath", "RAPORBOT_STORAGE_PATH")
		v.BindEnv("rosterpath", "RAPORBOT_ROSTER_PATH")
		v.BindEnv("logsdir", "RAPORBOT_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "RAPORBOT_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "RAPORBOT_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "RAPORBOT_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbmaxopenconns", "RAPORBOT_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "RAPORBOT_DB_MAX_IDLE_CONNS")
		v.BindEnv("apikeyhash", "RAPORBOT_API_KEY_HASH")
		v.BindEnv("fuzzythreshold", "RAPORBOT_FUZZY_THRESHOLD")
		v.BindEnv("containsscorefloor", "RAPORBOT_CONTAINS_SCORE_FLOOR")
		v.BindEnv("entityscorefloor", "RAPORBOT_ENTITY_SCORE_FLOOR")
		v.BindEnv("singlematchscore", "RAPORBOT_SINGLE_MATCH_SCORE")
		v.BindEnv("singlematchmargin", "RAPORBOT_SINGLE_MATCH_MARGIN")
		v.BindEnv("wordretrythreshold", "RAPORBOT_WORD_RETRY_THRESHOLD")
		v.BindEnv("maxmatchcandidates", "RAPORBOT_MAX_MATCH_CANDIDATES")
		v.BindEnv("candidatefetchlimit", "RAPORBOT_CANDIDATE_FETCH_LIMIT")
		v.BindEnv("defaultrowlimit", "RAPORBOT_DEFAULT_ROW_LIMIT")
		v.BindEnv("maxtablerows", "RAPORBOT_MAX_TABLE_ROWS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		cfg.DatabaseName = cfg.GetDatabasePath()
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzythreshold must be in (0, 1]: %v", c.FuzzyThreshold)
	}
	if c.SingleMatchScore <= 0 || c.SingleMatchScore > 1 {
		return fmt.Errorf("singlematchscore must be in (0, 1]: %v", c.SingleMatchScore)
	}
	if c.MaxMatchCandidates < 1 {
		return fmt.Errorf("maxmatchcandidates must be positive: %d", c.MaxMatchCandidates)
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
