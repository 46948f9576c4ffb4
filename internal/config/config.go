package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Storage  StorageConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Draw     DrawConfig
	Import   ImportConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver string // "mongodb" or "memory"
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// AdminConfig holds the operator credentials. PasswordHash (bcrypt) wins over Password.
type AdminConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

// DrawConfig holds the fixed drawing parameters and the defaults a reset restores
type DrawConfig struct {
	CapacityLimit  int
	WinnerCount    int
	SequenceLength int
	Alphabet       string
}

// ImportConfig holds settings of the CSV import command
type ImportConfig struct {
	DryRun bool // parse and report without registering
}

const (
	StorageMongoDB = "mongodb"
	StorageMemory  = "memory"
)

// defaultAlphabet mirrors engine.DefaultAlphabet; config does not import the engine.
const defaultAlphabet = "🍎🍊🍌🍇🦁🐘🐒🦋🍓🍍🦊🐻🦉🐠🥭🍐🥝🦓🦒🐅"

// LoadConfig loads configuration from a .env file, an optional config.yaml under
// path, and environment variables, in increasing order of precedence.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Could not load .env file", "error", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"http://localhost:3000"})
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "sequence_draw")
	v.SetDefault("MongoDB.ConnectTimeout", 10*time.Second)
	v.SetDefault("Storage.Driver", StorageMongoDB)
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	v.SetDefault("Admin.Username", "admin")
	v.SetDefault("Admin.Password", "")
	v.SetDefault("Admin.PasswordHash", "")
	v.SetDefault("Draw.CapacityLimit", 10)
	v.SetDefault("Draw.WinnerCount", 1)
	v.SetDefault("Draw.SequenceLength", 5)
	v.SetDefault("Draw.Alphabet", defaultAlphabet)
	v.SetDefault("Import.DryRun", false)
	v.SetDefault("LogLevel", "info")
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("Server.Port is required"))
	}
	switch c.Storage.Driver {
	case StorageMongoDB:
		if c.MongoDB.URI == "" {
			errs = append(errs, errors.New("MongoDB.URI is required for the mongodb driver"))
		}
		if c.MongoDB.Database == "" {
			errs = append(errs, errors.New("MongoDB.Database is required for the mongodb driver"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("Storage.Driver %q is not one of %s, %s", c.Storage.Driver, StorageMongoDB, StorageMemory))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT.Secret is required"))
	}
	if c.JWT.ExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT.ExpiresIn must be positive"))
	}
	if c.Admin.Username == "" {
		errs = append(errs, errors.New("Admin.Username is required"))
	}
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		errs = append(errs, errors.New("one of Admin.Password or Admin.PasswordHash is required"))
	}
	if c.Draw.SequenceLength < 1 {
		errs = append(errs, errors.New("Draw.SequenceLength must be positive"))
	}
	if c.Draw.Alphabet == "" {
		errs = append(errs, errors.New("Draw.Alphabet must not be empty"))
	}
	if c.Draw.CapacityLimit < 1 || c.Draw.WinnerCount < 1 || c.Draw.WinnerCount > c.Draw.CapacityLimit {
		errs = append(errs, fmt.Errorf("Draw defaults need 1 <= WinnerCount (%d) <= CapacityLimit (%d)",
			c.Draw.WinnerCount, c.Draw.CapacityLimit))
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel into a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
