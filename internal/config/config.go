package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Console ConsoleConfig `mapstructure:"console"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

// StorageConfig names the two record files.
type StorageConfig struct {
	UsersFile string `mapstructure:"users_file" validate:"required"`
	BooksFile string `mapstructure:"books_file" validate:"required"`
}

// ConsoleConfig controls screen clearing and key waits.
type ConsoleConfig struct {
	Interactive bool `mapstructure:"interactive"`
}

// CatalogConfig holds catalog behaviour switches.
type CatalogConfig struct {
	// MonotonicIDs assigns max(id)+1 instead of count+1 to new books.
	MonotonicIDs bool `mapstructure:"monotonic_ids"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format   string `mapstructure:"format" validate:"oneof=console json"`
	Output   string `mapstructure:"output" validate:"oneof=stderr file"`
	Filename string `mapstructure:"filename" validate:"required_if=Output file"`
}

// New returns a viper instance with defaults and environment binding applied.
// Callers may bind flags onto it before passing it to Load.
func New() *viper.Viper {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("library")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// Load reads the optional config file into v and returns the validated result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.users_file", "users.bin")
	v.SetDefault("storage.books_file", "books.bin")

	v.SetDefault("console.interactive", true)

	v.SetDefault("catalog.monotonic_ids", false)

	v.SetDefault("logger.level", "error")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("logger.filename", "")
}

func validateConfig(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	if cfg.Storage.UsersFile == cfg.Storage.BooksFile {
		return fmt.Errorf("users file and books file must differ")
	}
	return nil
}
