package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// REPETIX_SERVER_PORT for server.port.
const EnvPrefix = "REPETIX"

// Options tune where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit config file. When empty, config.yaml in the
	// working directory is used if present.
	ConfigFile string
	// EnvFile is a dotenv file whose variables are exported before reading
	// the environment. Existing variables are never overridden. A missing
	// file is ignored.
	EnvFile string
}

// Load reads configuration from defaults, config.yaml, .env and REPETIX_*
// environment variables, in increasing order of precedence, and validates it.
func Load() (*Config, error) {
	return LoadWithOptions(Options{EnvFile: ".env"})
}

// LoadWithOptions is Load with explicit file locations.
func LoadWithOptions(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.reset_token_lifetime_minutes", 60)
	v.SetDefault("auth.app_base_url", "http://localhost:3000")

	v.SetDefault("llm.provider", ProviderOpenRouter)
	v.SetDefault("llm.openrouter_api_url", "https://openrouter.ai/api/v1/chat/completions")
	v.SetDefault("llm.model_name", "openai/gpt-4o-mini")
	v.SetDefault("llm.request_timeout_seconds", 30)
	v.SetDefault("llm.max_retries", 0)
	v.SetDefault("llm.retry_delay_ms", 1000)
}

// bindEnv registers the keys that have no default so that Unmarshal sees
// them when they only come from the environment.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"database.url",
		"auth.jwt_secret",
		"llm.openrouter_api_key",
		"llm.gemini_api_key",
	} {
		_ = v.BindEnv(key)
	}
}
