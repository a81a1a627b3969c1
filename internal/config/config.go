package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/teemow/larktask/internal/feishu"
	"github.com/teemow/larktask/internal/tools/batch"
)

// EnvPrefix is prepended to every environment variable, e.g. FEISHU_APP_ID.
const EnvPrefix = "FEISHU"

// ErrMissingCredentials is returned by RequireCredentials.
var ErrMissingCredentials = feishu.ErrMissingCredentials

var validate = validator.New()

// Config holds runtime settings. Values come from, in increasing precedence,
// defaults, the config file, FEISHU_* environment variables and flags.
type Config struct {
	AppID     string        `mapstructure:"app_id"`
	AppSecret string        `mapstructure:"app_secret"`
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	UserID    string        `mapstructure:"user_id"`
	Delay     time.Duration `mapstructure:"delay" validate:"gte=0"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	LogLevel  string        `mapstructure:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string        `mapstructure:"log_format" validate:"oneof=text json"`
}

// flagKeys maps config keys to the flag names that override them.
var flagKeys = map[string]string{
	"delay":      "delay",
	"log_level":  "log-level",
	"log_format": "log-format",
	"user_id":    "user-id",
	"base_url":   "base-url",
	"timeout":    "timeout",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", feishu.DefaultBaseURL)
	v.SetDefault("delay", batch.DefaultDelay)
	v.SetDefault("timeout", feishu.DefaultTimeout)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads the configuration. configFile may be empty, in which case
// config.yaml is looked up in the user config directory and is optional.
// flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"app_id", "app_secret", "user_id"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfigFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		return nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	v.AddConfigPath(filepath.Join(dir, "larktask"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Validate checks field formats. Credentials are checked separately by
// RequireCredentials because some commands run without them.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RequireCredentials reports ErrMissingCredentials when the app id or
// secret is unset.
func (c *Config) RequireCredentials() error {
	if c.AppID == "" || c.AppSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Feishu returns the API client settings.
func (c *Config) Feishu() feishu.Config {
	return feishu.Config{
		AppID:     c.AppID,
		AppSecret: c.AppSecret,
		BaseURL:   c.BaseURL,
		Timeout:   c.Timeout,
	}
}

// BatchPolicy returns the pacing for bulk operations.
func (c *Config) BatchPolicy() batch.Policy {
	return batch.Policy{Delay: c.Delay}
}
