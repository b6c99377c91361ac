// Package config loads service configuration from defaults, an optional
// .env file, environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvVarSeparator = "_"
	DotEnvFile      = ".env"
)

// Validator is implemented by every configuration struct.
type Validator interface {
	Validate() error
}

// Load fills cfg. Values come, in decreasing precedence, from flags (when
// given), PREFIX_KEY environment variables, unprefixed KEY environment
// variables, the .env file and finally defaults. Keys are the mapstructure
// tags of cfg.
func Load(envVarPrefix string, cfg, defaults Validator, flags *pflag.FlagSet) error {
	v := viper.New()

	var defaultMap map[string]any
	if err := mapstructure.Decode(defaults, &defaultMap); err != nil {
		return fmt.Errorf("config: decode defaults: %w", err)
	}
	if err := v.MergeConfigMap(defaultMap); err != nil {
		return fmt.Errorf("config: merge defaults: %w", err)
	}

	// Load .env file contents into environment, if it exists
	_ = godotenv.Load(DotEnvFile)

	v.AllowEmptyEnv(false)
	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key, EnvVarName(envVarPrefix, key), EnvVarName("", key)); err != nil {
			return fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return fmt.Errorf("config: bind flags: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unable to decode into struct: %w", err)
	}
	return cfg.Validate()
}

// EnvVarName returns the environment variable read for key.
func EnvVarName(prefix, key string) string {
	name := strings.ToUpper(strings.ReplaceAll(key, ".", EnvVarSeparator))
	if prefix == "" {
		return name
	}
	return strings.ToUpper(prefix) + EnvVarSeparator + name
}
