package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "imagedepot.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "imagedepot.yml"

// EnvPrefix is the prefix for environment variable overrides.
// A double underscore separates nesting levels, so
// IMAGEDEPOT_DATABASE__PASSWORD maps to database.password.
const EnvPrefix = "IMAGEDEPOT_"

// configFileUsed tracks the config file found during the last Load.
var configFileUsed string

// flagKeys maps CLI flag names to config keys. Flags not listed here map
// to themselves (kebab-case converted to snake_case).
var flagKeys = map[string]string{
	"port":       "http.port",
	"static-dir": "http.static_dir",
	"bucket":     "s3.bucket",
	"region":     "s3.region",
	"endpoint":   "s3.endpoint",
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// cfgFile may be empty, in which case imagedepot.yaml / imagedepot.yml in
// the working directory is used if present.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"http.port":            DefaultPort,
		"s3.region":            DefaultRegion,
		"s3.presign_ttl":       DefaultPresignTTL.String(),
		"webhook.max_attempts": DefaultWebhookTries,
		"thumbnails.enabled":   true,
		"thumbnails.max_edge":  DefaultThumbMaxEdge,
		"thumbnails.quality":   DefaultThumbQuality,
		"verbose":              false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables (IMAGEDEPOT_ prefix)
	// Transform: IMAGEDEPOT_HTTP__PORT -> http.port
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			if key, ok := flagKeys[f.Name]; ok {
				return key, posflag.FlagVal(flags, f)
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	ApplyDefaults(&cfg)
	expandSecretEnvVars(&cfg)

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// findConfigFile finds the config file to use.
// Priority: explicit path > imagedepot.yaml > imagedepot.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if _, err := os.Stat(ConfigFileNameAlt); err == nil {
		return ConfigFileNameAlt
	}
	return ""
}

// expandEnvVars expands ${VAR} patterns in a string with environment
// variable values. Unknown variables are left untouched.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// expandSecretEnvVars expands environment variables in sensitive fields.
func expandSecretEnvVars(c *Config) {
	if c.Database != nil {
		c.Database.User = expandEnvVars(c.Database.User)
		c.Database.Password = expandEnvVars(c.Database.Password)
		c.Database.Host = expandEnvVars(c.Database.Host)
	}
	c.Webhook.Secret = expandEnvVars(c.Webhook.Secret)
}
