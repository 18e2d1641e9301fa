// Package config layers archive engine settings from a project config file,
// a user config file, and environment variables, in that precedence order,
// using Viper. Grounded on the teacher's internal/config/config.go layering
// pattern, with goldenthread's own key set and GT_ prefix.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var v *viper.Viper

// debugEnabled gates Logf; set via GT_DEBUG=1, mirroring the teacher's
// internal/debug package without carrying its dependency.
var debugEnabled = os.Getenv("GT_DEBUG") != ""

// Logf writes a debug line to stderr when GT_DEBUG is set.
func Logf(format string, args ...interface{}) {
	if debugEnabled {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Initialize sets up the Viper configuration singleton. Should be called
// once at application startup.
//
// Precedence (highest to lowest): GT_-prefixed environment variables,
// config file, built-in defaults. The config file is located by checking,
// in order: a project .goldenthread/config.yaml found by walking up from
// the working directory, ~/.config/goldenthread/config.yaml, and
// ~/.goldenthread/config.yaml.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	configFileSet := false

	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			configPath := filepath.Join(dir, ".goldenthread", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
				break
			}
		}
	}

	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "goldenthread", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	if !configFileSet {
		if homeDir, err := os.UserHomeDir(); err == nil {
			configPath := filepath.Join(homeDir, ".goldenthread", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	v.SetEnvPrefix("GT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		Logf("Debug: loaded config from %s\n", v.ConfigFileUsed())
	} else {
		Logf("Debug: no config.yaml found; using defaults and environment variables\n")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Archive location and locking.
	v.SetDefault("archive-path", "")
	v.SetDefault("lock-timeout", "5s")

	// Attachment AEAD container tuning.
	v.SetDefault("aead.default-chunk-size", 1<<20)
	v.SetDefault("aead.large-chunk-size", 4<<20)
	v.SetDefault("aead.parallel-decrypt-threshold", 10<<20)
	v.SetDefault("aead.parallel-workers", 4)

	// Import pipeline tuning.
	v.SetDefault("import.attachment-workers", 4)
	v.SetDefault("import.temp-dir", "")
	v.SetDefault("import.decoder-binary", "signalbackup")

	// Media preview cache.
	v.SetDefault("media-cache.max-entries", 20)
	v.SetDefault("media-cache.ttl", "5m")

	// Diagnostics log rotation.
	v.SetDefault("diagnostics.dir", "")
	v.SetDefault("diagnostics.max-size-mb", 2)
	v.SetDefault("diagnostics.max-backups", 3)

	v.SetDefault("json", false)
}

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault    ConfigSource = "default"
	SourceConfigFile ConfigSource = "config_file"
	SourceEnvVar     ConfigSource = "env_var"
	SourceFlag       ConfigSource = "flag"
)

// GetValueSource reports the source of a configuration value. Priority
// (highest to lowest): env var > config file > default. Flag overrides are
// handled by the caller since Viper doesn't know about Cobra flags.
func GetValueSource(key string) ConfigSource {
	if v == nil {
		return SourceDefault
	}
	envKey := "GT_" + strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(key, "-", "_"), ".", "_"))
	if os.Getenv(envKey) != "" {
		return SourceEnvVar
	}
	if v.InConfig(key) {
		return SourceConfigFile
	}
	return SourceDefault
}

// GetString retrieves a string configuration value.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt retrieves an integer configuration value.
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration retrieves a duration configuration value.
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set overrides a configuration value at runtime (used by flag binding).
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// AllSettings returns all configuration settings as a map.
func AllSettings() map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}

// WatchConfig starts watching the active config file (if one was found by
// Initialize) for edits via fsnotify, invoking onChange after each reload.
// A no-op if no config file is in use. Intended for long-lived host
// processes that want to pick up config edits without restarting; the CLI
// itself does not call this.
func WatchConfig(onChange func()) {
	if v == nil || v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(_ fsnotify.Event) {
		Logf("Debug: config file changed, reloaded from %s\n", v.ConfigFileUsed())
		if onChange != nil {
			onChange()
		}
	})
	v.WatchConfig()
}
