package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/autotest-tools/devlabel/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognized configuration keys. Each can also be set through the
// environment as DEVLABEL_<KEY>.
const (
	KeyRoot     = "root"
	KeyCategory = "category"
	KeyJobs     = "jobs"
	KeyFailFast = "fail_fast"
	KeyExclude  = "exclude"
)

// Keys lists every recognized key.
var Keys = []string{KeyRoot, KeyCategory, KeyJobs, KeyFailFast, KeyExclude}

// Dir returns the config directory. DEVLABEL_HOME overrides the default
// ~/.devlabel/.
func Dir() string {
	if dir := os.Getenv(branding.EnvVar("home")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyRoot, branding.DefaultRoot())
	viper.SetDefault(KeyJobs, 1)
	viper.SetDefault(KeyFailFast, false)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// GetInt returns a config value as an int.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a config value as a bool.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStringSlice returns a list value. Environment values are split on
// whitespace.
func GetStringSlice(key string) []string {
	return viper.GetStringSlice(key)
}

// IsKnown reports whether key is a recognized configuration key.
func IsKnown(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if !IsKnown(key) {
		return fmt.Errorf("unknown config key %q (known: %v)", key, Keys)
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
