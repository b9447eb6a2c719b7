// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed, so a fork can rename the tool without touching code.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	DefaultRoot string `yaml:"default_root"`
	ManifestExt string `yaml:"manifest_ext"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:     "devlabel",
			DisplayName: "DevLabel",
			Description: "Retag autotest manifests for a target device category",
			HomeDir:     ".devlabel",
			EnvPrefix:   "DEVLABEL",
			DefaultRoot: "testcases",
			ManifestExt: ".json",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "devlabel").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".devlabel").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "DEVLABEL").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// DefaultRoot returns the conventional test-case directory scanned when no
// root is given.
func DefaultRoot() string { load(); return defaults.DefaultRoot }

// ManifestExt returns the file extension that marks a manifest.
func ManifestExt() string { load(); return defaults.ManifestExt }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("category") → "DEVLABEL_CATEGORY".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
