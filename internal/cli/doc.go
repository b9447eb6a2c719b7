// Package cli defines the Cobra command tree for the devlabel CLI. Each file
// registers one top-level command (apply, categories, config, version) with the
// root command. Commands delegate to internal packages for the relabeling work
// and only handle flag parsing, output formatting, and user interaction.
package cli
