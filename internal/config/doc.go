// Package config manages user-level settings stored at ~/.devlabel/config.yaml
// and DEVLABEL_* environment variables: the default test-case root, a default
// category selector, and worker/exclusion preferences for relabel runs.
package config
