// Package platform provides cross-platform filesystem operations: permission
// management and crash-safe file replacement. On Unix systems it uses chmod
// and rename directly; on Windows permission bits are ignored.
package platform
