package relabel

import (
	"errors"

	"github.com/autotest-tools/devlabel/internal/manifest"
)

var (
	// ErrPathNotFound is returned when the root directory does not exist.
	ErrPathNotFound = errors.New("path not found")
	// ErrRead marks a manifest or directory that could not be read.
	ErrRead = errors.New("read error")
	// ErrWrite marks a manifest that could not be written back.
	ErrWrite = errors.New("write error")
)

// Failure kinds as they appear in reports.
const (
	KindParse = "parse"
	KindRead  = "read"
	KindWrite = "write"
	KindOther = "other"
)

// kindOf classifies a per-file error for the report.
func kindOf(err error) string {
	switch {
	case errors.Is(err, manifest.ErrParse):
		return KindParse
	case errors.Is(err, ErrWrite):
		return KindWrite
	case errors.Is(err, ErrRead):
		return KindRead
	default:
		return KindOther
	}
}
