package relabel

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"go.yaml.in/yaml/v3"

	"github.com/autotest-tools/devlabel/internal/category"
)

// Output formats accepted by Report.Render.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Report summarizes a relabel run.
type Report struct {
	Root        string            `json:"root" yaml:"root"`
	Category    category.Category `json:"category" yaml:"category"`
	DryRun      bool              `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	RootMissing bool              `json:"root_missing,omitempty" yaml:"root_missing,omitempty"`
	Discovered  int               `json:"discovered" yaml:"discovered"`
	Relabeled   int               `json:"relabeled" yaml:"relabeled"`
	Changed     int               `json:"changed" yaml:"changed"`
	Entries     int               `json:"entries" yaml:"entries"`
	Skipped     int               `json:"skipped" yaml:"skipped"`
	Failures    []Failure         `json:"failures" yaml:"failures"`
}

// Failure records one file that could not be relabeled.
type Failure struct {
	Path   string `json:"path" yaml:"path"`
	Kind   string `json:"kind" yaml:"kind"`
	Reason string `json:"reason" yaml:"reason"`
	err    error
}

func newFailure(path string, err error) Failure {
	return Failure{Path: path, Kind: kindOf(err), Reason: err.Error(), err: err}
}

// Cause returns the error behind the failure, for use with errors.Is.
func (f Failure) Cause() error { return f.err }

// OK reports whether the run found the root and relabeled every file.
func (r *Report) OK() bool {
	return !r.RootMissing && len(r.Failures) == 0 && r.Skipped == 0
}

// Err folds every failure into a single error, or returns nil when there
// were none.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, f := range r.Failures {
		result = multierror.Append(result, f.err)
	}
	return result.ErrorOrNil()
}

// CheckFormat reports whether format is one Render accepts. The empty string
// means text.
func CheckFormat(format string) error {
	switch format {
	case "", FormatText, FormatJSON, FormatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (use %s, %s, or %s)", format, FormatText, FormatJSON, FormatYAML)
}

// Render writes the report to w in the given format.
func (r *Report) Render(w io.Writer, format string) error {
	switch format {
	case "", FormatText:
		return r.renderText(w)
	case FormatJSON:
		out, err := json.MarshalIndent(r.serializable(), "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r.serializable()); err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
		return enc.Close()
	default:
		return CheckFormat(format)
	}
}

// serializable returns a copy whose Failures is never nil, so encoders emit
// an empty list instead of null.
func (r *Report) serializable() *Report {
	c := *r
	if c.Failures == nil {
		c.Failures = []Failure{}
	}
	return &c
}

func (r *Report) renderText(w io.Writer) error {
	if r.RootMissing {
		_, err := fmt.Fprintf(w, "path:'%s'not exist\n", r.Root)
		return err
	}

	mode := ""
	if r.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "Category: %s (label %q)%s\n", r.Category.Name, r.Category.Tag, mode)
	fmt.Fprintf(w, "Root:     %s\n", r.Root)
	fmt.Fprintf(w, "Files:    %d discovered, %d relabeled, %d changed, %d failed, %d skipped\n",
		r.Discovered, r.Relabeled, r.Changed, len(r.Failures), r.Skipped)

	if len(r.Failures) > 0 {
		fmt.Fprintln(w, "Failures:")
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  [%s] %s\n", f.Kind, f.Path)
			fmt.Fprintf(w, "      %s\n", f.Reason)
		}
	}
	return nil
}
