package relabel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/autotest-tools/devlabel/internal/category"
	"github.com/autotest-tools/devlabel/internal/manifest"
	"github.com/autotest-tools/devlabel/internal/platform"
)

// DefaultExtension marks manifest files when Options.Extension is empty.
const DefaultExtension = ".json"

// Options tunes a relabel run. The zero value processes every .json file
// sequentially, collects failures, and writes results.
type Options struct {
	Extension string      // manifest file suffix; defaults to ".json"
	Exclude   []string    // doublestar patterns relative to root
	Jobs      int         // concurrent files; values below 1 mean 1
	FailFast  bool        // stop scheduling files after the first failure
	DryRun    bool        // compute results without writing
	Logger    *zap.Logger // nil disables logging
}

func (o Options) withDefaults() Options {
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	if o.Jobs < 1 {
		o.Jobs = 1
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// fileResult is the outcome of one manifest's read-modify-write cycle.
type fileResult struct {
	entries int
	changed bool
	skipped bool
	err     error
}

// Run sets the label of every environment entry in every manifest under root
// to cat's tag. A missing root ends the run before any other I/O with an
// error wrapping ErrPathNotFound and a report whose RootMissing is set.
// Per-file failures do not make Run return an error; they are listed in the
// report, and Report.Err folds them together.
func Run(ctx context.Context, root string, cat category.Category, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	log := opts.Logger.With(zap.String("root", root), zap.String("tag", cat.Tag))
	report := &Report{Root: root, Category: cat, DryRun: opts.DryRun}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			report.RootMissing = true
			return report, fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return report, fmt.Errorf("%w: %s: %v", ErrRead, root, err)
	}
	if !info.IsDir() {
		report.RootMissing = true
		return report, fmt.Errorf("%w: %s is not a directory", ErrPathNotFound, root)
	}

	if err := validatePatterns(opts.Exclude); err != nil {
		return report, err
	}

	paths, walkFailures := Discover(root, opts)
	report.Discovered = len(paths)
	report.Failures = append(report.Failures, walkFailures...)
	log.Debug("discovered manifests", zap.Int("count", len(paths)), zap.Int("jobs", opts.Jobs))

	if opts.FailFast && len(walkFailures) > 0 {
		report.Skipped = len(paths)
		return report, nil
	}

	results := make([]fileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)
	for i, path := range paths {
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = fileResult{skipped: true}
				return nil
			}
			results[i] = processFile(path, cat.Tag, opts)
			if results[i].err != nil {
				log.Warn("manifest failed", zap.String("path", path), zap.Error(results[i].err))
				if opts.FailFast {
					return results[i].err
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, res := range results {
		switch {
		case res.skipped:
			report.Skipped++
		case res.err != nil:
			report.Failures = append(report.Failures, newFailure(paths[i], res.err))
		default:
			report.Relabeled++
			report.Entries += res.entries
			if res.changed {
				report.Changed++
			}
		}
	}

	log.Debug("relabel finished",
		zap.Int("relabeled", report.Relabeled),
		zap.Int("changed", report.Changed),
		zap.Int("failed", len(report.Failures)),
		zap.Int("skipped", report.Skipped),
	)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("relabel interrupted: %w", err)
	}
	return report, nil
}

// replaceFile commits a relabeled manifest to disk.
var replaceFile = platform.ReplaceFile

// processFile relabels a single manifest and writes it back if its content
// changed. Symlinked manifests are written through to their target.
func processFile(path, tag string, opts Options) fileResult {
	f, err := manifest.RelabelFile(path, tag)
	if err != nil {
		if errors.Is(err, manifest.ErrParse) {
			return fileResult{err: err}
		}
		return fileResult{err: fmt.Errorf("%w: %v", ErrRead, err)}
	}

	if !f.Changed() {
		opts.Logger.Debug("manifest already labeled", zap.String("path", path))
		return fileResult{entries: f.Entries}
	}
	if opts.DryRun {
		opts.Logger.Debug("would relabel manifest", zap.String("path", path), zap.Int("entries", f.Entries))
		return fileResult{entries: f.Entries, changed: true}
	}

	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fileResult{err: fmt.Errorf("%w: resolving %s: %v", ErrWrite, path, err)}
	}
	if err := replaceFile(target, f.Relabeled, 0644); err != nil {
		return fileResult{err: fmt.Errorf("%w: %v", ErrWrite, err)}
	}

	opts.Logger.Debug("relabeled manifest", zap.String("path", path), zap.Int("entries", f.Entries))
	return fileResult{entries: f.Entries, changed: true}
}
