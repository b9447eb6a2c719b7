package relabel

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar"

	"github.com/autotest-tools/devlabel/internal/manifest"
)

// Discover walks root and returns every manifest file beneath it, sorted
// lexicographically. A symlinked root is followed; links below it are not
// descended into. Returned paths keep root as their prefix. Paths matching an
// exclude pattern (relative to root, slash-separated) are skipped; an excluded
// directory is not descended into. Entries that cannot be read are returned as
// failures rather than dropped.
func Discover(root string, opts Options) ([]string, []Failure) {
	opts = opts.withDefaults()

	var paths []string
	var failures []Failure

	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		err = fmt.Errorf("%w: resolving %s: %v", ErrRead, root, err)
		return nil, []Failure{newFailure(root, err)}
	}

	// under maps a path in the resolved tree back under root.
	under := func(p string) string {
		rel, err := filepath.Rel(walkRoot, p)
		if err != nil || rel == "." {
			return root
		}
		return filepath.Join(root, rel)
	}

	err = filepath.WalkDir(walkRoot, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			err := fmt.Errorf("%w: %s: %v", ErrRead, under(path), walkErr)
			failures = append(failures, newFailure(under(path), err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path != walkRoot && excluded(walkRoot, path, opts.Exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if manifest.IsManifestFile(d.Name(), opts.Extension) {
			paths = append(paths, under(path))
		}
		return nil
	})
	if err != nil {
		failures = append(failures, newFailure(root, fmt.Errorf("%w: walking %s: %v", ErrRead, root, err)))
	}

	sort.Strings(paths)
	return paths, failures
}

// excluded reports whether path matches any exclude pattern.
func excluded(root, path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// validatePatterns rejects malformed exclude globs before any file I/O.
// doublestar only reports a bad pattern once matching reaches the broken
// segment, so the syntax check uses path.Match, which scans the whole pattern.
func validatePatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
	}
	return nil
}
