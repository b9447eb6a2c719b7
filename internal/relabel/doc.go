// Package relabel retags every manifest under a test-case directory for one
// device category. It walks the tree, rewrites each manifest's environment
// labels, replaces the files in place, and returns a report listing every
// file it could not process.
//
// By default a failing file is recorded and the run continues with the rest;
// Options.FailFast stops at the first failure instead.
package relabel
