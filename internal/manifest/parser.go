package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
)

// ErrParse marks a manifest that is not valid JSON or lacks the expected
// environment structure.
var ErrParse = errors.New("manifest parse error")

const (
	// EnvironmentField is the top-level array of device environments.
	EnvironmentField = "environment"
	// LabelField is the per-environment device category tag.
	LabelField = "label"
	// Indent is the indentation used when a manifest is written back.
	Indent = "    "
)

// level tracks where the rewriter is inside the document.
type level int

const (
	levelRoot level = iota
	levelEnvironment
	levelEntry
	levelOther
)

// Relabel sets the label of every environment entry in data to tag and
// returns the re-serialized document along with the number of entries
// touched. Entries without a label get one appended as their last member.
// Member order, number literals, and non-ASCII text are preserved; the output
// uses 4-space indentation and carries no trailing newline.
func Relabel(data []byte, tag string) ([]byte, int, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if !result.Valid {
		return nil, 0, fmt.Errorf("%w: %s", ErrParse, result.Summary())
	}

	var buf bytes.Buffer
	rw := &rewriter{
		dec: jsontext.NewDecoder(bytes.NewReader(data)),
		enc: jsontext.NewEncoder(&buf,
			jsontext.WithIndent(Indent),
			jsontext.SpaceAfterColon(true),
		),
		tag: tag,
	}

	if err := rw.copyValue(levelRoot); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if _, err := rw.dec.ReadToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), rw.entries, nil
}

// File is a manifest read from disk together with its relabeled content.
type File struct {
	Path      string
	Original  []byte
	Relabeled []byte
	Entries   int
}

// Changed reports whether relabeling altered the file's bytes.
func (f *File) Changed() bool {
	return !bytes.Equal(f.Original, f.Relabeled)
}

// RelabelFile reads the manifest at path and relabels it without writing it
// back. Parse failures wrap ErrParse and name the path.
func RelabelFile(path, tag string) (*File, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	out, n, err := Relabel(data, tag)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &File{Path: path, Original: data, Relabeled: out, Entries: n}, nil
}

// IsManifestFile reports whether name carries the manifest extension.
func IsManifestFile(name, ext string) bool {
	return strings.HasSuffix(name, ext)
}

type rewriter struct {
	dec     *jsontext.Decoder
	enc     *jsontext.Encoder
	tag     string
	entries int
}

// copyValue streams one JSON value from the decoder to the encoder, swapping
// label values when the value is an environment entry.
func (rw *rewriter) copyValue(lvl level) error {
	switch rw.dec.PeekKind() {
	case '{':
		return rw.copyObject(lvl)
	case '[':
		return rw.copyArray(lvl)
	default:
		v, err := rw.dec.ReadValue()
		if err != nil {
			return err
		}
		return rw.enc.WriteValue(v)
	}
}

func (rw *rewriter) copyObject(lvl level) error {
	if err := rw.copyToken(); err != nil {
		return err
	}

	labeled := false
	for rw.dec.PeekKind() != '}' {
		name, err := rw.dec.ReadToken()
		if err != nil {
			return err
		}
		key := name.String()
		if err := rw.enc.WriteToken(name); err != nil {
			return err
		}

		child := levelOther
		switch {
		case lvl == levelRoot && key == EnvironmentField:
			child = levelEnvironment
		case lvl == levelEntry && key == LabelField:
			if err := rw.dec.SkipValue(); err != nil {
				return err
			}
			if err := rw.enc.WriteToken(jsontext.String(rw.tag)); err != nil {
				return err
			}
			labeled = true
			continue
		}

		if err := rw.copyValue(child); err != nil {
			return err
		}
	}

	if lvl == levelEntry {
		if !labeled {
			if err := rw.enc.WriteToken(jsontext.String(LabelField)); err != nil {
				return err
			}
			if err := rw.enc.WriteToken(jsontext.String(rw.tag)); err != nil {
				return err
			}
		}
		rw.entries++
	}

	return rw.copyToken()
}

func (rw *rewriter) copyArray(lvl level) error {
	if err := rw.copyToken(); err != nil {
		return err
	}

	child := levelOther
	if lvl == levelEnvironment {
		child = levelEntry
	}
	for rw.dec.PeekKind() != ']' {
		if err := rw.copyValue(child); err != nil {
			return err
		}
	}

	return rw.copyToken()
}

// copyToken moves a single structural token across.
func (rw *rewriter) copyToken() error {
	tok, err := rw.dec.ReadToken()
	if err != nil {
		return err
	}
	return rw.enc.WriteToken(tok)
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
