package plan

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEntryNotFound indicates the entry path is empty or does not name a regular file
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidOutDir indicates the output directory is empty
	ErrInvalidOutDir = errors.New("invalid output directory")
	// ErrNoFormats indicates no output formats were requested
	ErrNoFormats = errors.New("no output formats")
	// ErrUnsupportedFormat indicates a format tag outside the recognized set
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrDuplicateFormat indicates a format was requested more than once
	ErrDuplicateFormat = errors.New("duplicate format")
	// ErrInvalidLibraryName indicates the library name is empty or contains a path separator
	ErrInvalidLibraryName = errors.New("invalid library name")
	// ErrInvalidExtraOptions indicates the bundler passthrough options are not a mapping
	ErrInvalidExtraOptions = errors.New("invalid extra bundler options")
	// ErrUnsafeFileName indicates a templated file name would escape the output directory
	ErrUnsafeFileName = errors.New("unsafe file name")
	// ErrNameCollision indicates two formats resolve to the same output path
	ErrNameCollision = errors.New("name collision")
)

// ConfigError is returned by every failed resolution. Kind is one of the
// sentinel errors above; the remaining fields carry the offending values.
type ConfigError struct {
	Kind    error
	Value   string
	Path    string
	Formats []Format
	Err     error
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())

	switch {
	case e.Kind == ErrNameCollision && len(e.Formats) == 2:
		fmt.Fprintf(&sb, ": formats %q and %q both produce %q", e.Formats[0], e.Formats[1], e.Path)
	case e.Kind == ErrUnsafeFileName && len(e.Formats) == 1:
		fmt.Fprintf(&sb, ": format %q produced %q", e.Formats[0], e.Value)
	case e.Value != "":
		fmt.Fprintf(&sb, ": %q", e.Value)
	}

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, value string) *ConfigError {
	return &ConfigError{Kind: kind, Value: value}
}
