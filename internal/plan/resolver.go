package plan

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"strings"
)

// FileSystem is consulted to check that the entry exists.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
}

// OSFileSystem checks the entry against the local disk.
type OSFileSystem struct{}

func (OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// Resolver turns BuildOptions into a BuildPlan. A Resolver holds no mutable
// state and may be shared between goroutines.
type Resolver struct {
	root string
	fsys FileSystem
}

type ResolverOption func(*Resolver)

// WithRoot sets the project root relative entry paths are resolved against.
func WithRoot(root string) ResolverOption {
	return func(r *Resolver) {
		r.root = root
	}
}

// WithFileSystem enables the entry existence check.
func WithFileSystem(fsys FileSystem) ResolverOption {
	return func(r *Resolver) {
		r.fsys = fsys
	}
}

// NewResolver creates a resolver rooted at the current working directory
// unless WithRoot is given.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}

	if r.root == "" {
		if wd, err := os.Getwd(); err == nil {
			r.root = wd
		}
	}

	if abs, err := filepath.Abs(r.root); err == nil {
		r.root = abs
	}

	return r
}

// Root returns the absolute project root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve validates and normalizes the options. On failure it returns a
// *ConfigError and no plan.
func (r *Resolver) Resolve(opts BuildOptions) (*BuildPlan, error) {
	entry, err := r.resolveEntry(opts.EntryPath)
	if err != nil {
		return nil, err
	}

	outDir, err := normalizeOutDir(opts.OutDir)
	if err != nil {
		return nil, err
	}

	formats, err := validateFormats(opts.Formats)
	if err != nil {
		return nil, err
	}

	if err := validateLibraryName(opts.LibraryName); err != nil {
		return nil, err
	}

	extra, err := validateExtraOptions(opts.ExtraBundlerOptions)
	if err != nil {
		return nil, err
	}

	return &BuildPlan{
		EntryPath:           entry,
		OutDir:              outDir,
		BasePublicPath:      NormalizeBasePublicPath(opts.BasePublicPath),
		LibraryName:         opts.LibraryName,
		Formats:             formats,
		EmitManifest:        opts.EmitManifest,
		ExtraBundlerOptions: extra,
		FileNameTemplate:    opts.FileNameTemplate,
	}, nil
}

// Prepare resolves the options and names every artifact in a single pass.
func (r *Resolver) Prepare(opts BuildOptions) (*BuildPlan, []ArtifactDescriptor, error) {
	p, err := r.Resolve(opts)
	if err != nil {
		return nil, nil, err
	}

	artifacts, err := Name(p)
	if err != nil {
		return nil, nil, err
	}

	return p, artifacts, nil
}

func (r *Resolver) resolveEntry(entry string) (string, error) {
	if strings.TrimSpace(entry) == "" {
		return "", &ConfigError{Kind: ErrEntryNotFound, Err: errors.New("entry path is empty")}
	}

	resolved := filepath.Clean(entry)
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(r.root, resolved)
	}

	if r.fsys == nil {
		return resolved, nil
	}

	info, err := r.fsys.Stat(resolved)
	if err != nil {
		return "", &ConfigError{Kind: ErrEntryNotFound, Value: resolved, Err: err}
	}

	if !info.Mode().IsRegular() {
		return "", &ConfigError{Kind: ErrEntryNotFound, Value: resolved, Err: errors.New("not a regular file")}
	}

	return resolved, nil
}

// normalizeOutDir cleans the directory into slash form without a trailing
// separator. Relative directories stay relative to the project root.
func normalizeOutDir(outDir string) (string, error) {
	if strings.TrimSpace(outDir) == "" {
		return "", &ConfigError{Kind: ErrInvalidOutDir, Err: errors.New("output directory is empty")}
	}

	return path.Clean(filepath.ToSlash(outDir)), nil
}

// NormalizeBasePublicPath returns "/" for the root and otherwise a path with
// exactly one leading slash and no trailing slash.
func NormalizeBasePublicPath(base string) string {
	trimmed := strings.Trim(base, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed
}

func validateLibraryName(name string) error {
	if name == "" {
		return &ConfigError{Kind: ErrInvalidLibraryName, Err: errors.New("library name is empty")}
	}

	if strings.ContainsAny(name, `/\`) {
		return &ConfigError{Kind: ErrInvalidLibraryName, Value: name, Err: errors.New("contains a path separator")}
	}

	return nil
}

func validateFormats(raw []string) ([]Format, error) {
	if len(raw) == 0 {
		return nil, &ConfigError{Kind: ErrNoFormats}
	}

	formats := make([]Format, 0, len(raw))
	seen := make(map[Format]bool, len(raw))

	for _, value := range raw {
		f, err := ParseFormat(value)
		if err != nil {
			return nil, err
		}

		if seen[f] {
			return nil, newError(ErrDuplicateFormat, value)
		}

		seen[f] = true
		formats = append(formats, f)
	}

	return formats, nil
}

// validateExtraOptions only checks the top level shape. Values are never
// inspected.
func validateExtraOptions(extra any) (map[string]any, error) {
	switch v := extra.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return maps.Clone(v), nil
	}

	rv := reflect.ValueOf(extra)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, newError(ErrInvalidExtraOptions, rv.Type().String())
	}

	if rv.IsNil() {
		return map[string]any{}, nil
	}

	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}

	return out, nil
}
