package plan

import "context"

// Format is the packaging convention of an output bundle.
type Format string

const (
	FormatES   Format = "es"
	FormatCJS  Format = "cjs"
	FormatUMD  Format = "umd"
	FormatIIFE Format = "iife"
)

// Formats returns every recognized format in canonical order.
func Formats() []Format {
	return []Format{FormatES, FormatCJS, FormatUMD, FormatIIFE}
}

// ParseFormat accepts only the canonical lowercase tags.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatES, FormatCJS, FormatUMD, FormatIIFE:
		return f, nil
	default:
		return "", newError(ErrUnsupportedFormat, s)
	}
}

func (f Format) String() string {
	return string(f)
}

// FileNameFunc names the artifact produced for a format.
type FileNameFunc func(Format) string

// BuildOptions are the caller supplied build intents.
type BuildOptions struct {
	// EntryPath is the single source entry, absolute or relative to the project root.
	EntryPath string
	// BasePublicPath is the URL prefix assets are served from.
	BasePublicPath string
	// OutDir is where artifacts are written, relative to the project root.
	OutDir string
	// LibraryName is the default stem for file names.
	LibraryName string
	// Formats lists the requested module formats as raw tags.
	Formats []string
	// FileNameTemplate overrides DefaultFileNameTemplate when set.
	FileNameTemplate FileNameFunc
	EmitManifest     bool
	// ExtraBundlerOptions is passed through to the bundler untouched. It must be
	// nil or a map with string keys.
	ExtraBundlerOptions any
}

// BuildPlan is the normalized, validated form of BuildOptions.
type BuildPlan struct {
	EntryPath           string         `json:"entryPath" yaml:"entryPath"`
	OutDir              string         `json:"outDir" yaml:"outDir"`
	BasePublicPath      string         `json:"basePublicPath" yaml:"basePublicPath"`
	LibraryName         string         `json:"libraryName" yaml:"libraryName"`
	Formats             []Format       `json:"formats" yaml:"formats"`
	EmitManifest        bool           `json:"emitManifest" yaml:"emitManifest"`
	ExtraBundlerOptions map[string]any `json:"extraBundlerOptions" yaml:"extraBundlerOptions"`

	FileNameTemplate FileNameFunc `json:"-" yaml:"-"`
}

// ArtifactDescriptor describes the single output file emitted for one format.
type ArtifactDescriptor struct {
	Format             Format `json:"format" yaml:"format"`
	RelativeFileName   string `json:"relativeFileName" yaml:"relativeFileName"`
	AbsoluteOutputPath string `json:"absoluteOutputPath" yaml:"absoluteOutputPath"`
}

// EmittedFile is an artifact the bundler wrote to disk.
type EmittedFile struct {
	Format   Format `json:"format" yaml:"format"`
	Path     string `json:"path" yaml:"path"`
	Size     int64  `json:"size" yaml:"size"`
	GzipSize int64  `json:"gzipSize" yaml:"gzipSize"`
	Hash     string `json:"hash" yaml:"hash"`
}

// EmittedFiles is the result of a bundler run.
type EmittedFiles struct {
	Files        []EmittedFile `json:"files" yaml:"files"`
	ManifestPath string        `json:"manifestPath,omitempty" yaml:"manifestPath,omitempty"`
}

// Bundler compiles a resolved plan into the described artifacts.
type Bundler interface {
	Build(ctx context.Context, plan *BuildPlan, artifacts []ArtifactDescriptor) (*EmittedFiles, error)
}
