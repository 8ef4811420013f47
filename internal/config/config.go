// Package config loads libplan build configuration files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/wolfeidau/libplan/internal/plan"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the project root when no file is given.
const DefaultFileName = "libplan.yaml"

// File is the on disk configuration. JSON files are accepted as well since
// YAML is a superset.
type File struct {
	Entry    string   `yaml:"entry,omitempty" json:"entry,omitempty"`
	Base     string   `yaml:"base,omitempty" json:"base,omitempty"`
	OutDir   string   `yaml:"outDir,omitempty" json:"outDir,omitempty"`
	Name     string   `yaml:"name,omitempty" json:"name,omitempty"`
	Formats  []string `yaml:"formats,omitempty" json:"formats,omitempty"`
	FileName string   `yaml:"fileName,omitempty" json:"fileName,omitempty"`
	Manifest *bool    `yaml:"manifest,omitempty" json:"manifest,omitempty"`

	// BundlerOptions is handed to the bundler untouched.
	BundlerOptions any `yaml:"bundlerOptions,omitempty" json:"bundlerOptions,omitempty"`
}

// Defaults returns the settings applied underneath every file.
func Defaults() File {
	return File{
		Base:    "/",
		OutDir:  "dist",
		Formats: []string{plan.FormatES.String(), plan.FormatUMD.String()},
	}
}

// Load reads a configuration file. An empty file yields a zero File.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &f, nil
}

// Discover returns the path of the default config file in root if it exists.
func Discover(root string) (string, bool) {
	path := filepath.Join(root, DefaultFileName)

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}

	return path, true
}

// Merge layers each override on top of base. Only non-zero override values
// replace base values, except Manifest where an explicit false also counts.
func Merge(base File, overrides ...File) (File, error) {
	merged := base
	merged.Formats = append([]string(nil), base.Formats...)
	merged.Manifest = copyBool(base.Manifest)

	for _, o := range overrides {
		manifest := o.Manifest
		o.Manifest = nil

		if err := mergo.Merge(&merged, o, mergo.WithOverride); err != nil {
			return File{}, fmt.Errorf("failed to merge config: %w", err)
		}

		if manifest != nil {
			merged.Manifest = copyBool(manifest)
		}
	}

	return merged, nil
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// BuildOptions converts the file into resolver input.
func (f File) BuildOptions() plan.BuildOptions {
	opts := plan.BuildOptions{
		EntryPath:           f.Entry,
		BasePublicPath:      f.Base,
		OutDir:              f.OutDir,
		LibraryName:         f.Name,
		Formats:             f.Formats,
		ExtraBundlerOptions: f.BundlerOptions,
	}

	if f.Manifest != nil {
		opts.EmitManifest = *f.Manifest
	}

	if f.FileName != "" {
		opts.FileNameTemplate = plan.PatternTemplate(f.FileName, f.Name)
	}

	return opts
}
