package plan

import (
	"strings"
)

// DefaultFileNameTemplate is used when no FileNameTemplate is supplied.
const DefaultFileNameTemplate = "{libraryName}.{format}.js"

// PatternTemplate expands the {libraryName} and {format} tokens of pattern.
func PatternTemplate(pattern, libraryName string) FileNameFunc {
	return func(f Format) string {
		return strings.NewReplacer(
			"{libraryName}", libraryName,
			"{format}", f.String(),
		).Replace(pattern)
	}
}

// Name produces one descriptor per plan format, in order. It never touches
// the filesystem and never modifies the plan.
func Name(p *BuildPlan) ([]ArtifactDescriptor, error) {
	template := p.FileNameTemplate
	if template == nil {
		template = PatternTemplate(DefaultFileNameTemplate, p.LibraryName)
	}

	artifacts := make([]ArtifactDescriptor, 0, len(p.Formats))
	owners := make(map[string]Format, len(p.Formats))

	for _, f := range p.Formats {
		name := template(f)
		if !isSafeFileName(name) {
			return nil, &ConfigError{Kind: ErrUnsafeFileName, Value: name, Formats: []Format{f}}
		}

		out := joinOutput(p.OutDir, name)
		if prev, ok := owners[out]; ok {
			return nil, &ConfigError{Kind: ErrNameCollision, Path: out, Formats: []Format{prev, f}}
		}
		owners[out] = f

		artifacts = append(artifacts, ArtifactDescriptor{
			Format:             f,
			RelativeFileName:   name,
			AbsoluteOutputPath: out,
		})
	}

	return artifacts, nil
}

// isSafeFileName accepts only a single path segment that stays inside the
// output directory.
func isSafeFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	return !strings.ContainsAny(name, "/\\\x00")
}

func joinOutput(outDir, name string) string {
	if strings.HasSuffix(outDir, "/") {
		return outDir + name
	}
	return outDir + "/" + name
}
