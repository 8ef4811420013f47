package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/libplan/internal/plan"
	"github.com/wolfeidau/libplan/internal/telemetry"
)

// ManifestFileName is written into the output directory when the plan asks for a manifest
const ManifestFileName = "manifest.json"

func (p *Pipeline) writeManifest(ctx context.Context, bp *plan.BuildPlan, files []plan.EmittedFile) (string, error) {
	entry, err := filepath.Rel(p.config.Root, bp.EntryPath)
	if err != nil {
		entry = bp.EntryPath
	}

	manifest := Manifest{
		Entry:     filepath.ToSlash(entry),
		Base:      bp.BasePublicPath,
		Artifacts: make(map[string]ManifestEntry, len(files)),
	}

	for _, f := range files {
		manifest.Artifacts[f.Format.String()] = ManifestEntry{
			File: path.Base(f.Path),
			Size: f.Size,
			Hash: f.Hash,
		}
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}

	manifestPath := p.resolvePath(path.Join(bp.OutDir, ManifestFileName))

	// #nosec G306 - the manifest is served alongside the assets
	if err := os.WriteFile(manifestPath, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	telemetry.GetMetrics().ManifestsWritten.Add(ctx, 1)
	log.Info().Str("file", manifestPath).Msg("Wrote manifest")

	return manifestPath, nil
}

// LoadManifest reads a manifest written by a previous build
func LoadManifest(name string) (*Manifest, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if manifest.Artifacts == nil {
		return nil, errors.New("manifest has no artifacts")
	}

	return &manifest, nil
}
