package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/libplan/internal/plan"
	"github.com/wolfeidau/libplan/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

var targets = map[string]api.Target{
	"":       api.ESNext,
	"esnext": api.ESNext,
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
}

var platforms = map[string]api.Platform{
	"":        api.PlatformBrowser,
	"browser": api.PlatformBrowser,
	"node":    api.PlatformNode,
	"neutral": api.PlatformNeutral,
}

// Build runs esbuild once per artifact and writes the results. Nothing is
// written unless every artifact compiles.
func (p *Pipeline) Build(ctx context.Context, bp *plan.BuildPlan, artifacts []plan.ArtifactDescriptor) (*plan.EmittedFiles, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, span := telemetry.Tracer().Start(ctx, "assets.Build")
	defer span.End()

	m := telemetry.GetMetrics()
	started := time.Now()
	m.BuildsTotal.Add(ctx, 1)

	emitted, err := p.build(ctx, bp, artifacts)
	m.BuildDuration.Record(ctx, float64(time.Since(started).Milliseconds()))
	if err != nil {
		m.BuildErrorsTotal.Add(ctx, 1)
		span.RecordError(err)
		return nil, err
	}

	for _, f := range emitted.Files {
		attrs := metric.WithAttributes(attribute.String("format", f.Format.String()))
		m.ArtifactsEmitted.Add(ctx, 1, attrs)
		m.ArtifactBytes.Add(ctx, f.Size, attrs)
	}

	return emitted, nil
}

func (p *Pipeline) build(ctx context.Context, bp *plan.BuildPlan, artifacts []plan.ArtifactDescriptor) (*plan.EmittedFiles, error) {
	extra, err := DecodeExtraOptions(bp.ExtraBundlerOptions)
	if err != nil {
		return nil, err
	}

	target, ok := targets[strings.ToLower(extra.Target)]
	if !ok {
		return nil, fmt.Errorf("unsupported target %q", extra.Target)
	}

	platform, ok := platforms[strings.ToLower(extra.Platform)]
	if !ok {
		return nil, fmt.Errorf("unsupported platform %q", extra.Platform)
	}

	log.Info().
		Str("entrypoint", bp.EntryPath).
		Str("outdir", bp.OutDir).
		Int("artifacts", len(artifacts)).
		Msg("Building assets")

	results := make([][]api.OutputFile, len(artifacts))

	g, gctx := errgroup.WithContext(ctx)
	for i, artifact := range artifacts {
		opts := p.buildOptions(bp, artifact, extra)
		opts.Target = target
		opts.Platform = platform

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			result := api.Build(opts)
			if len(result.Errors) > 0 {
				for _, msg := range result.Errors {
					log.Error().Str("format", artifact.Format.String()).Str("error", msg.Text).Msg("Build error")
				}
				return fmt.Errorf("%w: %s: %s", ErrBuildFailed, artifact.Format, result.Errors[0].Text)
			}

			for _, msg := range result.Warnings {
				log.Warn().Str("format", artifact.Format.String()).Str("warning", msg.Text).Msg("Build warning")
			}

			results[i] = result.OutputFiles
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	outDir := p.resolvePath(bp.OutDir)
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	emitted := &plan.EmittedFiles{}

	for i, artifact := range artifacts {
		outfile := p.resolvePath(artifact.AbsoluteOutputPath)
		found := false

		for _, file := range results[i] {
			// #nosec G306 - built assets are served publicly
			if err := os.WriteFile(file.Path, file.Contents, 0o644); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", file.Path, err)
			}

			log.Info().Str("file", file.Path).Msg("Built file")

			if file.Path != outfile {
				continue
			}
			found = true

			stats, err := statContents(file.Contents)
			if err != nil {
				return nil, err
			}

			emitted.Files = append(emitted.Files, plan.EmittedFile{
				Format:   artifact.Format,
				Path:     artifact.AbsoluteOutputPath,
				Size:     stats.size,
				GzipSize: stats.gzipSize,
				Hash:     stats.hash,
			})
		}

		if !found {
			return nil, fmt.Errorf("%w: no output for %s", ErrBuildFailed, artifact.AbsoluteOutputPath)
		}
	}

	if bp.EmitManifest {
		manifestPath, err := p.writeManifest(ctx, bp, emitted.Files)
		if err != nil {
			return nil, err
		}
		emitted.ManifestPath = manifestPath
	}

	return emitted, nil
}

func (p *Pipeline) buildOptions(bp *plan.BuildPlan, artifact plan.ArtifactDescriptor, extra ExtraOptions) api.BuildOptions {
	minify := boolOr(extra.Minify, p.config.Minify)
	sourceMap := boolOr(extra.SourceMap, p.config.SourceMap)

	opts := api.BuildOptions{
		EntryPoints:       []string{bp.EntryPath},
		Outfile:           p.resolvePath(artifact.AbsoluteOutputPath),
		AbsWorkingDir:     p.config.Root,
		Bundle:            true,
		Write:             false,
		PublicPath:        bp.BasePublicPath,
		External:          extra.External,
		Define:            extra.Define,
		MinifyWhitespace:  minify,
		MinifyIdentifiers: minify,
		MinifySyntax:      minify,
		TreeShaking:       api.TreeShakingTrue,
		Sourcemap:         cond(sourceMap, api.SourceMapLinked, api.SourceMapNone),
		LogLevel:          api.LogLevelSilent,
	}

	globalName := cond(extra.GlobalName != "", extra.GlobalName, GlobalName(bp.LibraryName))
	banner, footer := extra.Banner, extra.Footer

	switch artifact.Format {
	case plan.FormatES:
		opts.Format = api.FormatESModule
	case plan.FormatCJS:
		opts.Format = api.FormatCommonJS
	case plan.FormatIIFE:
		opts.Format = api.FormatIIFE
		opts.GlobalName = globalName
	case plan.FormatUMD:
		opts.Format = api.FormatCommonJS
		banner = joinLines(banner, umdHeader(globalName))
		footer = joinLines(umdFooter, footer)
	}

	if banner != "" {
		opts.Banner = map[string]string{"js": banner}
	}
	if footer != "" {
		opts.Footer = map[string]string{"js": footer}
	}

	return opts
}

// resolvePath maps a plan path, which is slash separated and relative to the
// project root, onto the local filesystem.
func (p *Pipeline) resolvePath(path string) string {
	local := filepath.FromSlash(path)
	if filepath.IsAbs(local) {
		return local
	}
	return filepath.Join(p.config.Root, local)
}

func joinLines(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "\n" + b
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
