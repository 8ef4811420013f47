package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/libplan/internal/config"
	"github.com/wolfeidau/libplan/internal/logger"
	"github.com/wolfeidau/libplan/internal/plan"
	"github.com/wolfeidau/libplan/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Globals struct {
	Debug     bool
	Telemetry bool
	Version   string

	// Stdout receives reports, os.Stdout when nil
	Stdout io.Writer
}

func (g *Globals) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// setup configures the global logger and, when enabled, telemetry. The
// returned func flushes telemetry and is always safe to call.
func (g *Globals) setup(ctx context.Context) func() {
	log.Logger = logger.Setup(g.Debug)
	zerolog.DefaultContextLogger = &log.Logger

	if !g.Telemetry {
		return func() {}
	}

	log.Info().Msg("Telemetry is enabled")
	shutdown, err := telemetry.InitTelemetry(ctx, "libplan", g.Version)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}
}

// ConfigFlags are shared by every command. Flags that are set override the
// config file, which overrides the defaults.
type ConfigFlags struct {
	Config   string   `help:"Config file, defaults to libplan.yaml in the root when present" short:"c" env:"LIBPLAN_CONFIG"`
	Root     string   `help:"Project root relative entries and output are resolved against" default:"." env:"LIBPLAN_ROOT"`
	Entry    string   `help:"Library entry module" env:"LIBPLAN_ENTRY"`
	Base     string   `help:"Public base path artifacts are served from" env:"LIBPLAN_BASE"`
	OutDir   string   `help:"Output directory relative to the root" env:"LIBPLAN_OUT_DIR"`
	Name     string   `help:"Library name used as the file name stem" env:"LIBPLAN_NAME"`
	Format   []string `help:"Module format to emit (es, cjs, umd, iife), repeatable" env:"LIBPLAN_FORMAT"`
	FileName string   `help:"File name pattern using {libraryName} and {format}" env:"LIBPLAN_FILE_NAME"`
	Manifest string   `help:"Emit manifest.json (true or false), unset keeps the config file value" env:"LIBPLAN_MANIFEST"`
}

// load layers defaults, the config file and the flags into one config.
func (c *ConfigFlags) load(root string) (config.File, error) {
	file := &config.File{}

	path := c.Config
	if path == "" {
		if discovered, ok := config.Discover(root); ok {
			path = discovered
		}
	}

	if path != "" {
		log.Debug().Str("path", path).Msg("Loading config file")

		loaded, err := config.Load(path)
		if err != nil {
			return config.File{}, err
		}
		file = loaded
	}

	flags := config.File{
		Entry:    c.Entry,
		Base:     c.Base,
		OutDir:   c.OutDir,
		Name:     c.Name,
		Formats:  c.Format,
		FileName: c.FileName,
	}

	if c.Manifest != "" {
		manifest, err := strconv.ParseBool(c.Manifest)
		if err != nil {
			return config.File{}, fmt.Errorf("invalid manifest flag %q: %w", c.Manifest, err)
		}
		flags.Manifest = &manifest
	}

	return config.Merge(config.Defaults(), *file, flags)
}

// resolved is a validated plan with its named artifacts.
type resolved struct {
	root      string
	plan      *plan.BuildPlan
	artifacts []plan.ArtifactDescriptor
}

// outputDir is the absolute directory artifacts are written to.
func (r *resolved) outputDir() string {
	if filepath.IsAbs(r.plan.OutDir) {
		return r.plan.OutDir
	}
	return filepath.Join(r.root, filepath.FromSlash(r.plan.OutDir))
}

func (c *ConfigFlags) resolve(ctx context.Context) (*resolved, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "plan.Resolve")
	defer span.End()

	root, err := filepath.Abs(c.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	cfg, err := c.load(root)
	if err != nil {
		return nil, err
	}

	m := telemetry.GetMetrics()
	m.ResolutionsTotal.Add(ctx, 1)

	resolver := plan.NewResolver(plan.WithRoot(root), plan.WithFileSystem(plan.OSFileSystem{}))

	bp, artifacts, err := resolver.Prepare(cfg.BuildOptions())
	if err != nil {
		kind := "unknown"

		var cfgErr *plan.ConfigError
		if errors.As(err, &cfgErr) {
			kind = cfgErr.Kind.Error()
		}

		m.ResolutionErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
		span.RecordError(err)
		return nil, err
	}

	log.Debug().
		Str("entry", bp.EntryPath).
		Str("outDir", bp.OutDir).
		Str("base", bp.BasePublicPath).
		Int("artifacts", len(artifacts)).
		Msg("Resolved build plan")

	return &resolved{root: resolver.Root(), plan: bp, artifacts: artifacts}, nil
}
