package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/libplan/internal/assets"
	"github.com/wolfeidau/libplan/internal/report"
)

type BuildCmd struct {
	ConfigFlags `embed:""`

	Output    string `help:"Output format (table, json, yaml)" default:"table" short:"o" env:"LIBPLAN_OUTPUT"`
	Minify    bool   `help:"Minify output, bundler options may override this" default:"true" negatable:"" env:"LIBPLAN_MINIFY"`
	SourceMap bool   `help:"Emit linked source maps, bundler options may override this" default:"false" env:"LIBPLAN_SOURCEMAP"`
}

func (b *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	defer globals.setup(ctx)()

	format, err := report.ParseFormat(b.Output)
	if err != nil {
		return err
	}

	res, err := b.resolve(ctx)
	if err != nil {
		return err
	}

	cfg := assets.DefaultConfig(res.root)
	cfg.Minify = b.Minify
	cfg.SourceMap = b.SourceMap

	log.Info().
		Str("entry", res.plan.EntryPath).
		Int("artifacts", len(res.artifacts)).
		Msg("Building library")

	emitted, err := assets.New(cfg).Build(ctx, res.plan, res.artifacts)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	return report.WriteBuild(globals.stdout(), format, emitted)
}
