package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/libplan/internal/preview"
)

type PreviewCmd struct {
	ConfigFlags `embed:""`

	Listen      string   `help:"Address to listen on" default:"localhost:4173" env:"LIBPLAN_PREVIEW_LISTEN"`
	CORSOrigins []string `help:"Origins allowed to load artifacts cross origin, all when empty" name:"cors-origin" env:"LIBPLAN_PREVIEW_CORS_ORIGINS"`
}

func (p *PreviewCmd) Run(ctx context.Context, globals *Globals) error {
	defer globals.setup(ctx)()

	res, err := p.resolve(ctx)
	if err != nil {
		return err
	}

	dir := res.outputDir()
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("output directory not found, run build first: %w", err)
	}

	log.Info().
		Str("dir", dir).
		Str("base", res.plan.BasePublicPath).
		Msg("Serving build output")

	handler := preview.NewHandler(preview.Config{
		Dir:         dir,
		Base:        res.plan.BasePublicPath,
		CORSOrigins: p.CORSOrigins,
	})

	return preview.Run(ctx, p.Listen, handler)
}
