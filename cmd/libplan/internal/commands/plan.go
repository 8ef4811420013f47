package commands

import (
	"context"

	"github.com/wolfeidau/libplan/internal/report"
)

type PlanCmd struct {
	ConfigFlags `embed:""`

	Output string `help:"Output format (table, json, yaml)" default:"table" short:"o" env:"LIBPLAN_OUTPUT"`
}

func (p *PlanCmd) Run(ctx context.Context, globals *Globals) error {
	defer globals.setup(ctx)()

	format, err := report.ParseFormat(p.Output)
	if err != nil {
		return err
	}

	res, err := p.resolve(ctx)
	if err != nil {
		return err
	}

	return report.WritePlan(globals.stdout(), format, res.plan, res.artifacts)
}
