package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/libplan/cmd/libplan/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Plan      commands.PlanCmd    `cmd:"" help:"Resolve the build plan and print the artifacts"`
		Build     commands.BuildCmd   `cmd:"" help:"Bundle the library in every requested format"`
		Preview   commands.PreviewCmd `cmd:"" help:"Serve built artifacts under the public base path"`
		Debug     bool                `help:"Enable debug mode." env:"LIBPLAN_DEBUG"`
		Telemetry bool                `help:"Export metrics and traces over OTLP." env:"LIBPLAN_TELEMETRY"`
		Version   kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("libplan"),
		kong.Description("Plan and build a JavaScript library in several module formats."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Telemetry: cli.Telemetry, Version: version})
	cmd.FatalIfErrorf(err)
}
