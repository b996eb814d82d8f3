package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/habitlog/internal/cli"
	"github.com/habitlog/internal/config"
	"github.com/habitlog/internal/logger"
)

var CLI struct {
	Database string `help:"SQLite database path." env:"DATABASE_PATH" type:"path"`

	InitUser  cli.InitUserCmd  `cmd:"" name:"init-user" help:"Create the login user if it does not exist."`
	Seed      cli.SeedCmd      `cmd:"" help:"Insert sample habits with an action history."`
	Dashboard cli.DashboardCmd `cmd:"" help:"Print the dashboard cards." default:"1"`
	Heatmap   cli.HeatmapCmd   `cmd:"" help:"Print or export the monthly heatmap."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("habitctl"),
		kong.Description("Operator tool for the habitlog database"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(logger.Config{Debug: cfg.LogDebug, LogDir: cfg.LogDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	path := CLI.Database
	if path == "" {
		path = cfg.DatabasePath
	}

	if err := ctx.Run(&cli.Context{DatabasePath: path, Out: os.Stdout}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
