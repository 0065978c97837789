package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/research-reports/pkg/runtime/app"
	"github.com/de-tools/research-reports/pkg/runtime/terminal"
	"github.com/de-tools/research-reports/pkg/runtime/terminal/commands"
	"github.com/de-tools/research-reports/pkg/services/config"
	"github.com/de-tools/research-reports/pkg/services/report"
)

func connect(ctx context.Context, configPath string, registry report.Registry) (commands.Session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, logs, err := app.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}

	session, err := app.Open(logger.WithContext(ctx), cfg, registry)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}
	session.Attach(logs)
	return session, nil
}

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Registry: report.DefaultRegistry(),
		Connect:  connect,
		Output:   os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
