package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/research-reports/pkg/runtime/app"
	"github.com/de-tools/research-reports/pkg/server"
	"github.com/de-tools/research-reports/pkg/services/config"
	"github.com/de-tools/research-reports/pkg/services/report"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for research reports",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the configuration file (defaults and REPORTS_* environment variables apply)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger, closer, err := app.NewLogger(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := logger.WithContext(cmd.Context())

	reports, err := app.Open(ctx, cfg, report.DefaultRegistry())
	if err != nil {
		return fmt.Errorf("failed to open report service: %w", err)
	}
	defer func() {
		if err := reports.Close(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to close document store")
		}
	}()

	logger.Info().Msgf("Serving report types: %v", reports.Types())

	api := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimit: server.RateLimit{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		},
		Dependencies: server.Dependencies{
			Reports: reports,
			Health:  reports,
		},
	})

	return api.Start()
}
