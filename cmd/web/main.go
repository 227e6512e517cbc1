package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/maritime-atlas/pkg/bootstrap"
	"github.com/de-tools/maritime-atlas/pkg/server"
	"github.com/de-tools/maritime-atlas/pkg/services/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Maritime Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the YAML configuration file (defaults and ATLAS_* variables apply without it)")

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
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := bootstrap.NewLogger(cfg, os.Stdout)
	ctx := logger.WithContext(cmd.Context())

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize report pipeline: %w", err)
	}
	defer app.Close()

	if cfgPath != "" {
		logger.Info().Msgf("Configuration found at `%s` successfully loaded.", cfgPath)
	}
	for _, zone := range app.Registry.Zones() {
		logger.Info().Msgf("Zone `%s` available from table `%s`", zone.Title, zone.Table)
	}

	api := server.NewWebAPI(server.Config{
		Addr:           net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		RequestTimeout: cfg.Server.RequestTimeout,
		Dependencies: server.Dependencies{
			Assembler: app.Assembler,
			Logger:    logger,
		},
	})

	return api.Start()
}
