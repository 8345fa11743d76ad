package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skillspad/api/internal/bootstrap"
	"github.com/skillspad/api/internal/pkg/logger"
	"github.com/skillspad/api/internal/server"
)

// @title Skillspad API
// @version 1.0
// @description Backend for the Skillspad e-learning platform: courses, assignments, Paystack enrollment and student dashboards.

// @contact.name API Support
// @contact.email support@skillspad.com

// @host localhost:5000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token as "Bearer <token>". Browsers send it in the token cookie instead.

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "skillspad-api",
		Short: "Skillspad e-learning API",
		// Running without a subcommand serves the API
		RunE: runServe,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", filepath.Join("configs", "config.yaml"), "path to the YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations, seed defaults and serve the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize server")
		return err
	}

	// Blocks until a shutdown signal
	if err := srv.Run(); err != nil {
		lgr.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		return err
	}

	lgr.Info().Msg("Application finished gracefully.")
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database indexes and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
			if err != nil {
				return err
			}
			database, err := bootstrap.ConnectDatabase(cfg, lgr)
			if err != nil {
				return err
			}
			defer database.Close(context.Background())

			return bootstrap.RunMigrations(cmd.Context(), database, lgr)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the configured default admin and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
			if err != nil {
				return err
			}
			database, err := bootstrap.ConnectDatabase(cfg, lgr)
			if err != nil {
				return err
			}
			defer database.Close(context.Background())

			return bootstrap.SeedDefaults(cmd.Context(), cfg, database, lgr)
		},
	}
}
