package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"eventsite/internal/config"
	"eventsite/internal/storage"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "sitectl",
	Short: "Administration commands for the event site backend",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/local.yaml", "Path to configuration file")

	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(configCmd)
}

// openDB loads the configuration and connects to postgres.
func openDB(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseUrl == "" {
		return nil, nil, fmt.Errorf("database_url is not configured")
	}
	db, err := storage.InitDB(ctx, cfg.DatabaseUrl)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
