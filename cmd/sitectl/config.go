package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eventsite/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
		fmt.Printf("Configuration OK (env %s, media backend %s, listen %s)\n", cfg.Env, cfg.Media.Backend, cfg.Server.Addr())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
