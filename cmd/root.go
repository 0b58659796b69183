package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shadepath/shadepath/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "shadepath",
	Short: "Shadow and shelter aware route scoring",
	Long:  "Fetches route alternatives, projects building shadows for the sun position, overlays covered walkways, and ranks routes by protection from sun and rain.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
