package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/octobees/wa-validator/internal/config"
	"github.com/octobees/wa-validator/internal/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "phonectl",
	Short: "Operator tooling for the WhatsApp validator",
	Long:  "Normalizes contact files offline and manages dashboard operator accounts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
