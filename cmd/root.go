package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/disclosurelab/esgscore/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "esgscore",
	Short: "Heuristic quality scoring of ESG disclosure reports",
	Long:  "Extracts text from ESG report files (PDF/TXT) and scores them on standards compliance, third-party assurance, and quantitative metric density.",
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
