package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/insanerask77/tienda-perfumes/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tienda-perfumes",
	Short: "Perfume equivalence ingestion pipeline",
	Long:  "Discovers perfumes from a third-party search endpoint, scrapes each detail page for retailer equivalences, and persists both into PocketBase without duplicating records across runs.",
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
