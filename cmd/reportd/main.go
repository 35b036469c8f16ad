package main

import (
	"fmt"
	"os"

	"github.com/godilite/evalreport/internal/config"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reportd",
		Short:         "Survey evaluation report service",
		SilenceUsage:  true,
	}
	root.AddCommand(newServeCmd(), newGenerateCmd())
	return root
}

// setup loads the environment config and its logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg := config.LoadFromEnv()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}
