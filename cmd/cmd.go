package cmd

import (
	"context"

	"github.com/gaze-network/ordbridge/pkg/logger"
	"github.com/gaze-network/ordbridge/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:  "ordbridge",
	Long: `Ordinals inscription indexer with a one-way NFT bridge`,
}

func Execute(ctx context.Context) {
	rootCmd.AddCommand(
		NewRunCommand(),
		NewMigrateCommand(),
		NewVersionCommand(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Fatal("Failed to execute root command", slogx.Error(err))
	}
}
