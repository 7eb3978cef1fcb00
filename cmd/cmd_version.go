package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show ordbridge version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("ordbridge " + Version)
			return nil
		},
	}
}
