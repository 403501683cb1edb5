package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/posture-check/cmd"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "posturecheck",
		Short: "Posture screening from back and side photos",
		Long: `posturecheck measures shoulder, hip, head and trunk alignment from two
photos, buckets the distances into low/medium/high risk and keeps a history
per user.`,
		SilenceUsage: true,
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		cmd.NewServeCmd(),
		cmd.NewMigrateCmd(),
		cmd.NewClassifyCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "posturecheck version %s\n", version)
		},
	}
}
