package main

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("statshaus version %s\n", version)
		cmd.Printf("  Commit:     %s\n", commit)
		cmd.Printf("  Built:      %s\n", buildTime)
		cmd.Printf("  Go version: %s\n", goVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
