package main

import (
	"github.com/spf13/cobra"

	"github.com/tinytelemetry/statshaus/internal/model"
)

var rootCmd = &cobra.Command{
	Use:   "statshaus",
	Short: "Watch who was last seen on the stats endpoint",
	Long: `StatsHaus polls a "last seen" activity endpoint and keeps the latest
snapshot sorted by user name or activity time.

Credentials come from --username/--password, STATSHAUS_USERNAME and
STATSHAUS_PASSWORD, or $HOME/.config/statshaus/config.yml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default is $HOME/.config/statshaus/config.yml)")
	pf.String("username", "", "basic auth username")
	pf.String("password", "", "basic auth password")
	pf.String("endpoint", model.DefaultEndpoint, "stats endpoint URL")
	pf.Duration("http-timeout", model.DefaultHTTPTimeout, "timeout for one fetch")
}
