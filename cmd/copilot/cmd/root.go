// Package cmd implements the copilot command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "copilot",
	Short: "SAP implementation project management backend",
	Long: `copilot is the record-keeping backend for SAP implementation
projects. It serves a REST API over projects, scenarios, workshop
sessions, requirements, WRICEF items, configuration items and the
testing lifecycle.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to YAML config file")
}
