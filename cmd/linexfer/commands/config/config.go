// Package config implements the "linexfer config" subcommands.
package config

import "github.com/spf13/cobra"

// Cmd is the parent of the config subcommands.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

func init() {
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(schemaCmd)
}
