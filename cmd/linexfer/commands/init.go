package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/linexfer/internal/cli/prompt"
	"github.com/marmos91/linexfer/pkg/config"
)

var (
	initForce  bool
	initFormat string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a configuration file with every default spelled out.

Without --config the file goes to $XDG_CONFIG_HOME/linexfer/config.yaml
(config.toml with --format toml). An existing file is only replaced after
confirmation, or with --force.

Examples:
  linexfer init
  linexfer init --config ./linexfer.toml --format toml
  linexfer init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file without asking")
	initCmd.Flags().StringVar(&initFormat, "format", config.FormatYAML, "File format: yaml or toml")
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := config.InitConfig(GetConfigFile(), initFormat, initForce)
	if errors.Is(err, config.ErrConfigExists) {
		ok, perr := prompt.Confirm(fmt.Sprintf("%v. Overwrite", err), false)
		if perr != nil {
			return perr
		}
		if !ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Keeping the existing configuration.")
			return nil
		}
		path, err = config.InitConfig(GetConfigFile(), initFormat, true)
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Start the server with:\n  linexfer start --config %s\n", path)
	return nil
}
