package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/linexfer/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Load the configuration exactly as "start" would and report problems.

Examples:
  linexfer config validate
  linexfer config validate --config /etc/linexfer/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if cfg.Metrics.Enabled && !cfg.API.Enabled {
		warnings = append(warnings, "metrics are enabled but the API server that exposes /metrics is not")
	}
	if cfg.Server.BindAddress == "" || cfg.Server.BindAddress == "0.0.0.0" || cfg.Server.BindAddress == "::" {
		warnings = append(warnings, "server binds all interfaces; the protocol has no authentication")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Listen address:  %s\n", cfg.Server.Address())
	_, _ = fmt.Fprintf(out, "  Root:            %s\n", cfg.Server.Root)
	_, _ = fmt.Fprintf(out, "  Journal:         %s (enabled: %v)\n", cfg.Journal.Type, cfg.Journal.Enabled)
	_, _ = fmt.Fprintf(out, "  API:             %v\n", cfg.API.Enabled)
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)
	return nil
}
