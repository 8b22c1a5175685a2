package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/siren-cli/internal/config"
	"github.com/sells-group/siren-cli/internal/siret"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML, with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := renderConfig(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

// renderConfig marshals a copy of c with the API key and database URL masked.
func renderConfig(c *config.Config) ([]byte, error) {
	masked := *c
	if masked.API.Key != "" {
		masked.API.Key = siret.MaskSecret(masked.API.Key)
	}
	if masked.Cache.DatabaseURL != "" {
		masked.Cache.DatabaseURL = siret.MaskSecret(masked.Cache.DatabaseURL)
	}
	out, err := yaml.Marshal(&masked)
	if err != nil {
		return nil, eris.Wrap(err, "marshal config")
	}
	return out, nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
