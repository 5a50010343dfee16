package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and .env file",
	Long:  `Loads the configuration file and the .env file and checks for errors, missing required fields, and invalid values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		source := cfgFile
		if source == "" {
			source = "defaults"
		}
		fmt.Fprintf(w, "Configuration (%s + %s) is valid.\n", source, envFile)
		if _, _, _, err := cfg.Xray.Credentials(); err != nil {
			fmt.Fprintf(w, "Warning: %v\n", err)
		}
		log.Debugf("Loaded config: %+v", cfg.Paths)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
