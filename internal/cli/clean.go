package cli

import (
	"github.com/spf13/cobra"
)

var cleanAll bool

var cleanCmd = &cobra.Command{
	Use:   "clean [document...]",
	Short: "Normalize JSON documents in place",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTargets(args, cleanAll); err != nil {
			return err
		}
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if cleanAll {
			result, err := a.CleanAll()
			if err != nil {
				return err
			}
			return finish(cmd.OutOrStdout(), a, "Cleaning", result, "")
		}

		files, err := resolveFiles(a.Config().Paths.JSONDir(), args, ".json")
		if err != nil {
			return err
		}
		result := eachFile(files, func(path string) (string, error) {
			return path, a.CleanFile(path)
		})
		return finish(cmd.OutOrStdout(), a, "Cleaning", result, "")
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "clean every document of the JSON directory")
	rootCmd.AddCommand(cleanCmd)
}
