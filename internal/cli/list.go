package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fjglira/xraysync/internal/generator"
)

var listCmd = &cobra.Command{
	Use:       "list [excel|csv|json]",
	Short:     "List the files of the working directories",
	ValidArgs: []string{"excel", "csv", "json"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		paths := a.Config().Paths
		kinds := []struct {
			name string
			dir  string
			exts []string
		}{
			{"excel", paths.ExcelDir(), generator.ExcelExtensions},
			{"csv", paths.CSVDir(), []string{".csv"}},
			{"json", paths.JSONDir(), []string{".json"}},
		}

		w := cmd.OutOrStdout()
		for _, k := range kinds {
			if len(args) == 1 && args[0] != k.name {
				continue
			}
			files, err := a.List(k.dir, k.exts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s (%s): %d file(s)\n", k.name, k.dir, len(files))
			for i, f := range files {
				fmt.Fprintf(w, "%3d. %s\n", i+1, filepath.Base(f))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
