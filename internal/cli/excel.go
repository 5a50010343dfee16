package cli

import (
	"github.com/spf13/cobra"

	"github.com/fjglira/xraysync/internal/generator"
)

var excelAll bool

var excelCmd = &cobra.Command{
	Use:   "excel [workbook...]",
	Short: "Export Excel workbooks to CSV",
	Long:  `Writes the first sheet of each workbook as CSV into the CSV directory, using the configured separator.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTargets(args, excelAll); err != nil {
			return err
		}
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if excelAll {
			result, err := a.ExcelAll()
			if err != nil {
				return err
			}
			return finish(cmd.OutOrStdout(), a, "Export", result, "")
		}

		files, err := resolveFiles(a.Config().Paths.ExcelDir(), args, generator.ExcelExtensions...)
		if err != nil {
			return err
		}
		return finish(cmd.OutOrStdout(), a, "Export", eachFile(files, a.ExcelFile), "")
	},
}

func init() {
	excelCmd.Flags().BoolVar(&excelAll, "all", false, "export every workbook of the Excel directory")
	rootCmd.AddCommand(excelCmd)
}
