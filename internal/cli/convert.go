package cli

import (
	"github.com/spf13/cobra"
)

var (
	convertAll    bool
	convertExts   []string
	convertReport string
)

var convertCmd = &cobra.Command{
	Use:   "convert [file...]",
	Short: "Convert CSV, Excel or Markdown test sheets to Xray JSON",
	Long: `Converts test case sheets into Xray bulk-import JSON documents written
to the JSON directory. Files may be given by path or by name inside the CSV
directory; --all converts every matching file of the CSV directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTargets(args, convertAll); err != nil {
			return err
		}
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if convertAll {
			result, err := a.ConvertAll(convertExts...)
			if err != nil {
				return err
			}
			return finish(cmd.OutOrStdout(), a, "Conversion", result, convertReport)
		}

		files, err := resolveFiles(a.Config().Paths.CSVDir(), args, convertExts...)
		if err != nil {
			return err
		}
		result := eachFile(files, a.ConvertFile)
		return finish(cmd.OutOrStdout(), a, "Conversion", result, convertReport)
	},
}

func init() {
	convertCmd.Flags().BoolVar(&convertAll, "all", false, "convert every source file of the CSV directory")
	convertCmd.Flags().StringSliceVar(&convertExts, "ext", []string{".csv"}, "source extensions to consider")
	convertCmd.Flags().StringVar(&convertReport, "report", "", "write a Markdown or HTML report to this file")
	rootCmd.AddCommand(convertCmd)
}
