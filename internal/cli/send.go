package cli

import (
	"github.com/spf13/cobra"

	"github.com/fjglira/xraysync/internal/domain"
)

var (
	sendAll      bool
	sendPrefixes []string
	sendReport   string
)

var sendCmd = &cobra.Command{
	Use:   "send [document...]",
	Short: "Upload JSON documents to Xray",
	Long: `Uploads JSON documents to the Xray bulk import endpoint, retrying
throttled requests. Documents may be given by path or by name inside the JSON
directory. --all sends the whole JSON directory and --prefix selects its
documents by number prefix (for example --prefix 01,03).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		byPrefix := len(sendPrefixes) > 0
		if err := requireTargets(args, sendAll || byPrefix); err != nil {
			return err
		}
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		var result domain.BatchResult
		switch {
		case byPrefix:
			result, err = a.SendByPrefix(ctx, sendPrefixes)
		case sendAll:
			result, err = a.SendAll(ctx)
		default:
			var files []string
			files, err = resolveFiles(a.Config().Paths.JSONDir(), args, ".json")
			if err == nil {
				result, err = a.SendPaths(ctx, files)
			}
		}
		if err != nil {
			return err
		}
		return finish(cmd.OutOrStdout(), a, "Send", result, sendReport)
	},
}

func init() {
	sendCmd.Flags().BoolVar(&sendAll, "all", false, "send every document of the JSON directory")
	sendCmd.Flags().StringSliceVar(&sendPrefixes, "prefix", nil, "send documents whose names start with these numbers")
	sendCmd.Flags().StringVar(&sendReport, "report", "", "write a Markdown or HTML report to this file")
	sendCmd.MarkFlagsMutuallyExclusive("all", "prefix")
	rootCmd.AddCommand(sendCmd)
}
