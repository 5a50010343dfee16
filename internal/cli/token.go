package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fjglira/xraysync/internal/xray"
)

var tokenShow bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Check the Xray credentials by requesting a token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Authenticate(cmd.Context()); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if exp, ok := xray.TokenExpiry(a.Token()); ok {
			fmt.Fprintf(w, "Authentication succeeded, token valid until %s.\n", exp.Local().Format(time.RFC1123))
		} else {
			fmt.Fprintln(w, "Authentication succeeded.")
		}
		if tokenShow {
			fmt.Fprintln(w, a.Token())
		}
		return nil
	},
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenShow, "show", false, "print the token")
	rootCmd.AddCommand(tokenCmd)
}
