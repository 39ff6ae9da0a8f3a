package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newStatusCommand reports which backend and account the process is bound
// to and the last transport error recorded on the shared Context, mirroring
// what spec.md §4.1 expects a caller to inspect after an operation fails
// without a usable return value (a batch script polling between calls).
func newStatusCommand(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active backend, account, and last recorded transport error",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backend: %s\n", deps.Ctx.Forge)

			if acct, ok := deps.Ctx.Account(); ok {
				fmt.Fprintf(out, "account: %s\n", acct.BaseURL)
			} else {
				fmt.Fprintln(out, "account: none configured")
			}

			if lastErr := deps.Ctx.GetError(); lastErr != "" {
				fmt.Fprintf(out, "last error: %s\n", lastErr)
			}
			return nil
		},
	}
}
