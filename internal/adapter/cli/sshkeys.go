package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
)

func newSSHKeysCommand(deps Dependencies) *cobra.Command {
	var title string
	var deleteID string

	cmd := &cobra.Command{
		Use:   "sshkeys [add PATH]",
		Short: "List, add, or delete SSH keys registered with this account",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if deleteID != "" {
				id, err := strconv.ParseUint(deleteID, 10, 64)
				if err != nil {
					return gclierr.Usagef("invalid sshkey id %q", deleteID)
				}
				return deps.Facade.SSHKeysDelete(ctx, id)
			}

			if len(args) > 0 && args[0] == "add" {
				if len(args) < 2 {
					return gclierr.Usagef("add needs a public key file path")
				}
				raw, err := os.ReadFile(args[1])
				if err != nil {
					return gclierr.Usagef("reading %q: %v", args[1], err)
				}
				key, err := deps.Facade.SSHKeysAdd(ctx, title, string(raw))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added sshkey #%d (%s)\n", key.ID, key.Fingerprint)
				return nil
			}

			keys, err := deps.Facade.SSHKeysList(ctx)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "#%-6d %-24s %s\n", k.ID, k.Fingerprint, k.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title for the new key (add only)")
	cmd.Flags().StringVar(&deleteID, "delete", "", "Delete the sshkey with this id instead of listing")
	return cmd
}
