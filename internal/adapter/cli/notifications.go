package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
)

func newNotificationsCommand(deps Dependencies) *cobra.Command {
	var all bool
	var markRead string

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications, or mark one as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if markRead != "" {
				id, err := strconv.ParseUint(markRead, 10, 64)
				if err != nil {
					return gclierr.Usagef("invalid notification id %q", markRead)
				}
				return deps.Facade.NotificationMarkAsRead(ctx, id)
			}

			notifications, err := deps.Facade.GetNotifications(ctx, all)
			if err != nil {
				return err
			}
			for _, n := range notifications {
				state := "read"
				if n.Unread {
					state = "unread"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "#%-6d %-8s %s\n", n.ID, state, n.Subject)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include already-read notifications")
	cmd.Flags().StringVar(&markRead, "mark-read", "", "Mark the notification with this id as read instead of listing")
	return cmd
}
