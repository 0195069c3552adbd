package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/placementcell/portal/internal/apiclient"
	"github.com/placementcell/portal/internal/models"
)

// NewNotificationsCmd creates the notifications command
func NewNotificationsCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Read your notifications",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListNotifications(cmd, opts)
		},
	})

	var all bool
	read := &cobra.Command{
		Use:   "read [notification-id]",
		Short: "Mark a notification, or all of them, as read",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("specify either a notification ID or --all")
			}
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runMarkRead(cmd, opts, id)
		},
	}
	read.Flags().BoolVar(&all, "all", false, "Mark every notification as read")
	cmd.AddCommand(read)

	return cmd
}

func runListNotifications(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()
	e, err := connect(ctx, cmd, opts)
	if err != nil {
		return err
	}
	if err := authorize(cmd, e, models.RoleStudent); err != nil {
		return err
	}

	notifications, err := e.api.ListNotifications(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(notifications) == 0 {
		fmt.Fprintln(out, "No notifications.")
		return nil
	}

	fmt.Fprintf(out, "%d unread of %d:\n\n", apiclient.UnreadCount(notifications), len(notifications))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\t\tTITLE\tRECEIVED")
	fmt.Fprintln(w, "──\t\t─────\t────────")

	for _, n := range notifications {
		marker := "•"
		if n.Read {
			marker = " "
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.ID, marker, n.Title, n.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	return w.Flush()
}

func runMarkRead(cmd *cobra.Command, opts *Options, notificationID string) error {
	ctx := cmd.Context()
	e, err := connect(ctx, cmd, opts)
	if err != nil {
		return err
	}
	if err := authorize(cmd, e, models.RoleStudent); err != nil {
		return err
	}

	if notificationID == "" {
		if err := e.api.MarkAllNotificationsRead(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ All notifications marked as read")
		return nil
	}

	if err := e.api.MarkNotificationRead(ctx, notificationID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Notification %s marked as read\n", notificationID)
	return nil
}
