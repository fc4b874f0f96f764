package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yukikurage/teamtask/internal/client/store"
	"github.com/yukikurage/teamtask/internal/client/ui"
)

func notificationsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Read and manage notifications",
	}
	cmd.AddCommand(notificationListCmd(opts), notificationReadCmd(opts), notificationDeleteCmd(opts))
	return cmd
}

func notificationListCmd(opts *options) *cobra.Command {
	var all bool
	var page, pageSize int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List unread notifications, or the full history with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			userID, err := a.requireSession(cmd)
			if err != nil {
				return err
			}

			ns := store.NewNotificationSlice(a.api, a.log)
			if all {
				_, err = ns.FetchAll(cmd.Context(), userID, page, pageSize)
			} else {
				_, err = ns.FetchUnread(cmd.Context(), userID)
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tREAD\tTYPE\tTITLE\tCREATED")
			for _, n := range ns.Notifications() {
				read := " "
				if n.Read {
					read = "x"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", n.ID, read, n.Type, n.Title, n.CreatedAt.Format("2006-01-02 15:04"))
			}
			fmt.Fprintf(w, "\n%d unread\n", ns.UnreadCount())
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include read notifications")
	cmd.Flags().IntVar(&page, "page", 1, "Page number with --all")
	cmd.Flags().IntVar(&pageSize, "page-size", 25, "Page size with --all")
	return cmd
}

func notificationReadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "read [id|all]",
		Short: "Mark one or all notifications as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			userID, err := a.requireSession(cmd)
			if err != nil {
				return err
			}

			ns := store.NewNotificationSlice(a.api, a.log)
			if _, err := ns.FetchUnread(cmd.Context(), userID); err != nil {
				return err
			}
			if args[0] == "all" {
				err = ns.MarkAllRead(cmd.Context())
			} else {
				var id uint64
				if id, err = parseID(args[0]); err != nil {
					return err
				}
				err = ns.MarkRead(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			a.report(cmd, ui.SeveritySuccess, "%d unread", ns.UnreadCount())
			return nil
		},
	}
}

func notificationDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd); err != nil {
				return err
			}
			if err := store.NewNotificationSlice(a.api, a.log).Delete(cmd.Context(), id); err != nil {
				return err
			}
			a.report(cmd, ui.SeveritySuccess, "Notification #%d deleted", id)
			return nil
		},
	}
}
