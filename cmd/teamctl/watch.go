package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/yukikurage/teamtask/internal/client/poller"
	"github.com/yukikurage/teamtask/internal/client/session"
	"github.com/yukikurage/teamtask/internal/client/store"
	"github.com/yukikurage/teamtask/internal/client/ui"
)

func watchCmd(opts *options) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the unread notification count as it changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd); err != nil {
				return err
			}

			ns := store.NewNotificationSlice(a.api, a.log)
			svc := poller.New(ns, a.holder, interval, a.log)

			counts, cancel := svc.Subscribe()
			defer cancel()

			ended := make(chan struct{})
			var once sync.Once
			unsubscribe := a.holder.Subscribe(func(st session.Status) {
				if st == session.StatusUnauthenticated {
					once.Do(func() { close(ended) })
				}
			})
			defer unsubscribe()

			svc.Attach()
			defer svc.Detach()

			last := -1
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-ended:
					a.report(cmd, ui.SeverityWarning, "Session expired, run 'teamctl login' again")
					return nil
				case n := <-counts:
					if n == last {
						continue
					}
					last = n
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %d unread\n", time.Now().Format("15:04:05"), n)
				}
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", poller.DefaultInterval, "Poll interval")
	return cmd
}
