package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/yukikurage/teamtask/internal/client"
	"github.com/yukikurage/teamtask/internal/client/store"
	"github.com/yukikurage/teamtask/internal/client/ui"
)

func tasksCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and manage project tasks",
	}
	cmd.AddCommand(taskListCmd(opts), taskShowCmd(opts), taskCreateCmd(opts),
		taskUpdateCmd(opts), taskDeleteCmd(opts), taskSuggestCmd(opts))
	return cmd
}

func taskListCmd(opts *options) *cobra.Command {
	var q store.TaskQuery
	var mine bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			userID, err := a.requireSession(cmd)
			if err != nil {
				return err
			}
			if mine {
				q.OwnerID = userID
			}

			tasks := store.NewTaskSlice(a.api, a.log)
			if err := tasks.Fetch(cmd.Context(), q); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPROGRESS\tDEADLINE\tTEAM")
			for _, t := range tasks.Tasks() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d%%\t%s\t%s\n", t.ID, t.Title, t.Status, t.Progress, formatDate(t.Deadline), teamName(t.Team))
			}
			p := tasks.Pagination()
			fmt.Fprintf(w, "\npage %d/%d, %d total\n", p.Page, p.PageCount, p.Total)
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&q.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&q.PageSize, "page-size", 25, "Page size")
	cmd.Flags().StringVar(&q.Status, "status", "", "Filter by status (pending, inprogress, completed)")
	cmd.Flags().Uint64Var(&q.TeamID, "team", 0, "Filter by team id")
	cmd.Flags().StringVarP(&q.Search, "search", "s", "", "Search titles")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only tasks I own")
	return cmd
}

func taskShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a task with its work packages",
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

			task, err := store.NewTaskSlice(a.api, a.log).Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "#%d %s [%s] %d%%\n", task.ID, task.Title, task.Status, task.Progress)
			if task.Description != "" {
				fmt.Fprintf(out, "  %s\n", task.Description)
			}
			fmt.Fprintf(out, "  deadline: %s  team: %s\n", formatDate(task.Deadline), teamName(task.Team))
			for _, wp := range task.WorkPackages {
				fmt.Fprintf(out, "  - #%d %s %d%% [%s] %s\n", wp.ID, wp.Name, wp.Percentage, wp.Status, formatDate(wp.Deadline))
			}
			return nil
		},
	}
}

func taskCreateCmd(opts *options) *cobra.Command {
	var (
		in       store.TaskInput
		deadline string
		teamID   uint64
		packages []string
	)
	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a task, optionally with work packages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd); err != nil {
				return err
			}

			in.Title = args[0]
			if in.Deadline, err = parseDate(deadline); err != nil {
				return err
			}
			if teamID != 0 {
				in.TeamID = &teamID
			}
			for _, raw := range packages {
				wp, err := parseWorkPackage(raw)
				if err != nil {
					return err
				}
				in.WorkPackages = append(in.WorkPackages, wp)
			}

			task, err := store.NewTaskSlice(a.api, a.log).Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.report(cmd, ui.SeveritySuccess, "Task #%d created with %d work packages", task.ID, len(task.WorkPackages))
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline (YYYY-MM-DD or RFC3339)")
	cmd.Flags().IntVar(&in.Progress, "progress", 0, "Progress 0-100")
	cmd.Flags().StringVar(&in.Status, "status", "", "Status (pending, inprogress, completed)")
	cmd.Flags().Uint64Var(&teamID, "team", 0, "Team id")
	cmd.Flags().StringArrayVar(&packages, "wp", nil, "Work package as name:percentage, repeatable")
	return cmd
}

func taskUpdateCmd(opts *options) *cobra.Command {
	var (
		title, description, status, deadline string
		progress                             int
		teamID                               uint64
		clearTeam                            bool
	)
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update fields of a task you own",
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

			var up store.TaskUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				up.Title = &title
			}
			if flags.Changed("description") {
				up.Description = &description
			}
			if flags.Changed("status") {
				up.Status = &status
			}
			if flags.Changed("progress") {
				up.Progress = &progress
			}
			if flags.Changed("deadline") {
				if deadline == "" {
					up.ClearDeadline = true
				} else if up.Deadline, err = parseDate(deadline); err != nil {
					return err
				}
			}
			if flags.Changed("team") {
				up.TeamID = &teamID
			}
			up.ClearTeam = clearTeam

			task, err := store.NewTaskSlice(a.api, a.log).Update(cmd.Context(), id, up)
			if err != nil {
				return err
			}
			a.report(cmd, ui.SeveritySuccess, "Task #%d updated: %s %d%%", task.ID, task.Status, task.Progress)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&status, "status", "", "Status (pending, inprogress, completed)")
	cmd.Flags().IntVar(&progress, "progress", 0, "Progress 0-100")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline; pass an empty value to clear it")
	cmd.Flags().Uint64Var(&teamID, "team", 0, "Team id")
	cmd.Flags().BoolVar(&clearTeam, "no-team", false, "Detach the task from its team")
	return cmd
}

func taskDeleteCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task and its work packages",
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
			if !a.confirm(cmd, yes, "Delete task", fmt.Sprintf("task #%d and its work packages will be removed", id)) {
				a.report(cmd, ui.SeverityInfo, "Cancelled")
				return nil
			}

			if err := store.NewTaskSlice(a.api, a.log).Delete(cmd.Context(), id); err != nil {
				return err
			}
			a.report(cmd, ui.SeveritySuccess, "Task #%d deleted", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func taskSuggestCmd(opts *options) *cobra.Command {
	var in store.SuggestInput
	var deadline string
	cmd := &cobra.Command{
		Use:   "suggest [title]",
		Short: "Ask the AI for a work package breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd); err != nil {
				return err
			}
			in.Title = args[0]
			if in.Deadline, err = parseDate(deadline); err != nil {
				return err
			}

			suggestions, err := store.NewTaskSlice(a.api, a.log).SuggestWorkPackages(cmd.Context(), in)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPERCENTAGE\tDEADLINE")
			for _, s := range suggestions {
				fmt.Fprintf(w, "%s\t%d%%\t%s\n", s.Name, s.Percentage, formatDate(s.Deadline))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline (YYYY-MM-DD or RFC3339)")
	return cmd
}

func parseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q, use YYYY-MM-DD or RFC3339", raw)
}

// parseWorkPackage reads "name:percentage".
func parseWorkPackage(raw string) (store.WorkPackageInput, error) {
	i := strings.LastIndex(raw, ":")
	if i < 0 {
		return store.WorkPackageInput{Name: raw}, nil
	}
	pct, err := strconv.Atoi(strings.TrimSpace(raw[i+1:]))
	if err != nil {
		return store.WorkPackageInput{}, fmt.Errorf("invalid work package %q, use name:percentage", raw)
	}
	return store.WorkPackageInput{Name: raw[:i], Percentage: pct}, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func teamName(t *client.Team) string {
	if t == nil {
		return "-"
	}
	return t.Name
}
