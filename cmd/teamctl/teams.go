package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yukikurage/teamtask/internal/client/store"
	"github.com/yukikurage/teamtask/internal/client/ui"
)

func teamsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "List and manage teams",
	}
	cmd.AddCommand(teamListCmd(opts), teamCreateCmd(opts), teamDeleteCmd(opts),
		teamMemberCmd(opts, "add-member", "Add a user to a team you lead", true),
		teamMemberCmd(opts, "remove-member", "Remove a user from a team you lead", false))
	return cmd
}

func teamListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the teams you belong to",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			userID, err := a.requireSession(cmd)
			if err != nil {
				return err
			}

			teams := store.NewTeamSlice(a.api, a.log)
			if err := teams.Fetch(cmd.Context(), userID); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tLEADER\tMEMBERS")
			for _, t := range teams.Teams() {
				leader := "-"
				if t.Leader != nil {
					leader = t.Leader.Username
				}
				names := make([]string, len(t.Members))
				for i, m := range t.Members {
					names[i] = m.Username
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Name, leader, strings.Join(names, ", "))
			}
			return w.Flush()
		},
	}
}

func teamCreateCmd(opts *options) *cobra.Command {
	var in store.TeamInput
	var members []uint
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a team led by you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd); err != nil {
				return err
			}
			in.Name = args[0]
			for _, m := range members {
				in.Members = append(in.Members, uint64(m))
			}

			team, err := store.NewTeamSlice(a.api, a.log).Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.report(cmd, ui.SeveritySuccess, "Team #%d %s created", team.ID, team.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "Description")
	cmd.Flags().UintSliceVar(&members, "member", nil, "Member user id, repeatable")
	return cmd
}

func teamDeleteCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a team you lead",
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
			if !a.confirm(cmd, yes, "Delete team", fmt.Sprintf("team #%d will be removed and its tasks detached", id)) {
				a.report(cmd, ui.SeverityInfo, "Cancelled")
				return nil
			}
			if err := store.NewTeamSlice(a.api, a.log).Delete(cmd.Context(), id); err != nil {
				return err
			}
			a.report(cmd, ui.SeveritySuccess, "Team #%d deleted", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func teamMemberCmd(opts *options, use, short string, add bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [team-id] [user-id]",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			teamID, err := parseID(args[0])
			if err != nil {
				return err
			}
			userID, err := parseID(args[1])
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			me, err := a.requireSession(cmd)
			if err != nil {
				return err
			}

			// Membership changes send the full list, so load the current one first.
			teams := store.NewTeamSlice(a.api, a.log)
			if err := teams.Fetch(cmd.Context(), me); err != nil {
				return err
			}
			if add {
				_, err = teams.AddMember(cmd.Context(), teamID, userID)
			} else {
				_, err = teams.RemoveMember(cmd.Context(), teamID, userID)
			}
			if err != nil {
				return err
			}
			a.report(cmd, ui.SeveritySuccess, "Team #%d members updated", teamID)
			return nil
		},
	}
}
