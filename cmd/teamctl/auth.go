package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yukikurage/teamtask/internal/client/session"
)

func loginCmd(opts *options) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [username|email]",
		Short: "Sign in and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if err := a.mgr.Login(cmd.Context(), args[0], password); err != nil {
				return err
			}
			st := a.holder.State()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", st.User.Username, st.Role())
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func registerCmd(opts *options) *cobra.Command {
	var in session.RegisterInput
	cmd := &cobra.Command{
		Use:   "register [username]",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			in.Username = args[0]
			if err := a.mgr.Register(cmd.Context(), in); err != nil {
				return err
			}
			st := a.holder.State()
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", st.User.Username, st.Role())
			for _, team := range st.Teams() {
				fmt.Fprintf(cmd.OutOrStdout(), "Team created: %s\n", team.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "Email address")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "Password")
	cmd.Flags().StringVar(&in.UserType, "type", "individual", "Account type (individual, corporate)")
	cmd.Flags().StringVar(&in.CompanyName, "company", "", "Company name for corporate accounts")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			a.mgr.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func whoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if _, err := a.requireSession(cmd); err != nil {
				return err
			}
			st := a.holder.State()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s> role=%s\n", st.User.Username, st.User.Email, st.Role())
			for _, team := range st.Teams() {
				fmt.Fprintf(out, "  team #%d %s\n", team.ID, team.Name)
			}
			return nil
		},
	}
}
