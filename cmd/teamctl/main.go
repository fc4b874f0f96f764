package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yukikurage/teamtask/internal/client"
	"github.com/yukikurage/teamtask/internal/client/session"
	"github.com/yukikurage/teamtask/internal/client/ui"
	"github.com/yukikurage/teamtask/internal/logger"
	"go.uber.org/zap"
)

var Version = "dev"

type options struct {
	apiURL    string
	stateFile string
	logLevel  string
}

// app is the wired client used by every command.
type app struct {
	log    *zap.Logger
	api    *client.Client
	holder *session.Holder
	mgr    *session.Manager
	toast  *ui.Toast
	dialog *ui.Dialog
}

func newApp(ctx context.Context, opts *options) (*app, error) {
	log := logger.New("teamctl", "production", opts.logLevel)

	holder := session.NewHolder()
	api := client.New(client.Config{BaseURL: opts.apiURL}, holder, log)
	mgr := session.NewManager(api, holder, session.NewFileStorage(opts.stateFile), log)
	if err := mgr.Restore(ctx); err != nil {
		return nil, err
	}
	return &app{
		log:    log,
		api:    api,
		holder: holder,
		mgr:    mgr,
		toast:  ui.NewToast(),
		dialog: ui.NewDialog(),
	}, nil
}

// requireSession returns the signed-in user id or an error telling the user to log in.
func (a *app) requireSession(cmd *cobra.Command) (uint64, error) {
	d := ui.Guard(ui.GuardInput{
		Authenticated: a.holder.IsAuthenticated(),
		Requested:     cmd.CommandPath(),
	})
	if d.Action != ui.ActionRender {
		return 0, fmt.Errorf("%s needs a session, run 'teamctl login' first", d.From)
	}
	return a.holder.UserID(), nil
}

// report prints a one-line result through the toast state.
func (a *app) report(cmd *cobra.Command, severity ui.Severity, format string, args ...interface{}) {
	a.toast.Show(fmt.Sprintf(format, args...), severity)
	st := a.toast.State()
	fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", st.Severity, st.Message)
	a.toast.Hide()
}

// confirm asks a yes/no question on stdin unless yes is set.
func (a *app) confirm(cmd *cobra.Command, yes bool, title, content string) bool {
	if yes {
		return true
	}
	ok := false
	a.dialog.Open(ui.DialogRequest{
		Title:        title,
		Content:      content,
		ConfirmLabel: "y",
		CancelLabel:  "N",
		OnConfirm:    func() { ok = true },
	})
	st := a.dialog.State()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s [%s/%s] ", st.Title, st.Content, st.ConfirmLabel, st.CancelLabel)

	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		a.dialog.Confirm()
	default:
		a.dialog.Cancel()
	}
	return ok
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "teamctl",
		Short:         "teamctl - command line client for the teamtask API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", envOr("TEAMTASK_API_URL", client.DefaultBaseURL), "API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.stateFile, "state-file", envOr("TEAMTASK_STATE_FILE", defaultStateFile()), "Session file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(loginCmd(opts))
	rootCmd.AddCommand(registerCmd(opts))
	rootCmd.AddCommand(logoutCmd(opts))
	rootCmd.AddCommand(whoamiCmd(opts))
	rootCmd.AddCommand(tasksCmd(opts))
	rootCmd.AddCommand(teamsCmd(opts))
	rootCmd.AddCommand(notificationsCmd(opts))
	rootCmd.AddCommand(watchCmd(opts))
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".teamtask-session.json"
	}
	return filepath.Join(dir, "teamtask", "session.json")
}
