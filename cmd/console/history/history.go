package historycmder

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/console/cmd/console/sqlitepath"
	"github.com/papercomputeco/console/pkg/transcript"
)

const historyLongDesc string = `List recorded chat sessions, or print one session's transcript.

Without arguments, prints every session in the local transcript
database, most recent first. With a session ID, prints that session's
full prompt/reply transcript.

Examples:
  console history
  console history 3f1c9a52-8b0e-4f7d-9c6a-2d4e8b1a0f35
  console history --sqlite ./transcripts.db`

const historyShortDesc string = "Show recorded chat sessions"

type historyCommander struct {
	sqlitePath string
}

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := ""
			if len(args) == 1 {
				sessionID = args[0]
			}
			return cmder.run(cmd.Context(), cmd, sessionID)
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to transcript SQLite database")

	return cmd
}

var (
	faintStyle = lipgloss.NewStyle().Faint(true)
	roleStyle  = lipgloss.NewStyle().Bold(true)
)

func (c *historyCommander) run(ctx context.Context, cmd *cobra.Command, sessionID string) error {
	dbPath, err := sqlitepath.ResolveSQLitePath(c.sqlitePath)
	if err != nil {
		return fmt.Errorf("could not resolve transcript database: %w", err)
	}

	store, err := transcript.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("could not open transcript database %s: %w", dbPath, err)
	}
	defer store.Close()

	if sessionID == "" {
		return c.listSessions(ctx, cmd, store)
	}
	return c.printSession(ctx, cmd, store, sessionID)
}

func (c *historyCommander) listSessions(ctx context.Context, cmd *cobra.Command, store transcript.Store) error {
	sessions, err := store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("could not list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded sessions.")
		return nil
	}

	for _, s := range sessions {
		exchanges, err := store.Exchanges(ctx, s.ID)
		if err != nil {
			return fmt.Errorf("could not read session %s: %w", s.ID, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
			s.ID,
			faintStyle.Render(s.StartedAt.Local().Format("2006-01-02 15:04")),
			faintStyle.Render(fmt.Sprintf("%s, %d exchanges", s.Model, len(exchanges))),
		)
	}

	return nil
}

func (c *historyCommander) printSession(ctx context.Context, cmd *cobra.Command, store transcript.Store, sessionID string) error {
	session, err := store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	exchanges, err := store.Exchanges(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("could not read session %s: %w", sessionID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Session %s (%s, started %s)\n\n",
		session.ID, session.Model, session.StartedAt.Local().Format("2006-01-02 15:04"))

	for _, e := range exchanges {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n\n", roleStyle.Render("You:"), e.Prompt)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n\n", roleStyle.Render("Assistant:"), e.Reply)
	}

	return nil
}
