package cmd

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/webbridge/internal/cli/model"
	"github.com/bnema/webbridge/internal/cli/styles"
	"github.com/bnema/webbridge/internal/domain/entity"
)

const defaultCallsLimit = 50

var (
	callsLimit   int
	callsTUI     bool
	callsSession string
	callsKeep    int
)

var errJournalDisabled = errors.New("call journal is disabled (set journal.enabled = true in config.toml)")

var callsCmd = &cobra.Command{
	Use:   "calls",
	Short: "List journaled invocations",
	Long: `List the most recent invocations recorded in the call journal.

Examples:
  webbridge calls                      # Last 50 calls
  webbridge calls -n 200 --tui         # Browse the last 200 calls interactively
  webbridge calls --session a7b3       # Calls of one host run`,
	RunE: runCalls,
}

var callsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest journaled calls",
	RunE:  runCallsPrune,
}

func init() {
	rootCmd.AddCommand(callsCmd)
	callsCmd.AddCommand(callsPruneCmd)

	callsCmd.Flags().IntVarP(&callsLimit, "limit", "n", defaultCallsLimit, "maximum number of calls to list")
	callsCmd.Flags().BoolVarP(&callsTUI, "tui", "t", false, "open the interactive browser")
	callsCmd.Flags().StringVarP(&callsSession, "session", "s", "", "only list calls of this session (full or short id)")
	callsPruneCmd.Flags().IntVarP(&callsKeep, "keep", "k", 0, "number of calls to keep (default: journal.max_entries)")
}

func runCalls(_ *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	ctx := app.Ctx()

	journal := app.Journal(ctx)
	if journal == nil {
		return errJournalDisabled
	}

	session, err := resolveSessionID(ctx, app.Sessions, callsSession)
	if err != nil {
		return err
	}

	if callsTUI {
		m := model.NewCallsModel(ctx, app.Theme, model.CallsModelConfig{
			Journal: journal,
			Session: session,
			Limit:   callsLimit,
		})
		_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	}

	var calls []entity.CallRecord
	if session != "" {
		calls, err = journal.RecentForSession(ctx, session, callsLimit)
	} else {
		calls, err = journal.Recent(ctx, callsLimit)
	}
	if err != nil {
		return fmt.Errorf("list calls: %w", err)
	}

	fmt.Println(styles.NewCallsCLIRenderer(app.Theme).RenderList(calls, callsLimit))
	return nil
}

func runCallsPrune(_ *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	ctx := app.Ctx()

	journal := app.Journal(ctx)
	if journal == nil {
		return errJournalDisabled
	}

	keep := callsKeep
	if keep <= 0 {
		keep = app.Config.Journal.MaxEntries
	}
	if keep <= 0 {
		return fmt.Errorf("nothing to prune: pass --keep or set journal.max_entries")
	}

	removed, err := journal.Prune(ctx, keep)
	if err != nil {
		return fmt.Errorf("prune calls: %w", err)
	}
	fmt.Println(styles.NewCallsCLIRenderer(app.Theme).RenderPruned(removed, keep))
	return nil
}
