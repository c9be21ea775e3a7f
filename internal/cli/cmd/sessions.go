package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/webbridge/internal/cli/styles"
	"github.com/bnema/webbridge/internal/domain/entity"
)

const (
	defaultSessionsLimit = 20
	recentSessionsLimit  = 200
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent host runs",
	Long: `List recent 'webbridge run' sessions with the number of calls they journaled
and how many of them failed.`,
	RunE: runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", defaultSessionsLimit, "maximum number of sessions to list")
}

func runSessions(_ *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	if app.Sessions == nil {
		return errJournalDisabled
	}

	renderer := styles.NewSessionsCLIRenderer(app.Theme)
	items, err := app.Sessions.Recent(app.Ctx(), sessionsLimit)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	fmt.Println(renderer.RenderList(items, sessionsLimit))
	return nil
}

type sessionLister interface {
	Recent(ctx context.Context, limit int) ([]entity.SessionSummary, error)
}

// resolveSessionID expands a short or partial session id. An empty query
// resolves to the empty id.
func resolveSessionID(ctx context.Context, sessions sessionLister, query string) (entity.SessionID, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return "", nil
	}
	if sessions == nil {
		return entity.SessionID(query), nil
	}

	items, err := sessions.Recent(ctx, recentSessionsLimit)
	if err != nil {
		return "", fmt.Errorf("list sessions: %w", err)
	}

	var matches []entity.SessionID
	for i := range items {
		s := items[i].Session
		if string(s.ID) == query || s.ShortID() == query {
			return s.ID, nil
		}
		if strings.Contains(strings.ToLower(string(s.ID)), query) {
			matches = append(matches, s.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no session matching '%s' found", query)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, 0, len(matches))
		for _, id := range matches {
			ids = append(ids, string(id))
		}
		return "", fmt.Errorf("multiple sessions match '%s': %s", query, strings.Join(ids, ", "))
	}
}
