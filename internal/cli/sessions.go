package cli

import (
	"context"
	"fmt"

	"shotcraft/internal/api"
	"shotcraft/internal/workflow"
	"shotcraft/pkg/logger"
)

// sessionFilterFor maps the --type flag to a list filter.
func sessionFilterFor(kind string) (workflow.SessionFilter, error) {
	switch kind {
	case "", "all":
		return workflow.AllSessions, nil
	case "fusion":
		return workflow.FusionSessions, nil
	case "shots":
		return workflow.ShotSessions, nil
	default:
		return nil, fmt.Errorf("unknown session type %q (expected all, fusion, or shots)", kind)
	}
}

// SessionsListCommand prints the saved sessions for a project.
func SessionsListCommand(ctx context.Context, app *App, projectID, kind string, offline bool) error {
	filter, err := sessionFilterFor(kind)
	if err != nil {
		return err
	}

	if offline {
		return sessionsListOffline(app, projectID, filter)
	}

	if err := app.RequireAuth(ctx); err != nil {
		return err
	}

	coord := workflow.NewCoordinator(app.Client, filter, noopRestoreTarget{})
	if cache, cacheErr := app.OpenCache(); cacheErr == nil {
		coord.SetSink(cache)
	} else {
		logger.Warnf("session cache unavailable: %v", cacheErr)
	}

	if err := coord.Refresh(ctx, projectID); err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	printSessions(coord.Sessions())
	return nil
}

func sessionsListOffline(app *App, projectID string, filter workflow.SessionFilter) error {
	cache, err := app.OpenCache()
	if err != nil {
		return err
	}
	sessions, fetchedAt, ok, err := cache.ListProject(projectID)
	if err != nil {
		return fmt.Errorf("failed to read session cache: %w", err)
	}
	if !ok {
		fmt.Println("No cached sessions. Run `shotcraft sessions list` while online first.")
		return nil
	}

	filtered := sessions[:0]
	for _, s := range sessions {
		if filter(s) {
			filtered = append(filtered, s)
		}
	}
	fmt.Println(dimStyle.Render(fmt.Sprintf("cached %s", fetchedAt.Format("2006-01-02 15:04:05"))))
	printSessions(filtered)
	return nil
}

func printSessions(sessions []api.Session) {
	if len(sessions) == 0 {
		fmt.Println("No sessions")
		return
	}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{s.ID, s.Name, s.Type, s.CreatedAt})
	}
	fmt.Print(renderTable([]string{"ID", "NAME", "TYPE", "CREATED"}, rows))
}

// SessionsShowCommand fetches and prints one session's restore payload.
func SessionsShowCommand(ctx context.Context, app *App, sessionID string) error {
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}

	details, kind, err := app.Client.ResolveSessionDetails(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	fmt.Printf("Session %s (%s, %s)\n", details.Session.Name, details.Session.ID, kind)
	fmt.Printf("Created: %s\n", details.Session.CreatedAt)
	if len(details.ImageFiles) > 0 {
		fmt.Println("Images:")
		for _, name := range details.ImageFiles {
			fmt.Printf("  %s\n", name)
		}
	}
	for key := range details.InputData {
		fmt.Printf("Input: %s\n", key)
	}
	for key := range details.OutputData {
		fmt.Printf("Output: %s\n", key)
	}
	return nil
}

// SessionsDeleteCommand deletes a saved session via the coordinator's
// two-step mark-then-confirm flow.
func SessionsDeleteCommand(ctx context.Context, app *App, projectID, sessionName string, skipConfirm bool) error {
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}

	coord := workflow.NewCoordinator(app.Client, workflow.AllSessions, noopRestoreTarget{})
	if err := coord.Refresh(ctx, projectID); err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}

	var target *api.Session
	for _, s := range coord.Sessions() {
		if s.Name == sessionName || s.ID == sessionName {
			match := s
			target = &match
			break
		}
	}
	if target == nil {
		return fmt.Errorf("session %q not found", sessionName)
	}

	coord.MarkForDeletion(*target)
	if !skipConfirm {
		ok, err := confirm(fmt.Sprintf("Delete session %s?", target.Name))
		if err != nil {
			return err
		}
		if !ok {
			coord.CancelDeletion()
			fmt.Println("Cancelled")
			return nil
		}
	}

	if err := coord.ConfirmDelete(ctx); err != nil {
		return err
	}
	logger.Infof("Deleted session %s", target.Name)
	return nil
}

// SessionsRenameCommand renames a saved session.
func SessionsRenameCommand(ctx context.Context, app *App, sessionName, newName string) error {
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}
	if err := app.Client.RenameSession(ctx, sessionName, newName); err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}
	logger.Infof("Renamed session %s to %s", sessionName, newName)
	return nil
}

// noopRestoreTarget satisfies the coordinator for commands that never select.
type noopRestoreTarget struct{}

func (noopRestoreTarget) Restore(*api.SessionDetails) error { return nil }
func (noopRestoreTarget) Reset()                            {}
