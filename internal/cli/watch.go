package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	clientsync "shotcraft/internal/sync"
	"shotcraft/internal/workflow"
	"shotcraft/pkg/logger"
)

// SessionsWatchCommand keeps the session list refreshed on the configured
// interval, re-rendering after every change. SIGCONT (resuming from a shell
// suspend) triggers an immediate refetch, mirroring the tab-refocus refresh
// of the web UI. Ctrl-C stops the watcher.
func SessionsWatchCommand(ctx context.Context, app *App, projectID, kind string) error {
	filter, err := sessionFilterFor(kind)
	if err != nil {
		return err
	}
	if err := app.RequireAuth(ctx); err != nil {
		return err
	}

	coord := workflow.NewCoordinator(app.Client, filter, noopRestoreTarget{})
	if cache, cacheErr := app.OpenCache(); cacheErr == nil {
		coord.SetSink(cache)
	}

	render := func() {
		fmt.Print("\033[H\033[2J")
		fmt.Println(headerStyle.Render(fmt.Sprintf("shotcraft sessions (every %s, Ctrl-C to stop)", app.Config.PollInterval)))
		if msg := coord.LastError(); msg != "" && coord.State() == workflow.ListError {
			fmt.Println(errorStyle.Render(msg))
		}
		printSessions(coord.Sessions())
	}

	// Initial fetch before the poller takes over.
	if err := coord.Refresh(ctx, projectID); err != nil {
		logger.Warnf("initial refresh failed: %v", err)
	}
	render()

	poller := clientsync.NewPoller(app.Config.PollInterval, func(pollCtx context.Context) {
		if err := coord.Refresh(pollCtx, projectID); err != nil {
			logger.Debugf("refresh failed: %v", err)
		}
		render()
	})

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	poller.Start(watchCtx)
	defer poller.Stop()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	resumed := make(chan os.Signal, 1)
	signal.Notify(resumed, syscall.SIGCONT)
	defer signal.Stop(resumed)

	for {
		select {
		case <-watchCtx.Done():
			return nil
		case <-interrupt:
			return nil
		case <-resumed:
			logger.Debugf("resumed, refreshing now")
			poller.Resume()
		}
	}
}
