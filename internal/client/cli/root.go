package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/evadocs/internal/client/session"
)

func (a *App) getStatus() string {
	s := ""
	if u := a.currentUser(); u != nil {
		s = u.Email + " "
	}
	if m := a.currentMode(); m != "" {
		s = s + string(m)
	}
	if a.signer != nil && a.signer.Simulation() {
		s = s + " sim"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// restoreSession picks up a stored, still valid session.
func (a *App) restoreSession(ctx context.Context) {
	if !a.auth.IsAuthenticated(ctx) {
		return
	}
	u, err := a.auth.CurrentUser(ctx)
	if err != nil {
		a.logger.Warn(ctx, "stored session unreadable", "error", err)
		return
	}
	a.setUser(u)
	printlnFn(fmt.Sprintf("Sesión activa: %s", u.DisplayName()))
}

func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printlnFn("Welcome to EVA ITB docs CLI (type 'help' for commands)")

	a.probe(ctx)
	if a.currentMode() == ModeOffline {
		printlnFn(fmt.Sprintf("%s (%s)", msgUnavailable, a.config.APIBaseURL))
	}
	a.restoreSession(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	interval := a.config.SessionCheckInterval
	if interval <= 0 {
		interval = session.DefaultCheckInterval
	}
	go a.StartSessionWatcher(ctx, interval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
