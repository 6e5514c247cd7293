package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	if u := a.currentUser(); u != nil {
		return fmt.Sprintf("(%s)", u.DisplayName())
	}
	return ""
}

// Root restores a stored session if there is one and runs the REPL on
// a.reader until the user exits or ctx ends.
func (a *App) Root(ctx context.Context) {
	a.log.Info(ctx, "starting", "api", a.config.APIBaseURL)
	printlnFn("Welcome to ScanPilot CLI (type 'help' for commands)")

	if a.isLoggedIn() {
		if u, err := a.authService.Profile(ctx); err == nil {
			a.setUser(u)
			printlnFn("Welcome back,", u.DisplayName())
		}
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
