// Package cli provides the command-line interface for the scrape application.
package cli

import (
	"context"

	"github.com/law-makers/scrape/internal/app"
	"github.com/spf13/cobra"
)

// ctxKey is used for storing the application in cobra command contexts
type ctxKey struct{}

// SetApp stores the Application in the command's context
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, ctxKey{}, a))
}

// GetAppFromCmd retrieves the Application stored by SetApp, or nil
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	if cmd == nil || cmd.Context() == nil {
		return nil
	}
	a, _ := cmd.Context().Value(ctxKey{}).(*app.Application)
	return a
}
