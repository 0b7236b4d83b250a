// cmd/scrape/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/scrape/internal/cli"
)

func main() {
	// Cancel in-flight fetches on interrupt; the crawl returns what it has
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
