package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roasbeef/rebase-branch/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)

	code := commands.Execute(ctx)
	stop()

	os.Exit(code)
}
