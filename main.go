package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lance6716/plan-diff/cmd"
	"github.com/lance6716/plan-diff/pkg/util"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigCh:
			fmt.Fprintf(os.Stderr, "received signal %s, stopping\n", sig)
			cancel()
		}
		// a second signal doesn't wait for in-flight EXPLAINs
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received signal %s again, exiting\n", sig)
		os.Exit(130)
	}()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, util.Diagnostic(err))
		cancel()
		os.Exit(1)
	}
}
