package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RCBiczok/terraces/internal/cli"
	terrerrors "github.com/RCBiczok/terraces/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		if code := terrerrors.ExitCode(err); code != terrerrors.ExitSuccess {
			os.Exit(code)
		}
		os.Exit(1)
	}
}
