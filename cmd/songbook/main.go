package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"songbook/internal/cli"
)

const (
	exitSuccess     = 0
	exitFailure     = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		fmt.Fprintln(os.Stderr, "Interrupted (Ctrl-C)")
		cancel()
		<-sigc
		os.Exit(exitInterrupted)
	}()

	err := cli.Execute(ctx, os.Args[1:])
	if ctx.Err() != nil {
		os.Exit(exitInterrupted)
	}
	if err != nil {
		if cli.IsUsage(err) {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(exitUsage)
		}
		if errors.Is(err, context.Canceled) {
			os.Exit(exitInterrupted)
		}
		fmt.Fprintln(os.Stderr, "Error:", err.Error())
		os.Exit(exitFailure)
	}
	os.Exit(exitSuccess)
}
