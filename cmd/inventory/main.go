package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"
)

const (
	exitOK            = 0
	exitFailure       = 1
	exitUsage         = 2
	exitLoginRequired = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			code = exitFailure
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := execute(ctx, args, stdin, stdout, stderr)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		if err != errUsage {
			fmt.Fprintf(stderr, "%s\n", err)
		}
		return exitUsage
	case errors.Is(err, errLoginRequired):
		return exitLoginRequired
	}
	log.Err(err).Msg("Command failed")
	fmt.Fprintf(stderr, "error: %s\n", err)
	return exitFailure
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprint(w, myFigure.String())
	fmt.Fprintln(w)
}
