package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	tlog "tank-tools/internal/log"
)

var errorColor = color.New(color.FgRed)

// PrintError writes "Error: <err>" to w, in red when colors are enabled
func PrintError(w io.Writer, err error) {
	errorColor.Fprintf(w, "Error: %v\n", err)
}

// Fail prints err to stderr and returns the exit code of a failed command
func Fail(err error) int {
	if tlog.UseColor("auto", os.Stderr) {
		errorColor.EnableColor()
	} else {
		errorColor.DisableColor()
	}
	PrintError(os.Stderr, err)
	return 1
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM
func SignalContext(logger log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			level.Warn(logger).Log("msg", "Received signal, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// PrintVersion writes the version line of a command
func PrintVersion(w io.Writer, name, version string) {
	fmt.Fprintf(w, "%s %s\n", name, version)
}
