// Command ttlcache demonstrates, benchmarks and inspects the cache.
//
//	ttlcache demo    [--config file] [--snapshot out.json]
//	ttlcache bench   [--max-size N --policy LRU] [--workers N] [--duration 10s]
//	ttlcache inspect <snapshot.json>
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// Version can be injected with -ldflags "-X main.Version=1.0.0".
var Version = "0.1.0-dev"

func main() {
	os.Exit(run())
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:    "ttlcache",
		Usage:   "in-process TTL cache toolbox",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML or JSON settings file",
			},
		},
		Commands: []*cli.Command{
			createDemoCommand(),
			createBenchCommand(),
			createInspectCommand(),
		},
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := createApp().Run(ctx, os.Args); err != nil {
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(os.Stderr, "usage: %v\n", ue)
			return 2
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// usageError marks bad arguments; run maps it to exit code 2.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func newUsageError(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}
