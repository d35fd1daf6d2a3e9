package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/ttlcache/cache"
	"github.com/IvanBrykalov/ttlcache/clock"
	"github.com/IvanBrykalov/ttlcache/config"
	"github.com/IvanBrykalov/ttlcache/flight"
	"github.com/IvanBrykalov/ttlcache/logging"
	"github.com/IvanBrykalov/ttlcache/persist"
	"github.com/IvanBrykalov/ttlcache/store"
	"github.com/IvanBrykalov/ttlcache/validate"
)

// demoEpoch pins the simulated clock of the demo so its output is stable.
var demoEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func createDemoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "walk through set, add, fetch and expiry on a simulated clock",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "snapshot",
				Aliases: []string{"o"},
				Usage:   "write the final cache contents to this file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			return cmdDemo(ctx, cmd.Root().Writer, s, cmd.String("snapshot"))
		},
	}
}

func createInspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "list the entries of a snapshot file",
		ArgsUsage: "<snapshot.json>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return newUsageError("inspect takes exactly one snapshot path")
			}
			return cmdInspect(cmd.Root().Writer, cmd.Args().First(), time.Now())
		},
	}
}

// loadSettings reads --config, or returns the defaults when it is unset.
func loadSettings(cmd *cli.Command) (config.Settings, error) {
	path := cmd.String("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newCache builds a string cache from s. The returned closer releases the
// logger if one was opened.
func newCache(s config.Settings, tune func(*cache.Options[string])) (cache.Cache[string], func(), error) {
	opt, err := config.CacheOptions[string](s)
	if err != nil {
		return nil, nil, err
	}
	closeLog := func() {}
	if opt.UseLogger {
		l, err := logging.New(s.LoggerOptions())
		if err != nil {
			return nil, nil, err
		}
		opt.Logger = l
		closeLog = func() { _ = l.Close() }
	}
	if tune != nil {
		tune(&opt)
	}
	c, err := cache.New(opt)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return c, func() {
		_ = c.Close()
		closeLog()
	}, nil
}

func cmdDemo(ctx context.Context, w io.Writer, s config.Settings, out string) error {
	clk := clock.NewManual(demoEpoch)
	c, done, err := newCache(s, func(o *cache.Options[string]) {
		o.Clock = clk
		o.Hooks = store.HookFuncs[string]{
			Delete: func(key string) { fmt.Fprintf(w, "  ~ removed %s\n", key) },
		}
	})
	if err != nil {
		return err
	}
	defer done()

	if err := c.Set("greeting", "hello"); err != nil {
		return err
	}
	if err := c.SetWithTTL("session", "abc123", 500*time.Millisecond); err != nil {
		return err
	}
	added, err := c.Add("greeting", "ignored")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "add greeting again -> %t\n", added)

	if v, ok := c.Get("greeting"); ok {
		fmt.Fprintf(w, "get greeting -> %s\n", v)
	}

	fetches := 0
	load := func(context.Context) (string, error) {
		fetches++
		return "user-from-origin", nil
	}
	for range 2 {
		v, err := c.GetOrFetch(ctx, "user:1", time.Minute, load)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "getOrFetch user:1 -> %s (fetches=%d)\n", v, fetches)
	}

	clk.Advance(time.Second)
	if _, ok := c.Get("session"); !ok {
		fmt.Fprintln(w, "get session after 1s -> expired")
	}

	st := c.Stats()
	fmt.Fprintf(w, "len=%d hits=%d misses=%d expirations=%d\n", c.Len(), st.Hits, st.Misses, st.Expirations)

	// Concurrent misses each run their fetch unless it goes through a flight.Group.
	var group flight.Group[string]
	var origin atomic.Int32
	slow := func(context.Context) (string, error) {
		origin.Add(1)
		time.Sleep(50 * time.Millisecond)
		return "quarterly", nil
	}
	var g errgroup.Group
	for range 4 {
		g.Go(func() error {
			_, err := c.GetOrFetch(ctx, "report:1", time.Minute, group.Wrap("report:1", slow))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(w, "4 concurrent getOrFetch report:1 -> %d origin call(s)\n", origin.Load())

	if out != "" {
		if err := persist.Save(out, c); err != nil {
			return err
		}
		fmt.Fprintf(w, "snapshot written to %s\n", out)
	}
	return nil
}

// snapshotEntry is the subset of a serialized entry inspect reads.
type snapshotEntry struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt int64           `json:"expiresAt"`
}

func cmdInspect(w io.Writer, path string, now time.Time) error {
	members, err := persist.Load(path)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tEXPIRES\tSTATE\tVALUE")
	live := 0
	for _, k := range keys {
		var e snapshotEntry
		if err := json.Unmarshal(members[k], &e); err != nil {
			return fmt.Errorf("%w: entry %q: %w", validate.ErrDeserialization, k, err)
		}
		exp := time.UnixMilli(e.ExpiresAt).UTC()
		state := "live"
		if now.After(exp) {
			state = "expired"
		} else {
			live++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", k, exp.Format(time.RFC3339), state, shorten(string(e.Value), 40))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d entries, %d live\n", len(keys), live)
	return nil
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
