package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/ttlcache/cache"
	"github.com/IvanBrykalov/ttlcache/config"
	"github.com/IvanBrykalov/ttlcache/metrics"
	"github.com/IvanBrykalov/ttlcache/metrics/otelmetric"
	"github.com/IvanBrykalov/ttlcache/metrics/prom"
	"github.com/IvanBrykalov/ttlcache/persist"
	"github.com/IvanBrykalov/ttlcache/policy"
)

type benchParams struct {
	maxSize  int
	policy   string
	ttl      time.Duration
	workers  int
	duration time.Duration
	readPct  int
	keys     int
	zipfS    float64
	zipfV    float64
	seed     uint64
	preload  int
	httpAddr string
	snapshot string
	schedule string
	otel     bool
}

func createBenchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "run a synthetic Zipf workload and report throughput and hit rate",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-size", Value: 10_000, Usage: "entry limit (0 = take it from --config)"},
			&cli.StringFlag{Name: "policy", Value: string(policy.LRU), Usage: "FIFO | LRU | LFU | MRU | RANDOM"},
			&cli.DurationFlag{Name: "ttl", Value: time.Minute, Usage: "TTL of written entries"},
			&cli.IntFlag{Name: "workers", Value: 2 * runtime.GOMAXPROCS(0), Usage: "worker goroutines"},
			&cli.DurationFlag{Name: "duration", Aliases: []string{"d"}, Value: 10 * time.Second, Usage: "benchmark duration"},
			&cli.IntFlag{Name: "reads", Value: 80, Usage: "read percentage [0..100]"},
			&cli.IntFlag{Name: "keys", Value: 100_000, Usage: "keyspace size"},
			&cli.FloatFlag{Name: "zipf-s", Value: 1.1, Usage: "Zipf s > 1 (skew)"},
			&cli.FloatFlag{Name: "zipf-v", Value: 1.0, Usage: "Zipf v >= 1"},
			&cli.IntFlag{Name: "seed", Value: int(time.Now().UnixNano()), Usage: "random seed"},
			&cli.IntFlag{Name: "preload", Usage: "entries written before the run (0 = max-size/2)"},
			&cli.StringFlag{Name: "http", Usage: "serve /metrics and /debug/pprof at addr (e.g. :8080); empty = disabled"},
			&cli.StringFlag{Name: "snapshot", Usage: "save the cache to this file on --schedule and at the end"},
			&cli.StringFlag{Name: "schedule", Value: "@every 5s", Usage: "cron spec for --snapshot"},
			&cli.BoolFlag{Name: "otel", Usage: "also record through an OpenTelemetry meter and print its totals"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			p := benchParams{
				maxSize:  cmd.Int("max-size"),
				policy:   cmd.String("policy"),
				ttl:      cmd.Duration("ttl"),
				workers:  cmd.Int("workers"),
				duration: cmd.Duration("duration"),
				readPct:  cmd.Int("reads"),
				keys:     cmd.Int("keys"),
				zipfS:    cmd.Float("zipf-s"),
				zipfV:    cmd.Float("zipf-v"),
				seed:     uint64(cmd.Int("seed")),
				preload:  cmd.Int("preload"),
				httpAddr: cmd.String("http"),
				snapshot: cmd.String("snapshot"),
				schedule: cmd.String("schedule"),
				otel:     cmd.Bool("otel"),
			}
			return cmdBench(ctx, cmd.Root().Writer, s, p, prometheus.NewRegistry())
		},
	}
}

func (p benchParams) check() error {
	switch {
	case p.keys < 1:
		return newUsageError("--keys must be at least 1, got %d", p.keys)
	case p.readPct < 0 || p.readPct > 100:
		return newUsageError("--reads must be within [0, 100], got %d", p.readPct)
	case p.zipfS <= 1 || p.zipfV < 1:
		return newUsageError("--zipf-s must be > 1 and --zipf-v >= 1")
	case p.duration <= 0:
		return newUsageError("--duration must be positive")
	case p.ttl <= 0:
		return newUsageError("--ttl must be positive")
	case p.maxSize < 0:
		return newUsageError("--max-size must not be negative")
	}
	return nil
}

func cmdBench(ctx context.Context, w io.Writer, s config.Settings, p benchParams, reg *prometheus.Registry) error {
	if err := p.check(); err != nil {
		return err
	}
	if p.workers <= 0 {
		p.workers = 1
	}

	pm, err := prom.New(reg, "ttlcache", "bench", nil)
	if err != nil {
		return err
	}
	var m metrics.Metrics = pm
	var reader *sdkmetric.ManualReader
	if p.otel {
		reader = sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()
		om, err := otelmetric.New(mp, attribute.String("cache", "bench"))
		if err != nil {
			return err
		}
		m = metrics.Multi(pm, om)
	}
	if p.maxSize > 0 {
		name, err := policy.ParseName(p.policy)
		if err != nil {
			return newUsageError("%v", err)
		}
		s.Cache.MaxSize = p.maxSize
		s.Cache.EvictionPolicy = string(name)
	}
	c, done, err := newCache(s, func(o *cache.Options[string]) { o.Metrics = m })
	if err != nil {
		return err
	}
	defer done()

	// ---- optional HTTP endpoints ----
	if p.httpAddr != "" {
		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: p.httpAddr, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(w, "http: %v\n", err)
			}
		}()
		defer func() { _ = srv.Close() }()
		fmt.Fprintf(w, "serving /metrics and /debug/pprof at %s\n", p.httpAddr)
	}

	// ---- optional periodic snapshot ----
	if p.snapshot != "" {
		sched, err := persist.NewScheduler(p.schedule, p.snapshot, c)
		if err != nil {
			return newUsageError("%v", err)
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := sched.Stop(stopCtx); err != nil {
				fmt.Fprintf(w, "snapshot: %v\n", err)
			}
		}()
	}

	// ---- preload for a realistic hit rate ----
	pl := p.preload
	if pl == 0 {
		pl = s.Cache.MaxSize / 2
	}
	for i := range pl {
		if err := c.SetWithTTL(benchKey(uint64(i)), "v"+strconv.Itoa(i), p.ttl); err != nil {
			return err
		}
	}

	// ---- load generation ----
	var reads, writes, hits, total atomic.Uint64
	runCtx, cancel := context.WithTimeout(ctx, p.duration)
	defer cancel()

	start := time.Now()
	g, gctx := errgroup.WithContext(runCtx)
	for id := range p.workers {
		g.Go(func() error {
			// Each worker owns its generator; rand.Rand is not goroutine-safe.
			r := rand.New(rand.NewPCG(p.seed, uint64(id)*9973))
			zipf := rand.NewZipf(r, p.zipfS, p.zipfV, uint64(p.keys-1))

			for gctx.Err() == nil {
				total.Add(1)
				k := benchKey(zipf.Uint64())
				if r.IntN(100) < p.readPct {
					reads.Add(1)
					if _, ok := c.Get(k); ok {
						hits.Add(1)
					}
					continue
				}
				writes.Add(1)
				if err := c.SetWithTTL(k, "v"+strconv.FormatUint(r.Uint64(), 10), p.ttl); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	// ---- report ----
	readsN, hitsN := reads.Load(), hits.Load()
	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hitsN) / float64(readsN) * 100
	}
	ops := total.Load()
	st := c.Stats()

	fmt.Fprintf(w, "policy=%s max=%d workers=%d keys=%d dur=%v seed=%d\n",
		s.Cache.EvictionPolicy, s.Cache.MaxSize, p.workers, p.keys, elapsed.Round(time.Millisecond), p.seed)
	fmt.Fprintf(w, "ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, writes.Load())
	fmt.Fprintf(w, "hits=%d  misses=%d  hit-rate=%.2f%%\n", hitsN, readsN-hitsN, hitRate)
	fmt.Fprintf(w, "len=%d evictions=%d expirations=%d\n", c.Len(), st.Evictions, st.Expirations)
	if reader != nil {
		line, err := otelTotals(ctx, reader)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "otel: %s\n", line)
	}
	return nil
}

// otelTotals collects reader once and renders every int64 sum as name=value.
func otelTotals(ctx context.Context, reader *sdkmetric.ManualReader) (string, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return "", err
	}
	var parts []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			parts = append(parts, fmt.Sprintf("%s=%d", m.Name, total))
		}
	}
	slices.Sort(parts)
	return strings.Join(parts, " "), nil
}

func benchKey(i uint64) string { return "k:" + strconv.FormatUint(i, 10) }
