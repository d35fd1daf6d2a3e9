package cache

import (
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IvanBrykalov/ttlcache/policy"
)

// benchmarkMix exercises a read/write mix against a warm cache.
// It uses parallel workers (RunParallel spawns GOMAXPROCS goroutines).
// String keys include strconv/concat costs and often allocate, which is fine
// for an end-to-end benchmark.
func benchmarkMix(b *testing.B, opt Options[string], readsPct int) {
	opt.DefaultTTL = time.Hour
	c, err := New(opt)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = c.Close() })

	// Preload to get a realistic hit-rate.
	for i := range 5_000 {
		_ = c.Set("k:"+strconv.Itoa(i), "v")
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed atomic.Uint64
	keyMask := (1 << 13) - 1

	b.RunParallel(func(pb *testing.PB) {
		// Independent RNG stream for each worker.
		r := rand.New(rand.NewPCG(seed.Add(1), 1))
		i := 0
		for pb.Next() {
			k := "k:" + strconv.Itoa(i&keyMask)
			if r.IntN(100) < readsPct {
				c.Get(k)
			} else {
				_ = c.Set(k, "v")
			}
			i++
		}
	})
}

func BenchmarkCache_Unbounded_90r10w(b *testing.B) { benchmarkMix(b, Options[string]{}, 90) }
func BenchmarkCache_Unbounded_50r50w(b *testing.B) { benchmarkMix(b, Options[string]{}, 50) }

// Bounded caches pay a linear victim scan on every insert of a new key.
func BenchmarkCache_Bounded(b *testing.B) {
	for _, name := range policy.Names {
		b.Run(string(name), func(b *testing.B) {
			benchmarkMix(b, Options[string]{MaxSize: 4_096, EvictionPolicy: name}, 90)
		})
	}
}
