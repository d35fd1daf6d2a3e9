// Package flight adds opt-in request coalescing on top of
// golang.org/x/sync/singleflight.
//
// The cache itself never coalesces: two concurrent misses for the same key
// both run their fetch. Wrap a fetch function with a Group when duplicate
// origin calls are undesirable.
package flight

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Group coalesces concurrent calls for the same key so that fn runs at most
// once per in-flight window.
//
// Concurrency notes:
//   - The first caller for a key becomes the leader and runs fn with its own ctx.
//   - Cancelling ctx in a follower unblocks only that follower; the leader
//     keeps running. Thread ctx into fn if the work itself must stop.
//   - Once the leader returns, the key is forgotten; the next call starts a
//     fresh fetch.
type Group[V any] struct {
	g singleflight.Group
}

// Do runs fn once for key among concurrent callers and returns the shared
// result. shared reports whether the result was delivered to more than one caller.
func (g *Group[V]) Do(ctx context.Context, key string, fn func(context.Context) (V, error)) (v V, shared bool, err error) {
	ch := g.g.DoChan(key, func() (any, error) {
		return fn(ctx)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return v, r.Shared, r.Err
		}
		// A nil interface V arrives as a nil any.
		v, _ = r.Val.(V)
		return v, r.Shared, nil
	case <-ctx.Done():
		return v, false, ctx.Err()
	}
}

// Forget drops the in-flight marker for key so the next Do starts a new call.
func (g *Group[V]) Forget(key string) { g.g.Forget(key) }

// Wrap returns a fetch function for key that shares in-flight results through g.
// Its shape matches what Cache.GetOrFetch expects.
func (g *Group[V]) Wrap(key string, fetch func(context.Context) (V, error)) func(context.Context) (V, error) {
	return func(ctx context.Context) (V, error) {
		v, _, err := g.Do(ctx, key, fetch)
		return v, err
	}
}
