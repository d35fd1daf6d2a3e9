package flight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestGroup_Coalesces(t *testing.T) {
	t.Parallel()

	var (
		g       Group[int]
		calls   atomic.Int32
		release = make(chan struct{})
		started sync.WaitGroup
	)
	const n = 16
	started.Add(n)

	fetch := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	var eg errgroup.Group
	for range n {
		eg.Go(func() error {
			started.Done()
			v, _, err := g.Do(context.Background(), "k", fetch)
			if err != nil {
				return err
			}
			if v != 7 {
				return errors.New("unexpected value")
			}
			return nil
		})
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	if err := eg.Wait(); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if c := calls.Load(); c < 1 || c > n {
		t.Fatalf("fetch calls = %d", c)
	}
	if c := calls.Load(); c != 1 {
		t.Logf("fetch ran %d times; some callers arrived after the leader returned", c)
	}
}

func TestGroup_FollowerCancel(t *testing.T) {
	t.Parallel()

	var g Group[string]
	release := make(chan struct{})
	leaderDone := make(chan struct{})

	go func() {
		defer close(leaderDone)
		v, _, err := g.Do(context.Background(), "k", func(context.Context) (string, error) {
			<-release
			return "v", nil
		})
		if err != nil || v != "v" {
			t.Errorf("leader got %q, %v", v, err)
		}
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := g.Do(ctx, "k", func(context.Context) (string, error) { return "other", nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("follower want context.Canceled, got %v", err)
	}

	close(release)
	<-leaderDone
}

func TestGroup_ErrorPropagates(t *testing.T) {
	t.Parallel()

	var g Group[int]
	boom := errors.New("boom")
	fetch := g.Wrap("k", func(context.Context) (int, error) { return 0, boom })
	if _, err := fetch(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	// Key is forgotten after the leader returns.
	fetch = g.Wrap("k", func(context.Context) (int, error) { return 3, nil })
	if v, err := fetch(context.Background()); err != nil || v != 3 {
		t.Fatalf("second call = %d, %v", v, err)
	}
}

// A nil result for an interface type comes back as nil.
func TestGroup_NilInterfaceResult(t *testing.T) {
	t.Parallel()

	var g Group[error]
	v, _, err := g.Do(context.Background(), "k", func(context.Context) (error, error) {
		return nil, nil
	})
	if err != nil || v != nil {
		t.Fatalf("Do = %v, %v; want nil, nil", v, err)
	}

	var ga Group[any]
	got, err := ga.Wrap("k", func(context.Context) (any, error) { return nil, nil })(context.Background())
	if err != nil || got != nil {
		t.Fatalf("Wrap = %v, %v; want nil, nil", got, err)
	}
}
