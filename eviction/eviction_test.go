package eviction

import (
	"errors"
	"testing"

	"github.com/IvanBrykalov/ttlcache/policy"
	"github.com/IvanBrykalov/ttlcache/validate"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := New(0, policy.FIFO); !errors.Is(err, validate.ErrInvalidConfig) {
		t.Fatalf("maxSize=0: want ErrInvalidConfig, got %v", err)
	}
	if _, err := New(-3, policy.LRU); !errors.Is(err, validate.ErrInvalidConfig) {
		t.Fatalf("maxSize<0: want ErrInvalidConfig, got %v", err)
	}
	if _, err := New(3, policy.Name("ARC")); !errors.Is(err, validate.ErrInvalidConfig) {
		t.Fatalf("unknown policy: want ErrInvalidConfig, got %v", err)
	}
	for _, n := range policy.Names {
		p, err := New(3, n)
		if err != nil {
			t.Fatalf("New(3, %s): %v", n, err)
		}
		if p.Name() != n || p.MaxSize() != 3 {
			t.Fatalf("New(3, %s) = {%s, %d}", n, p.Name(), p.MaxSize())
		}
	}
}

func TestShouldEvict(t *testing.T) {
	t.Parallel()

	p, err := New(3, policy.FIFO)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		size int
		want bool
	}{{0, false}, {2, false}, {3, true}, {4, true}}
	for _, tc := range cases {
		got, err := p.ShouldEvict(tc.size)
		if err != nil || got != tc.want {
			t.Fatalf("ShouldEvict(%d) = %v, %v; want %v", tc.size, got, err, tc.want)
		}
	}
	if _, err := p.ShouldEvict(-1); !errors.Is(err, validate.ErrInvalidArgument) {
		t.Fatalf("ShouldEvict(-1): want ErrInvalidArgument, got %v", err)
	}
}

type lastRand struct{}

func (lastRand) IntN(n int) int { return n - 1 }

func TestEvict_Delegates(t *testing.T) {
	t.Parallel()

	keys := []string{"a", "b", "c"}
	meta := policy.Metadata{
		"a": {LastAccess: 3, AccessCount: 1},
		"b": {LastAccess: 1, AccessCount: 5},
		"c": {LastAccess: 2, AccessCount: 0},
	}
	want := map[policy.Name]string{
		policy.FIFO:   "a",
		policy.LRU:    "b",
		policy.MRU:    "a",
		policy.LFU:    "c",
		policy.RANDOM: "c",
	}
	for name, victim := range want {
		p, err := New(3, name, WithRand(lastRand{}))
		if err != nil {
			t.Fatal(err)
		}
		got, err := p.Evict(keys, meta)
		if err != nil || got != victim {
			t.Fatalf("%s: want %q, got %q err=%v", name, victim, got, err)
		}
	}
}

func TestNeedsMetadata(t *testing.T) {
	t.Parallel()

	want := map[policy.Name]bool{
		policy.FIFO: false, policy.RANDOM: false,
		policy.LRU: true, policy.MRU: true, policy.LFU: true,
	}
	for name, needs := range want {
		p, _ := New(1, name)
		if p.NeedsMetadata() != needs {
			t.Fatalf("%s NeedsMetadata = %v, want %v", name, p.NeedsMetadata(), needs)
		}
	}
}
