package fifo

import (
	"errors"
	"testing"

	"github.com/IvanBrykalov/ttlcache/validate"
)

// FIFO ignores metadata entirely and returns the head of the sequence.
func TestFIFO_FirstKey(t *testing.T) {
	t.Parallel()

	got, err := New().Evict([]string{"a", "b", "c"}, nil)
	if err != nil || got != "a" {
		t.Fatalf("want a, got %q err=%v", got, err)
	}
	if _, err := New().Evict(nil, nil); !errors.Is(err, validate.ErrInvalidArgument) {
		t.Fatalf("empty keys: want ErrInvalidArgument, got %v", err)
	}
}
