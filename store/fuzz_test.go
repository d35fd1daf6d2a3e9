package store

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/IvanBrykalov/ttlcache/eviction"
	"github.com/IvanBrykalov/ttlcache/policy"
)

// Fuzz Set/Get/Delete plus a JSON round trip under arbitrary string inputs.
// Key/value lengths are capped to keep memory bounded.
func FuzzStore_SetGetDelete(f *testing.F) {
	f.Add("a", "1")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add(`quote"key`, "\x00")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}
		if !utf8.ValidString(k) || !utf8.ValidString(v) {
			t.Skip("JSON encoding replaces invalid UTF-8")
		}
		if strings.TrimSpace(k) == "" {
			k = "k" + k
		}

		p, _ := eviction.New(4, policy.FIFO)
		s, _ := New[string](WithEviction[string](p))

		if err := s.Set(k, v); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if got, ok := s.Get(k); !ok || got != v {
			t.Fatalf("after Set/Get: want %q, got %q ok=%v", v, got, ok)
		}

		data, err := s.MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON: %v", err)
		}
		s2, _ := New[string]()
		if err := s2.RestoreJSON(data); err != nil {
			t.Fatalf("RestoreJSON(%s): %v", data, err)
		}
		data2, _ := s2.MarshalJSON()
		if string(data) != string(data2) {
			t.Fatalf("round trip mismatch: %s vs %s", data, data2)
		}

		if !s.Delete(k) {
			t.Fatal("Delete must return true")
		}
		if s.Has(k) || s.Len() != 0 {
			t.Fatal("key must be absent after Delete")
		}
	})
}
