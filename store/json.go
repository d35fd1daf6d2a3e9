package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/IvanBrykalov/ttlcache/validate"
)

// MarshalJSON encodes the store as a flat object in insertion order.
func (s *Store[V]) MarshalJSON() ([]byte, error) {
	keys, vals := s.snapshot()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(vals[i])
		if err != nil {
			return nil, fmt.Errorf("store: encode %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RestoreJSON replaces the contents with the object in data.
//
// The whole input is decoded and every key validated before the store is
// touched; any failure is reported as ErrDeserialization and leaves the store
// as it was. Keys are then inserted through Set in document order (clear
// first), so a bounded store may evict while restoring.
func (s *Store[V]) RestoreJSON(data []byte) error {
	return s.RestoreJSONFunc(data, nil)
}

// RestoreJSONFunc is RestoreJSON with an extra check run on every decoded
// member before the store is touched. A check error aborts the restore and is
// reported as ErrDeserialization.
func (s *Store[V]) RestoreJSONFunc(data []byte, check func(key string, v V) error) error {
	keys, vals, err := decodeObject[V](data)
	if err != nil {
		return err
	}
	for i, k := range keys {
		if err := s.checkKey(k); err != nil {
			return fmt.Errorf("%w: %w", validate.ErrDeserialization, err)
		}
		if check == nil {
			continue
		}
		if err := check(k, vals[i]); err != nil {
			return fmt.Errorf("%w: key %q: %w", validate.ErrDeserialization, k, err)
		}
	}
	return s.replace(keys, vals)
}

// decodeObject reads one JSON object keeping member order. A repeated key
// keeps its first position and its last value.
func decodeObject[V any](data []byte) ([]string, []V, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", validate.ErrDeserialization, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("%w: snapshot is not a JSON object", validate.ErrDeserialization)
	}

	var (
		keys []string
		vals []V
		pos  = make(map[string]int)
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", validate.ErrDeserialization, err)
		}
		k, _ := tok.(string)
		var v V
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("%w: key %q: %w", validate.ErrDeserialization, k, err)
		}
		if i, dup := pos[k]; dup {
			vals[i] = v
			continue
		}
		pos[k] = len(keys)
		keys = append(keys, k)
		vals = append(vals, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", validate.ErrDeserialization, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: trailing data after object", validate.ErrDeserialization)
	}
	return keys, vals, nil
}
