package store

import "github.com/IvanBrykalov/ttlcache/policy"

// node is an intrusive doubly linked list element owned by a Store.
// It keeps the key/value alongside list links and the access facts read by
// metadata-aware eviction strategies.
type node[V any] struct {
	key string
	val V

	// Intrusive list links in insertion order: head is the oldest key.
	prev *node[V]
	next *node[V]

	// UnixNano of the last Set or Get.
	lastAccess int64
	// Reads since insertion. Updates via Set keep it.
	accessCount uint64
}

func (n *node[V]) meta() policy.Meta {
	return policy.Meta{LastAccess: n.lastAccess, AccessCount: n.accessCount}
}

// -------------------- list ops (mu held) --------------------

// pushBack appends n as the newest key in O(1).
func (s *Store[V]) pushBack(n *node[V]) {
	n.next = nil
	n.prev = s.tail
	if s.tail != nil {
		s.tail.next = n
	}
	s.tail = n
	if s.head == nil {
		s.head = n
	}
	s.m[n.key] = n
}

// unlink removes n from both the list and the map in O(1).
func (s *Store[V]) unlink(n *node[V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.head == n {
		s.head = n.next
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
	delete(s.m, n.key)
}

// keysLocked returns keys oldest first.
func (s *Store[V]) keysLocked() []string {
	out := make([]string, 0, len(s.m))
	for n := s.head; n != nil; n = n.next {
		out = append(out, n.key)
	}
	return out
}

func (s *Store[V]) metaLocked() policy.Metadata {
	md := make(policy.Metadata, len(s.m))
	for n := s.head; n != nil; n = n.next {
		md[n.key] = n.meta()
	}
	return md
}
