// Package patricia implements an in-memory patricia trie keyed by IPv4
// prefixes. It answers longest-prefix-match and exact-prefix queries and
// is the index typically found under IP based access control lists,
// routing tables and geolocation lookups.
//
// The table is not safe for concurrent use; callers embedding it in a
// concurrent host must serialize mutation against reads and live cursors.
package patricia

import (
	"io"
	"net/netip"
)

// Trie is a longest-prefix-match table mapping IPv4 prefixes to values
// of type V.
type Trie[V any] interface {
	// InsertOrFind returns the node storing p, creating it if absent.
	// The call is idempotent: inserting an exact-equal prefix twice
	// returns the same node and leaves Size unchanged.
	InsertOrFind(p Prefix) (Node[V], error)
	// Insert stores val under p, overwriting any previous value.
	Insert(p Prefix, val V) (Node[V], error)
	// Remove detaches a node previously obtained from this trie's
	// searches. Passing nodes from another trie is undefined.
	Remove(n Node[V])

	// SearchBest returns the node with the longest stored prefix
	// covering p, or false if no stored prefix covers it.
	SearchBest(p Prefix) (Node[V], bool)
	// SearchExact returns the node whose stored prefix is bit-exact
	// equal to p, or false.
	SearchExact(p Prefix) (Node[V], bool)
	// LookupAddr is SearchBest for a host address.
	LookupAddr(ip netip.Addr) (V, bool)

	// Get returns the value of the best match for p.
	Get(p Prefix) (V, bool)
	// Contains reports whether some stored prefix covers p.
	Contains(p Prefix) bool
	// HasKey reports whether p itself is stored.
	HasKey(p Prefix) bool
	// DeleteKey removes the exact prefix p, reporting whether it was
	// present.
	DeleteKey(p Prefix) bool

	// Keys returns all stored prefixes in trie order.
	Keys() []Prefix
	Size() int
	Iterator() Iterator[V]

	// SetHooks installs value lifecycle callbacks, see Hooks.
	SetHooks(h Hooks[V])

	// Fprint writes a hierarchical CIDR tree diagram to w.
	Fprint(w io.Writer) error
	String() string
	// DumpList returns the stored entries as a nested list, most
	// general prefixes first, subnets nested below their supernet.
	DumpList() []ListElement[V]
	MarshalJSON() ([]byte, error)
}

// Iterator enumerates stored prefixes one node per call, depth first,
// left child before right. It keeps its position between calls; it is
// invalidated by structural mutation of the trie.
type Iterator[V any] interface {
	HasNext() bool
	Next() (Node[V], error)
}

// Node is a stored entry: a prefix together with one value slot.
type Node[V any] interface {
	Prefix() Prefix
	Value() V
	SetValue(val V)
	// String returns the canonical form "address/bitlen".
	String() string
}

// Hooks are optional callbacks around the value slot lifecycle. When
// set, Retain is called exactly once per store and Release exactly once
// per overwrite and per delete.
type Hooks[V any] struct {
	Retain  func(V)
	Release func(V)
}

// New returns an empty trie for prefixes up to maxbits bits,
// ErrInvalidConfiguration if maxbits is outside [0, 32].
func New[V any](maxbits int) (Trie[V], error) {
	if maxbits < 0 || maxbits > MaxBits {
		return nil, ErrInvalidConfiguration
	}
	return &tree[V]{maxbits: maxbits, hooks: &Hooks[V]{}}, nil
}
