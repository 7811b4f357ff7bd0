package patricia

import (
	"errors"
)

// MaxBits is the widest supported key, the IPv4 address width. Wider
// families are out of scope for this table.
const MaxBits = 32

var (
	ErrNoMoreNodes          = errors.New("there are no more nodes in the trie")
	ErrInvalidConfiguration = errors.New("invalid number of maximum bits; must be between 0 and 32, inclusive")
	ErrInvalidLength        = errors.New("prefix length out of range")
	ErrParse                = errors.New("malformed prefix")
)

type (
	// tree is the patricia trie behind the Trie interface. head is the
	// first real node, not a synthetic anchor; an empty tree has a nil
	// head. size counts prefix-bearing nodes only, glue nodes are
	// structural and invisible to callers.
	tree[V any] struct {
		head    *node[V]
		maxbits int
		size    int
		hooks   *Hooks[V]
	}

	// node tests one bit during descent. A node either stores a prefix
	// ("active") or exists purely to branch between two stored entries
	// that share a bit path (a glue node, which always has exactly two
	// children). parent is a non-owning back reference.
	node[V any] struct {
		bit    int
		prefix Prefix
		active bool

		value    V
		hasValue bool

		parent *node[V]
		left   *node[V]
		right  *node[V]

		hooks *Hooks[V]
	}

	// iterator walks the trie one node per Next call. next is the node
	// consumed by the following step, stack holds deferred right
	// siblings; both empty means the cursor is exhausted. The stack
	// depth is bounded by the trie depth, maxbits+1.
	iterator[V any] struct {
		next  *node[V]
		stack []*node[V]
	}
)
