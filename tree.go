package patricia

import (
	"fmt"
	"net/netip"
)

func (t *tree[V]) Size() int {
	return t.size
}

// SetHooks installs value lifecycle callbacks. Nodes share the trie's
// hooks, so existing nodes observe the change as well.
func (t *tree[V]) SetHooks(h Hooks[V]) {
	*t.hooks = h
}

// InsertOrFind descends to the deepest node consistent with p, computes
// the first divergence bit against its stored prefix and splices a new
// node there. Three shapes are possible: the new node hangs below the
// found node, the new node becomes an ancestor of the found subtree, or
// a glue node branches between the two.
func (t *tree[V]) InsertOrFind(p Prefix) (Node[V], error) {
	if p.Bitlen() > t.maxbits {
		return nil, fmt.Errorf("%w: %d exceeds table width %d", ErrInvalidLength, p.Bitlen(), t.maxbits)
	}

	if t.head == nil {
		n := newActive(p, t.hooks)
		t.head = n
		t.size++
		return n, nil
	}

	bitlen := p.Bitlen()

	// Descend by p's bits while glue nodes or shorter discriminating
	// bits remain. Glue nodes always carry two children, so the loop
	// can only break at a node holding a prefix.
	n := t.head
	for n.bit < bitlen || !n.active {
		var next *node[V]
		if n.bit < t.maxbits && p.bitAt(n.bit) != 0 {
			next = n.right
		} else {
			next = n.left
		}
		if next == nil {
			break
		}
		n = next
	}

	limit := n.bit
	if bitlen < limit {
		limit = bitlen
	}
	// The bits of the found node stand in for its whole subtree: every
	// node below shares them up to the node's discriminating bit.
	testAddr := n.prefix.addr
	differ := firstDifferBit(p.addr, testAddr, limit)

	// Back up to the highest node at or below the divergence point.
	parent := n.parent
	for parent != nil && parent.bit >= differ {
		n = parent
		parent = n.parent
	}

	if differ == bitlen && n.bit == bitlen {
		if n.active {
			return n, nil
		}
		// A glue node already branches exactly at p's length.
		n.prefix = p
		n.active = true
		t.size++
		return n, nil
	}

	nn := newActive(p, t.hooks)
	t.size++

	switch {
	case n.bit == differ:
		// p extends past n, hang the new node below it.
		nn.parent = n
		if n.bit < t.maxbits && p.bitAt(n.bit) != 0 {
			n.right = nn
		} else {
			n.left = nn
		}

	case bitlen == differ:
		// p is a strict prefix of everything below n, the new node
		// takes n's place and adopts it.
		if bitlen < t.maxbits && addrBit(testAddr, bitlen) != 0 {
			nn.right = n
		} else {
			nn.left = n
		}
		nn.parent = n.parent
		t.relink(n, nn)
		n.parent = nn

	default:
		// p and n's subtree diverge strictly before either ends,
		// branch them under a fresh glue node.
		glue := newGlue(differ, t.hooks)
		glue.parent = n.parent
		if differ < t.maxbits && p.bitAt(differ) != 0 {
			glue.right = nn
			glue.left = n
		} else {
			glue.left = nn
			glue.right = n
		}
		nn.parent = glue
		t.relink(n, glue)
		n.parent = glue
	}

	return nn, nil
}

// relink points whatever referenced old (its parent, or the trie head)
// at repl. The caller fixes up repl.parent and old.parent itself.
func (t *tree[V]) relink(old, repl *node[V]) {
	switch {
	case old.parent == nil:
		t.head = repl
	case old.parent.right == old:
		old.parent.right = repl
	default:
		old.parent.left = repl
	}
}

// Insert is InsertOrFind plus a value store.
func (t *tree[V]) Insert(p Prefix, val V) (Node[V], error) {
	n, err := t.InsertOrFind(p)
	if err != nil {
		return nil, err
	}
	n.SetValue(val)
	return n, nil
}

// Remove detaches an active node. With two children the node is merely
// demoted to glue and stays as a branch point. With fewer it is
// unlinked, and a parent glue node left with a single child is
// collapsed by promoting that child into its place.
func (t *tree[V]) Remove(v Node[V]) {
	n, ok := v.(*node[V])
	if !ok || n == nil || !n.active {
		return
	}

	t.size--

	if n.left != nil && n.right != nil {
		n.demote()
		return
	}

	if n.left == nil && n.right == nil {
		parent := n.parent
		n.demote()
		if parent == nil {
			t.head = nil
			return
		}

		var sibling *node[V]
		if parent.right == n {
			parent.right = nil
			sibling = parent.left
		} else {
			parent.left = nil
			sibling = parent.right
		}
		if parent.active {
			return
		}

		// The parent was glue and now has one child: promote the
		// sibling into the parent's position.
		t.relink(parent, sibling)
		sibling.parent = parent.parent
		return
	}

	// One child: splice the node out.
	child := n.anyChild()
	parent := n.parent
	child.parent = parent
	n.demote()

	if parent == nil {
		t.head = child
		return
	}
	if parent.right == n {
		parent.right = child
	} else {
		parent.left = child
	}
}

// SearchBest returns the most specific stored prefix covering p.
//
// The descent itself only narrows the candidate set: a deeper node may
// fail the mask test while a shallower one on the same path matches, so
// every prefix-bearing node passed is recorded and the record is
// unwound deepest first.
func (t *tree[V]) SearchBest(p Prefix) (Node[V], bool) {
	if t.head == nil {
		return nil, false
	}

	bitlen := p.Bitlen()
	var stack [MaxBits + 1]*node[V]
	cnt := 0

	n := t.head
	for n.bit < bitlen {
		if n.active {
			stack[cnt] = n
			cnt++
		}
		if p.bitAt(n.bit) != 0 {
			n = n.right
		} else {
			n = n.left
		}
		if n == nil {
			break
		}
	}
	if n != nil && n.active {
		stack[cnt] = n
		cnt++
	}

	for cnt > 0 {
		cnt--
		n = stack[cnt]
		if n.prefix.Bitlen() <= bitlen && maskedEqual(n.prefix.addr, p.addr, n.prefix.Bitlen()) {
			return n, true
		}
	}
	return nil, false
}

// SearchExact returns the node storing exactly p. The descent ignores
// bitlen until a node discriminating at or past it is reached; only
// that terminal node is a candidate.
func (t *tree[V]) SearchExact(p Prefix) (Node[V], bool) {
	if t.head == nil {
		return nil, false
	}

	bitlen := p.Bitlen()
	n := t.head
	for n.bit < bitlen {
		if p.bitAt(n.bit) != 0 {
			n = n.right
		} else {
			n = n.left
		}
		if n == nil {
			return nil, false
		}
	}

	if n.bit > bitlen || !n.active {
		return nil, false
	}
	if !maskedEqual(n.prefix.addr, p.addr, bitlen) {
		return nil, false
	}
	return n, true
}

func (t *tree[V]) LookupAddr(ip netip.Addr) (val V, ok bool) {
	p, err := FromAddr(ip)
	if err != nil {
		return val, false
	}
	return t.Get(p)
}

func (t *tree[V]) Get(p Prefix) (val V, ok bool) {
	n, ok := t.SearchBest(p)
	if !ok {
		return val, false
	}
	return n.Value(), true
}

func (t *tree[V]) Contains(p Prefix) bool {
	_, ok := t.SearchBest(p)
	return ok
}

func (t *tree[V]) HasKey(p Prefix) bool {
	_, ok := t.SearchExact(p)
	return ok
}

func (t *tree[V]) DeleteKey(p Prefix) bool {
	n, ok := t.SearchExact(p)
	if !ok {
		return false
	}
	t.Remove(n)
	return true
}

func (t *tree[V]) Keys() []Prefix {
	keys := make([]Prefix, 0, t.size)
	for it := t.Iterator(); it.HasNext(); {
		n, err := it.Next()
		if err != nil {
			break
		}
		keys = append(keys, n.Prefix())
	}
	return keys
}

func (t *tree[V]) Iterator() Iterator[V] {
	return &iterator[V]{
		next:  t.head,
		stack: make([]*node[V], 0, t.maxbits+1),
	}
}

func (it *iterator[V]) HasNext() bool {
	// Every pending subtree bottoms out in prefix-bearing leaves, so a
	// non-nil candidate guarantees another result.
	return it != nil && it.next != nil
}

// Next consumes nodes depth first, pre-order, until one carries a
// prefix. Glue nodes are stepped over invisibly.
func (it *iterator[V]) Next() (Node[V], error) {
	for it.next != nil {
		n := it.next

		switch {
		case n.left != nil:
			if n.right != nil {
				it.stack = append(it.stack, n.right)
			}
			it.next = n.left
		case n.right != nil:
			it.next = n.right
		case len(it.stack) > 0:
			it.next = it.stack[len(it.stack)-1]
			it.stack = it.stack[:len(it.stack)-1]
		default:
			it.next = nil
		}

		if n.active {
			return n, nil
		}
	}
	return nil, ErrNoMoreNodes
}
