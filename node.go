package patricia

func newActive[V any](p Prefix, hooks *Hooks[V]) *node[V] {
	return &node[V]{
		bit:    p.Bitlen(),
		prefix: p,
		active: true,
		hooks:  hooks,
	}
}

func newGlue[V any](bit int, hooks *Hooks[V]) *node[V] {
	return &node[V]{
		bit:   bit,
		hooks: hooks,
	}
}

// Prefix returns the stored prefix. It is meaningful only on nodes
// handed out by the trie; glue nodes never escape to callers.
func (n *node[V]) Prefix() Prefix {
	return n.prefix
}

func (n *node[V]) Value() V {
	return n.value
}

// SetValue stores val in the node's value slot, releasing any previous
// value and retaining the new one through the trie's hooks.
func (n *node[V]) SetValue(val V) {
	if n.hasValue && n.hooks.Release != nil {
		n.hooks.Release(n.value)
	}
	if n.hooks.Retain != nil {
		n.hooks.Retain(val)
	}
	n.value = val
	n.hasValue = true
}

func (n *node[V]) String() string {
	return n.prefix.String()
}

// demote strips the stored entry from n, leaving it as pure structure.
func (n *node[V]) demote() {
	if n.hasValue && n.hooks.Release != nil {
		n.hooks.Release(n.value)
	}
	var zero V
	n.value = zero
	n.hasValue = false
	n.prefix = Prefix{}
	n.active = false
}

// anyChild returns the single child of a one-child node.
func (n *node[V]) anyChild() *node[V] {
	if n.left != nil {
		return n.left
	}
	return n.right
}
