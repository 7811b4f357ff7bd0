package patricia

import (
	"net/netip"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ListElement is one stored entry in a table dump: its CIDR, its value
// and the entries nested below it, suited for serialization because the
// order and nesting carry the supernet/subnet relation.
type ListElement[V any] struct {
	Cidr    netip.Prefix     `json:"cidr"`
	Value   V                `json:"value"`
	Subnets []ListElement[V] `json:"subnets,omitempty"`
}

// DumpList returns the stored entries as a nested list. Within one
// level entries are ordered by address, left trie child first.
func (t *tree[V]) DumpList() []ListElement[V] {
	return dumpListRec(t.head)
}

// dumpListRec collects the topmost active nodes of n's subtree, each
// with its own subnets nested below.
func dumpListRec[V any](n *node[V]) []ListElement[V] {
	if n == nil {
		return nil
	}
	if n.active {
		return []ListElement[V]{{
			Cidr:    n.prefix.Netip(),
			Value:   n.value,
			Subnets: append(dumpListRec(n.left), dumpListRec(n.right)...),
		}}
	}
	return append(dumpListRec(n.left), dumpListRec(n.right)...)
}

// MarshalJSON dumps the table as a nested array, not a map, because
// the order matters.
func (t *tree[V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.DumpList())
}
