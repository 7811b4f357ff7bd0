package patricia

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// goldTable is the brute force reference: a flat slice searched
// linearly, obviously correct and immune to trie bookkeeping bugs.
type goldTable []goldEntry

type goldEntry struct {
	pfx Prefix
	val int
}

func (g *goldTable) insert(p Prefix, val int) {
	for i, e := range *g {
		if e.pfx.Equal(p) {
			(*g)[i].val = val
			return
		}
	}
	*g = append(*g, goldEntry{pfx: p, val: val})
}

func (g *goldTable) remove(p Prefix) bool {
	for i, e := range *g {
		if e.pfx.Equal(p) {
			*g = append((*g)[:i], (*g)[i+1:]...)
			return true
		}
	}
	return false
}

func (g goldTable) searchBest(p Prefix) (goldEntry, bool) {
	var best goldEntry
	found := false
	for _, e := range g {
		if e.pfx.Covers(p) && (!found || e.pfx.Bitlen() > best.pfx.Bitlen()) {
			best = e
			found = true
		}
	}
	return best, found
}

func randomPrefix4(prng *rand.Rand) Prefix {
	var addr [4]byte
	for i := range addr {
		addr[i] = byte(prng.Uint32())
	}
	p, err := Make(addr, prng.Intn(MaxBits+1))
	if err != nil {
		panic(err)
	}
	return p
}

// checkInvariants walks the whole trie and verifies the structural
// contract: glue nodes have exactly two children, active nodes
// discriminate on their own prefix length, child bit indices strictly
// increase downwards, parent back references are consistent, and the
// maintained size equals both the active node count and the cursor's
// result count.
func checkInvariants[V any](t *testing.T, trie Trie[V]) {
	t.Helper()
	tr := trie.(*tree[V])

	active := 0
	var walk func(n, parent *node[V])
	walk = func(n, parent *node[V]) {
		if n == nil {
			return
		}
		require.Same(t, parent, n.parent)
		if parent != nil {
			require.Greater(t, n.bit, parent.bit)
		}
		if n.active {
			active++
			require.Equal(t, n.prefix.Bitlen(), n.bit)
		} else {
			require.NotNil(t, n.left, "glue node with missing left child")
			require.NotNil(t, n.right, "glue node with missing right child")
		}
		walk(n.left, n)
		walk(n.right, n)
	}
	walk(tr.head, nil)

	require.Equal(t, tr.size, active)

	walked := 0
	for it := trie.Iterator(); it.HasNext(); walked++ {
		_, err := it.Next()
		require.NoError(t, err)
	}
	require.Equal(t, tr.size, walked)
}

func TestRandomInsertAgainstGold(t *testing.T) {
	prng := rand.New(rand.NewSource(42))

	trie, err := New[int](MaxBits)
	require.NoError(t, err)
	gold := goldTable{}

	for i := 0; i < 1_000; i++ {
		p := randomPrefix4(prng)
		gold.insert(p, i)
		_, err := trie.Insert(p, i)
		require.NoError(t, err)
	}

	require.Equal(t, len(gold), trie.Size())
	checkInvariants(t, trie)

	for i := 0; i < 2_000; i++ {
		probe := randomPrefix4(prng)
		want, wantOK := gold.searchBest(probe)
		got, ok := trie.SearchBest(probe)

		require.Equal(t, wantOK, ok, "probe %s", probe)
		if ok {
			require.True(t, want.pfx.Equal(got.Prefix()), "probe %s: gold %s trie %s", probe, want.pfx, got.Prefix())
			require.Equal(t, want.val, got.Value(), "probe %s", probe)
		}
	}
}

func TestRandomInsertDeleteAgainstGold(t *testing.T) {
	prng := rand.New(rand.NewSource(7))

	trie, err := New[int](MaxBits)
	require.NoError(t, err)
	gold := goldTable{}

	// keep a pool of inserted prefixes so deletes mostly hit
	var pool []Prefix

	for i := 0; i < 5_000; i++ {
		if len(pool) > 0 && prng.Intn(3) == 0 {
			j := prng.Intn(len(pool))
			p := pool[j]
			pool = append(pool[:j], pool[j+1:]...)

			require.Equal(t, gold.remove(p), trie.DeleteKey(p), "delete %s", p)
		} else {
			p := randomPrefix4(prng)
			pool = append(pool, p)
			gold.insert(p, i)
			_, err := trie.Insert(p, i)
			require.NoError(t, err)
		}

		if i%500 == 0 {
			checkInvariants(t, trie)
		}
	}

	checkInvariants(t, trie)
	require.Equal(t, len(gold), trie.Size())

	for i := 0; i < 2_000; i++ {
		probe := randomPrefix4(prng)
		want, wantOK := gold.searchBest(probe)
		got, ok := trie.SearchBest(probe)

		require.Equal(t, wantOK, ok, "probe %s", probe)
		if ok {
			require.True(t, want.pfx.Equal(got.Prefix()), "probe %s: gold %s trie %s", probe, want.pfx, got.Prefix())
		}
	}
}

func TestExactRoundTripRandom(t *testing.T) {
	prng := rand.New(rand.NewSource(1))

	trie, err := New[int](MaxBits)
	require.NoError(t, err)

	for i := 0; i < 1_000; i++ {
		p := randomPrefix4(prng)
		ins, err := trie.InsertOrFind(p)
		require.NoError(t, err)

		found, ok := trie.SearchExact(p)
		require.True(t, ok, "round trip %s", p)
		require.Same(t, ins.(*node[int]), found.(*node[int]), "round trip %s", p)
	}
}
