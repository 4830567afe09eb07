package book

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ascendingPrices(t *LevelTree) []int64 {
	var out []int64
	t.Ascend(func(lvl *Level) bool {
		out = append(out, lvl.Price)
		return true
	})
	return out
}

func TestUpsertKeepsSortedOrder(t *testing.T) {
	tree := NewLevelTree()
	tree.Upsert(10000)
	tree.Upsert(10200)

	// A price strictly between two resting levels must land between
	// them, not merely be compared against the front.
	tree.Upsert(10100)

	assert.Equal(t, []int64{10000, 10100, 10200}, ascendingPrices(tree))
	assert.Equal(t, 3, tree.Len())
}

func TestUpsertIsIdempotentPerPrice(t *testing.T) {
	tree := NewLevelTree()
	a := tree.Upsert(10000)
	b := tree.Upsert(10000)

	assert.Same(t, a, b)
	assert.Equal(t, 1, tree.Len())
}

func TestMinMax(t *testing.T) {
	tree := NewLevelTree()
	assert.Nil(t, tree.Min())
	assert.Nil(t, tree.Max())

	for _, p := range []int64{10500, 9900, 10200, 10000, 10700} {
		tree.Upsert(p)
	}
	require.NotNil(t, tree.Min())
	require.NotNil(t, tree.Max())
	assert.Equal(t, int64(9900), tree.Min().Price)
	assert.Equal(t, int64(10700), tree.Max().Price)
}

func TestDelete(t *testing.T) {
	tree := NewLevelTree()
	for _, p := range []int64{3, 1, 2, 5, 4} {
		tree.Upsert(p)
	}

	assert.True(t, tree.Delete(3))
	assert.False(t, tree.Delete(3), "second delete reports absence")
	assert.Equal(t, []int64{1, 2, 4, 5}, ascendingPrices(tree))
	assert.Nil(t, tree.Find(3))
	assert.NotNil(t, tree.Find(4))
}

func TestDescendMirrorsAscend(t *testing.T) {
	tree := NewLevelTree()
	for _, p := range []int64{7, 2, 9, 4, 1} {
		tree.Upsert(p)
	}

	var desc []int64
	tree.Descend(func(lvl *Level) bool {
		desc = append(desc, lvl.Price)
		return true
	})
	assert.Equal(t, []int64{9, 7, 4, 2, 1}, desc)
}

func TestAscendEarlyStop(t *testing.T) {
	tree := NewLevelTree()
	for p := int64(1); p <= 10; p++ {
		tree.Upsert(p)
	}

	visited := 0
	tree.Ascend(func(lvl *Level) bool {
		visited++
		return visited < 3
	})
	assert.Equal(t, 3, visited)
}

func TestRandomizedInsertDelete(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tree := NewLevelTree()
	ref := map[int64]bool{}

	for i := 0; i < 5000; i++ {
		p := int64(rng.Intn(500))
		if rng.Intn(3) == 0 {
			assert.Equal(t, ref[p], tree.Delete(p))
			delete(ref, p)
		} else {
			tree.Upsert(p)
			ref[p] = true
		}
	}

	require.Equal(t, len(ref), tree.Len())
	prices := ascendingPrices(tree)
	for i := 1; i < len(prices); i++ {
		assert.Less(t, prices[i-1], prices[i], "ascend out of order at %d", i)
	}
	for _, p := range prices {
		assert.True(t, ref[p])
	}
}
