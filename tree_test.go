package bptree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/bptree"
	"github.com/KilimcininKorOglu/bptree/ordering"
	"github.com/KilimcininKorOglu/bptree/query"
	"github.com/KilimcininKorOglu/bptree/storage"
)

func newTestTree(t *testing.T, order int) *bptree.Tree[string, string] {
	t.Helper()
	backing := storage.NewMemory[string, string]()
	cmp := ordering.Natural[string]()
	tree := bptree.New[string, string](backing, cmp, order, bptree.DefaultOptions())
	require.NoError(t, tree.Init(context.Background()))
	return tree
}

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	tree := newTestTree(t, 4)

	require.NoError(t, tree.Insert(ctx, "alice", "engineering"))
	require.NoError(t, tree.Insert(ctx, "carol", "engineering"))
	require.NoError(t, tree.Insert(ctx, "bob", "sales"))
	_, err := tree.Commit(ctx, "seed")
	require.NoError(t, err)

	vals, err := tree.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"engineering"}, vals)

	exists, err := tree.Exists(ctx, "carol", "engineering")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = tree.Exists(ctx, "carol", "sales")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestInsertSplitsAcrossManyEntries(t *testing.T) {
	ctx := context.Background()
	tree := newTestTree(t, 4)

	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	for i, name := range names {
		require.NoError(t, tree.Insert(ctx, name, name+"-val"))
		_ = i
	}
	_, err := tree.Commit(ctx, "bulk")
	require.NoError(t, err)

	stats, err := tree.Stats(ctx)
	require.NoError(t, err)
	require.Greater(t, stats.Height, 1, "inserting enough entries should have split the root")
	require.Equal(t, len(names), stats.TotalKeys)

	for _, name := range names {
		vals, err := tree.Get(ctx, name)
		require.NoError(t, err)
		require.Equal(t, []string{name + "-val"}, vals)
	}
}

func TestDeleteRemovesEntryAndMergesOnUnderflow(t *testing.T) {
	ctx := context.Background()
	tree := newTestTree(t, 4)

	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, name := range names {
		require.NoError(t, tree.Insert(ctx, name, name+"-val"))
	}
	_, err := tree.Commit(ctx, "bulk")
	require.NoError(t, err)

	for _, name := range names[:6] {
		require.NoError(t, tree.Delete(ctx, name, name+"-val"))
	}
	_, err = tree.Commit(ctx, "prune")
	require.NoError(t, err)

	for _, name := range names[:6] {
		vals, err := tree.Get(ctx, name)
		require.NoError(t, err)
		require.Empty(t, vals)
	}
	for _, name := range names[6:] {
		vals, err := tree.Get(ctx, name)
		require.NoError(t, err)
		require.Equal(t, []string{name + "-val"}, vals)
	}

	stats, err := tree.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalKeys)
}

func TestDeleteOfMissingPairIsNoop(t *testing.T) {
	ctx := context.Background()
	tree := newTestTree(t, 4)

	require.NoError(t, tree.Insert(ctx, "alice", "engineering"))
	require.NoError(t, tree.Delete(ctx, "alice", "sales"))
	require.NoError(t, tree.Delete(ctx, "bob", "sales"))

	vals, err := tree.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"engineering"}, vals)
}

func TestRollbackDiscardsUncommittedWrites(t *testing.T) {
	ctx := context.Background()
	tree := newTestTree(t, 4)

	require.NoError(t, tree.Insert(ctx, "alice", "engineering"))
	tree.Rollback()

	vals, err := tree.Get(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, vals)
}

func TestWhereEqualMatchesAllSharedValues(t *testing.T) {
	ctx := context.Background()
	tree := newTestTree(t, 4)

	seed := map[string]string{
		"alice": "engineering",
		"carol": "engineering",
		"bob":   "sales",
		"dave":  "support",
	}
	for k, v := range seed {
		require.NoError(t, tree.Insert(ctx, k, v))
	}
	_, err := tree.Commit(ctx, "seed")
	require.NoError(t, err)

	cursor, err := tree.Where(ctx, query.NewCondition(query.EqualP("engineering")))
	require.NoError(t, err)

	got := map[string]string{}
	for cursor.Next() {
		k, v := cursor.Pair()
		got[k] = v
	}
	require.NoError(t, cursor.Err())
	require.Equal(t, map[string]string{"alice": "engineering", "carol": "engineering"}, got)
}

func TestWhereNotEqualExcludesOneValue(t *testing.T) {
	ctx := context.Background()
	tree := newTestTree(t, 4)

	seed := map[string]string{
		"alice": "engineering",
		"bob":   "sales",
		"dave":  "support",
	}
	for k, v := range seed {
		require.NoError(t, tree.Insert(ctx, k, v))
	}
	_, err := tree.Commit(ctx, "seed")
	require.NoError(t, err)

	cursor, err := tree.Where(ctx, query.NewCondition(query.NotEqualP("engineering")))
	require.NoError(t, err)

	var got []string
	for cursor.Next() {
		_, v := cursor.Pair()
		got = append(got, v)
	}
	require.NoError(t, cursor.Err())
	require.ElementsMatch(t, []string{"sales", "support"}, got)
}

func TestWhereLtOrdersAscendingByDefaultAndDescendingOnRequest(t *testing.T) {
	ctx := context.Background()
	tree := newTestTree(t, 4)

	seed := map[string]string{
		"a": "1",
		"b": "2",
		"c": "3",
		"d": "4",
		"e": "5",
	}
	for k, v := range seed {
		require.NoError(t, tree.Insert(ctx, k, v))
	}
	_, err := tree.Commit(ctx, "seed")
	require.NoError(t, err)

	asc, err := tree.Where(ctx, query.NewCondition(query.LtP("4")))
	require.NoError(t, err)
	var gotAsc []string
	for asc.Next() {
		_, v := asc.Pair()
		gotAsc = append(gotAsc, v)
	}
	require.NoError(t, asc.Err())
	require.Equal(t, []string{"1", "2", "3"}, gotAsc)

	desc, err := tree.Where(ctx, query.NewCondition(query.LtP("4")), query.Desc)
	require.NoError(t, err)
	var gotDesc []string
	for desc.Next() {
		_, v := desc.Pair()
		gotDesc = append(gotDesc, v)
	}
	require.NoError(t, desc.Err())
	require.Equal(t, []string{"3", "2", "1"}, gotDesc)
}
