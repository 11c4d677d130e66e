package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/bptree/storage"
)

func TestMemoryReadWriteRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemory[string, string]()

	id, err := m.NewID(ctx, true)
	require.NoError(t, err)

	node := storage.NewLeaf[string, string](id)
	node.Values = []string{"a"}
	require.NoError(t, m.Write(ctx, id, node))

	got, err := m.Read(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, got.Values)

	// mutating the returned node must not affect the stored copy
	got.Values[0] = "mutated"
	reread, err := m.Read(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, reread.Values)
}

func TestMemoryReadMissIsNilNotError(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemory[string, string]()

	got, err := m.Read(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestMemoryHeadUninitializedIsErrNotFound(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemory[string, string]()

	_, err := m.ReadHead(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryAutoIncrement(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemory[string, string]()

	v, err := m.AutoIncrement(ctx, "seq", 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), v)

	v, err = m.AutoIncrement(ctx, "seq", 5)
	require.NoError(t, err)
	require.Equal(t, int64(6), v)
}
