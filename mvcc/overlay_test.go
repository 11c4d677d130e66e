package mvcc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/bptree/mvcc"
	"github.com/KilimcininKorOglu/bptree/storage"
)

func TestOverlayBuffersUntilCommit(t *testing.T) {
	ctx := context.Background()
	backing := storage.NewMemory[string, string]()
	overlay := mvcc.New[string, string](backing)

	node := storage.NewLeaf[string, string]("n1")
	overlay.Create("n1", node)

	got, err := backing.Read(ctx, "n1")
	require.NoError(t, err)
	require.Nil(t, got, "node should not be visible in backing before commit")

	fromOverlay, err := overlay.Read(ctx, "n1")
	require.NoError(t, err)
	require.NotNil(t, fromOverlay)

	result, err := overlay.Commit(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, []storage.NodeID{"n1"}, result.Created)

	got, err = backing.Read(ctx, "n1")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestOverlayRollbackDiscardsBuffers(t *testing.T) {
	ctx := context.Background()
	backing := storage.NewMemory[string, string]()
	overlay := mvcc.New[string, string](backing)

	overlay.Create("n1", storage.NewLeaf[string, string]("n1"))
	overlay.Rollback()

	created, updated, deleted := overlay.PendingEntries()
	require.Empty(t, created)
	require.Empty(t, updated)
	require.Empty(t, deleted)

	got, err := overlay.Read(ctx, "n1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestNestedOverlayFlushesIntoParentOnCommit(t *testing.T) {
	ctx := context.Background()
	backing := storage.NewMemory[string, string]()
	root := mvcc.New[string, string](backing)
	nested := mvcc.NewNested(root)

	nested.Create("n1", storage.NewLeaf[string, string]("n1"))

	_, err := nested.Commit(ctx, "nested-tx")
	require.NoError(t, err)

	got, err := backing.Read(ctx, "n1")
	require.NoError(t, err)
	require.Nil(t, got, "nested commit should flush into the parent overlay, not backing")

	fromRoot, err := root.Read(ctx, "n1")
	require.NoError(t, err)
	require.NotNil(t, fromRoot)

	_, err = root.Commit(ctx, "root-tx")
	require.NoError(t, err)

	got, err = backing.Read(ctx, "n1")
	require.NoError(t, err)
	require.NotNil(t, got)
}
