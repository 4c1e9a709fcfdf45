package memory

import (
	"context"
	"testing"

	"brainquiz/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreStoreTopBoundsAndOrder(t *testing.T) {
	ctx := context.Background()
	store := NewScoreStore()

	top, err := store.Top(ctx, 10)
	require.NoError(t, err)
	assert.NotNil(t, top)
	assert.Empty(t, top)

	for _, e := range []domain.HighScoreEntry{
		{Name: "a", Score: 40},
		{Name: "b", Score: 90},
		{Name: "c", Score: 60},
		{Name: "d", Score: 90},
	} {
		_, err := store.Record(ctx, e)
		require.NoError(t, err)
	}

	top, err = store.Top(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"b", "d", "c"}, []string{top[0].Name, top[1].Name, top[2].Name})

	all, _ := store.Top(ctx, 100)
	assert.Len(t, all, 4)

	none, _ := store.Top(ctx, 0)
	assert.Empty(t, none)
}

func TestScoreStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewScoreStore()
	require.NoError(t, store.Init(ctx))

	_, _ = store.Record(ctx, domain.HighScoreEntry{Name: "a", Score: 10})
	require.NoError(t, store.Reset(ctx))

	top, _ := store.Top(ctx, 5)
	assert.Empty(t, top)
}
