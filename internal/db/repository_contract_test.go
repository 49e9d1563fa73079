package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/textrsa/internal/model"
	"github.com/udisondev/textrsa/internal/testutil"
)

// keyRepository — общий контракт Postgres и SQLite реализаций.
type keyRepository interface {
	Save(ctx context.Context, key *model.StoredKey) error
	Get(ctx context.Context, id uuid.UUID) (*model.StoredKey, error)
	GetByLabel(ctx context.Context, label string) (*model.StoredKey, error)
	List(ctx context.Context) ([]model.StoredKey, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

func newStoredKey(label string, n, e int64, createdAt time.Time) *model.StoredKey {
	return &model.StoredKey{
		ID:                    uuid.New(),
		Label:                 label,
		Modulus:               n,
		PublicExponent:        e,
		SealedPrivateExponent: []byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
		CreatedAt:             createdAt.UTC().Truncate(time.Microsecond),
	}
}

func assertSameKey(t *testing.T, want, got *model.StoredKey) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Label, got.Label)
	assert.Equal(t, want.Modulus, got.Modulus)
	assert.Equal(t, want.PublicExponent, got.PublicExponent)
	assert.Equal(t, want.SealedPrivateExponent, got.SealedPrivateExponent)
	assert.WithinDuration(t, want.CreatedAt, got.CreatedAt, time.Millisecond)
}

// runKeyRepositoryContract прогоняет одинаковые сценарии для любой реализации.
// reset очищает хранилище перед каждым подтестом.
func runKeyRepositoryContract(t *testing.T, repo keyRepository, reset func(t *testing.T)) {
	now := time.Now()

	t.Run("save and get", func(t *testing.T) {
		reset(t)
		ctx := testutil.ContextWithTimeout(t, 10*time.Second)

		key := newStoredKey("demo", 4087, 17, now)
		require.NoError(t, repo.Save(ctx, key))

		got, err := repo.Get(ctx, key.ID)
		require.NoError(t, err)
		assertSameKey(t, key, got)

		byLabel, err := repo.GetByLabel(ctx, "demo")
		require.NoError(t, err)
		assertSameKey(t, key, byLabel)
	})

	t.Run("missing key returns nil", func(t *testing.T) {
		reset(t)
		ctx := testutil.ContextWithTimeout(t, 10*time.Second)

		got, err := repo.Get(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = repo.GetByLabel(ctx, "absent")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate label", func(t *testing.T) {
		reset(t)
		ctx := testutil.ContextWithTimeout(t, 10*time.Second)

		require.NoError(t, repo.Save(ctx, newStoredKey("demo", 4087, 17, now)))
		err := repo.Save(ctx, newStoredKey("demo", 33, 7, now))
		assert.ErrorIs(t, err, ErrDuplicateLabel)
	})

	t.Run("list ordered by creation", func(t *testing.T) {
		reset(t)
		ctx := testutil.ContextWithTimeout(t, 10*time.Second)

		second := newStoredKey("second", 4087, 17, now)
		first := newStoredKey("first", 33, 7, now.Add(-time.Hour))
		require.NoError(t, repo.Save(ctx, second))
		require.NoError(t, repo.Save(ctx, first))

		keys, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, keys, 2)
		assert.Equal(t, "first", keys[0].Label)
		assert.Equal(t, "second", keys[1].Label)
	})

	t.Run("delete", func(t *testing.T) {
		reset(t)
		ctx := testutil.ContextWithTimeout(t, 10*time.Second)

		key := newStoredKey("demo", 4087, 17, now)
		require.NoError(t, repo.Save(ctx, key))

		deleted, err := repo.Delete(ctx, key.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, key.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		got, err := repo.Get(ctx, key.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
