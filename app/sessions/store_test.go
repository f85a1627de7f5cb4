package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := NewStore("", ttl)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t, time.Hour)

	token, err := store.Create(42)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	userID, err := store.Get(token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestTokensAreUnique(t *testing.T) {
	store := newTestStore(t, time.Hour)

	a, err := store.Create(1)
	require.NoError(t, err)
	b, err := store.Create(1)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGetUnknownToken(t *testing.T) {
	store := newTestStore(t, time.Hour)

	_, err := store.Get("deadbeef")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t, time.Hour)

	token, err := store.Create(7)
	require.NoError(t, err)

	require.NoError(t, store.Delete(token))
	_, err = store.Get(token)
	assert.ErrorIs(t, err, ErrNoSession)

	// Deleting again is not an error.
	assert.NoError(t, store.Delete(token))
}

func TestExpiry(t *testing.T) {
	store := newTestStore(t, time.Second)

	token, err := store.Create(7)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	_, err = store.Get(token)
	assert.ErrorIs(t, err, ErrNoSession)
}
