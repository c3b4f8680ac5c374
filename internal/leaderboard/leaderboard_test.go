package leaderboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncodeoperations/artemis-core/internal/domain"
)

type fakeStore struct {
	entries         map[string]*domain.LeaderboardEntry
	lastListLimit   int
	listCallCount   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]*domain.LeaderboardEntry)}
}

func (f *fakeStore) Upsert(ctx context.Context, e *domain.LeaderboardEntry) error {
	f.entries[e.Username] = e
	return nil
}

func (f *fakeStore) Get(ctx context.Context, username string) (*domain.LeaderboardEntry, error) {
	e, ok := f.entries[username]
	if !ok {
		return nil, nil
	}
	return e, nil
}

func (f *fakeStore) List(ctx context.Context, country, level, language string, limit int) ([]domain.LeaderboardEntry, int64, error) {
	f.listCallCount++
	f.lastListLimit = limit
	out := make([]domain.LeaderboardEntry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func TestService_List_ClampsLimit(t *testing.T) {
	store := newFakeStore()
	svc := New(store)

	_, _, err := svc.List(context.Background(), "", "", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 50, store.lastListLimit, "a non-positive limit should fall back to the default")

	_, _, err = svc.List(context.Background(), "", "", "", 500)
	require.NoError(t, err)
	assert.Equal(t, 50, store.lastListLimit, "an over-the-cap limit should fall back to the default")

	_, _, err = svc.List(context.Background(), "", "", "", 20)
	require.NoError(t, err)
	assert.Equal(t, 20, store.lastListLimit, "a valid limit should pass through untouched")
}

func TestService_UpsertAndGet(t *testing.T) {
	store := newFakeStore()
	svc := New(store)

	entry := &domain.LeaderboardEntry{Username: "octocat", Country: "US"}
	require.NoError(t, svc.Upsert(context.Background(), entry))

	got, err := svc.Get(context.Background(), "octocat")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "US", got.Country)
}
