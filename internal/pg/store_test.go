package pg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"beresta/internal/config"
)

// Интеграционный тест: поднимает Postgres в docker, под -short пропускается.
func TestStore(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("beresta"),
		tcpostgres.WithUsername("beresta"),
		tcpostgres.WithPassword("beresta"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := NewStore(db)
	require.NoError(t, store.Init())
	require.NoError(t, store.Init()) // повторный накат безвреден

	snap := &config.Snapshot{
		SavedAt:           time.Now().UTC().Truncate(time.Second),
		Country:           "GBR",
		SkipOperation:     true,
		FilesUsed:         []string{"metadata.xml", "EmpJob.csv"},
		PicklistOverrides: map[string]string{"gender": "Male, Female"},
	}
	require.NoError(t, store.Save(ctx, "uk-rollout", snap))

	got, err := store.Load(ctx, "uk-rollout")
	require.NoError(t, err)
	assert.Equal(t, snap.Country, got.Country)
	assert.Equal(t, snap.SkipOperation, got.SkipOperation)
	assert.Equal(t, snap.FilesUsed, got.FilesUsed)
	assert.Equal(t, snap.PicklistOverrides, got.PicklistOverrides)
	assert.True(t, snap.SavedAt.Equal(got.SavedAt))

	// upsert перетирает
	snap.Country = "DEU"
	require.NoError(t, store.Save(ctx, "uk-rollout", snap))
	got, err = store.Load(ctx, "uk-rollout")
	require.NoError(t, err)
	assert.Equal(t, "DEU", got.Country)

	require.NoError(t, store.Save(ctx, "another", snap))
	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"another", "uk-rollout"}, names)

	require.NoError(t, store.Delete(ctx, "another"))
	assert.ErrorIs(t, store.Delete(ctx, "another"), ErrNotFound)

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
