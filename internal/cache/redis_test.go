package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	InitWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { InitWithClient(nil) })
}

func TestTeamViewCacheRoundTrip(t *testing.T) {
	setupCache(t)
	ctx := context.Background()

	_, ok := GetTeamView(ctx, 1, 2)
	assert.False(t, ok, "empty cache should miss")

	SetTeamView(ctx, 1, 2, []byte(`{"responses":[]}`))

	data, ok := GetTeamView(ctx, 1, 2)
	assert.True(t, ok)
	assert.Equal(t, `{"responses":[]}`, string(data))

	// A different team's key must not collide.
	_, ok = GetTeamView(ctx, 1, 3)
	assert.False(t, ok)
}

func TestInvalidateTeam(t *testing.T) {
	setupCache(t)
	ctx := context.Background()

	SetTeamView(ctx, 1, 2, []byte(`view`))
	SetProgress(ctx, 1, 2, []byte(`progress`))
	SetTeamView(ctx, 1, 3, []byte(`other team`))

	InvalidateTeam(ctx, 1, 2)

	_, ok := GetTeamView(ctx, 1, 2)
	assert.False(t, ok)
	_, ok = GetProgress(ctx, 1, 2)
	assert.False(t, ok)

	_, ok = GetTeamView(ctx, 1, 3)
	assert.True(t, ok, "other team's cache must survive")
}

func TestInvalidateSheetClearsAllTeams(t *testing.T) {
	setupCache(t)
	ctx := context.Background()

	SetTeamView(ctx, 1, 2, []byte(`a`))
	SetTeamView(ctx, 1, 3, []byte(`b`))
	SetProgress(ctx, 1, 2, []byte(`c`))
	SetTeamView(ctx, 9, 2, []byte(`other sheet`))

	InvalidateSheet(ctx, 1)

	_, ok := GetTeamView(ctx, 1, 2)
	assert.False(t, ok)
	_, ok = GetTeamView(ctx, 1, 3)
	assert.False(t, ok)
	_, ok = GetProgress(ctx, 1, 2)
	assert.False(t, ok)

	_, ok = GetTeamView(ctx, 9, 2)
	assert.True(t, ok)
}

func TestNilClientDegradesGracefully(t *testing.T) {
	InitWithClient(nil)
	ctx := context.Background()

	SetTeamView(ctx, 1, 2, []byte(`ignored`))
	_, ok := GetTeamView(ctx, 1, 2)
	assert.False(t, ok)

	configured, err := Ping(ctx)
	assert.False(t, configured)
	assert.NoError(t, err)
}
