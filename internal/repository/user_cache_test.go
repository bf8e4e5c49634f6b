package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"identity-service/internal/model"
)

func TestNewUserCache_NilClient(t *testing.T) {
	t.Parallel()

	require.Nil(t, NewUserCache(nil, time.Minute))
}

// The repository calls cache methods unconditionally, so a disabled cache
// must behave as a permanent miss rather than panic.
func TestUserCache_NilReceiver(t *testing.T) {
	t.Parallel()

	var c *UserCache
	ctx := context.Background()

	u, ok := c.Get(ctx, "some-id")
	require.Nil(t, u)
	require.False(t, ok)

	c.Set(ctx, &model.User{ID: "some-id"})
	c.Invalidate(ctx, "some-id")
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "user:abc", cacheKey("abc"))
}
