package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_EmptyAddrDisablesCaching(t *testing.T) {
	c, err := Open("")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestOpen_UnreachableAddrDegradesToDisabled(t *testing.T) {
	c, err := Open("127.0.0.1:1")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNilCache_MethodsAreMisses(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	_, ok := c.GetPermissions(ctx, "v1", "user:bob")
	assert.False(t, ok)

	c.SetPermissions(ctx, "v1", "user:bob", map[string][]string{"project:p": {"viewer"}})

	reachable, ok := c.GetAccess(ctx, "v1", "user:bob", "project:p")
	assert.False(t, reachable)
	assert.False(t, ok)

	c.SetAccess(ctx, "v1", "user:bob", "project:p", true)
	assert.NoError(t, c.Close())
}
