package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_EmptyDSNDisablesPersistence(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestNilStore_MethodsAreNoOps(t *testing.T) {
	var s *Store
	ctx := context.Background()

	assert.NoError(t, s.SaveRun(ctx, nil))

	run, err := s.GetRun(ctx, "whatever")
	assert.NoError(t, err)
	assert.Nil(t, run)

	ids, err := s.ListRunIDs(ctx, 10)
	assert.NoError(t, err)
	assert.Nil(t, ids)

	assert.NoError(t, s.Close())
}
