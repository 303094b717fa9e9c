package memory

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Get(ctx, "authToken")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "authToken", "abc"))
	require.NoError(t, s.Set(ctx, "userData", "{}"))

	v, err := s.Get(ctx, "authToken")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	require.NoError(t, s.Delete(ctx, "authToken", "userData", "missing"))
	_, err = s.Get(ctx, "userData")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}
