package service

import (
	"context"
	"errors"
	"testing"

	"ctchen222/Connect-Four/internal/repository"
	"ctchen222/Connect-Four/internal/repository/mocks"
	"ctchen222/Connect-Four/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestTableServiceCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewTableService(repository.NewMemoryTableRepository(), 5, 4)

	id, snap, err := s.Create(ctx, [2]string{"Ada", ""})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, [2]string{"Ada", session.DefaultPlayers[1]}, snap.Players)
	assert.Equal(t, 5, snap.Width)
	assert.Equal(t, 4, snap.Height)
	assert.Equal(t, 1, snap.Round)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrTableNotFound)
}

func TestTableServiceCreateErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("bad board size", func(t *testing.T) {
		repo := mocks.NewMockTableRepository(gomock.NewController(t))
		_, _, err := NewTableService(repo, 0, 6).Create(ctx, [2]string{})
		assert.Error(t, err)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := mocks.NewMockTableRepository(gomock.NewController(t))
		boom := errors.New("redis down")
		repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(boom)

		_, _, err := NewTableService(repo, 7, 6).Create(ctx, [2]string{})
		assert.ErrorIs(t, err, boom)
	})
}
