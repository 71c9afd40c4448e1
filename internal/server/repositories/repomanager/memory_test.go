package repomanager

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/dbx"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepositoryManager(t *testing.T) {
	ctx := context.Background()
	var m RepositoryManager = NewInMemoryRepositoryManager()

	require.NoError(t, m.RunMigrations(ctx))
	require.NoError(t, m.Ping(ctx))

	u, err := m.Users(m.Conn()).Create(ctx, &models.User{Login: "alice", PasswordHash: "h"})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = m.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := m.Users(tx).IncrementTokenVersion(ctx, u.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := m.Users(m.Conn()).GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.TokenVersion)

	_, err = m.Projects(nil).GetOwned(ctx, 1, u.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
	list, err := m.Scripts(m.Conn()).ListByProject(ctx, 1, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	require.Error(t, m.Ping(canceled))
	require.NoError(t, m.Close())
}
