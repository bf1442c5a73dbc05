package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/gemrealm/internal/domain"
	"github.com/dom/gemrealm/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_Constraints(t *testing.T) {
	repo := memory.NewStore().Accounts()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, domain.NewAccount("alice", "h", nil, true, time.Now())))
	assert.ErrorIs(t, repo.Insert(ctx, domain.NewAccount("alice", "h", nil, false, time.Now())), domain.ErrUsernameTaken)
	assert.ErrorIs(t, repo.Insert(ctx, domain.NewAccount("bob", "h", nil, true, time.Now())), domain.ErrOwnerSlotTaken)
	require.NoError(t, repo.Insert(ctx, domain.NewAccount("bob", "h", nil, false, time.Now())))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestAccountRepository_ReturnsCopies(t *testing.T) {
	repo := memory.NewStore().Accounts()
	ctx := context.Background()

	account := domain.NewAccount("alice", "h", nil, true, time.Now())
	require.NoError(t, repo.Insert(ctx, account))
	account.Level = 7

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 100, got.Level)
	got.Level = 9

	again, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, again.Level)
}

func TestAccountRepository_ApplyReferral(t *testing.T) {
	repo := memory.NewStore().Accounts()
	ctx := context.Background()

	referrer := domain.NewAccount("alice", "h", nil, true, time.Now())
	newcomer := domain.NewAccount("bob", "h", nil, false, time.Now())
	require.NoError(t, repo.Insert(ctx, referrer))
	require.NoError(t, repo.Insert(ctx, newcomer))

	updated, err := repo.ApplyReferral(ctx, newcomer.ID, referrer.ID, 100)
	require.NoError(t, err)
	require.NotNil(t, updated.ReferredByID)
	assert.Equal(t, referrer.ID, *updated.ReferredByID)

	_, err = repo.ApplyReferral(ctx, newcomer.ID, referrer.ID, 100)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000100", got.Gems.String())

	_, err = repo.ApplyReferral(ctx, newcomer.ID, uuid.New(), 100)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
