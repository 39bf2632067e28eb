package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmarket/checkout-client/internal/domain"
)

func TestCheckoutRecordRepository(t *testing.T) {
	repo := NewCheckoutRecordRepository()
	ctx := context.Background()

	older := time.Now().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, &domain.CheckoutRecord{TransactionID: "tx-1", SessionKey: "s", Stage: domain.StagePending, CreatedAt: older}))
	require.NoError(t, repo.Save(ctx, &domain.CheckoutRecord{TransactionID: "tx-2", SessionKey: "s", Stage: domain.StageHandedOff}))
	require.NoError(t, repo.Save(ctx, &domain.CheckoutRecord{TransactionID: "tx-3", SessionKey: "s", Stage: domain.StageCompleted}))
	require.NoError(t, repo.Save(ctx, &domain.CheckoutRecord{TransactionID: "tx-4", SessionKey: "other", Stage: domain.StagePending}))

	open, err := repo.FindOpen(ctx, "s")
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "tx-2", open[0].TransactionID)
	assert.Equal(t, "tx-1", open[1].TransactionID)

	require.NoError(t, repo.UpdateStage(ctx, "tx-1", domain.StageCancelled, "", ""))
	rec, err := repo.FindByID(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageCancelled, rec.Stage)

	missing, err := repo.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Updating an unknown record is a no-op
	assert.NoError(t, repo.UpdateStage(ctx, "nope", domain.StageFailed, domain.KindUnknown, "x"))
}
