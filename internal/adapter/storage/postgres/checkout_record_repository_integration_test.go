//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
)

func databaseURL(t *testing.T) string {
	t.Helper()

	// Check if using external services (CI environment)
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("evmarket_test"),
		tcpostgres.WithUsername("evmarket"),
		tcpostgres.WithPassword("evmarket_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get postgres connection string: %v", err)
	}
	return url
}

func TestCheckoutRecordRepository(t *testing.T) {
	url := databaseURL(t)
	log, _ := zap.NewDevelopment()

	db, err := NewConnection(url, Options{MaxOpenConns: 5}, log)
	require.NoError(t, err)
	defer Close(db)
	require.NoError(t, RunMigrations(db))

	repo := NewCheckoutRecordRepository(db, log)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	for _, rec := range []domain.CheckoutRecord{
		{TransactionID: "tx-open", SessionKey: "s1", ListingID: "v-1", ListingType: domain.ListingTypeVehicle, Method: domain.PaymentMethodWallet, Amount: 10, Stage: domain.StagePending, CreatedAt: now, UpdatedAt: now},
		{TransactionID: "tx-done", SessionKey: "s1", ListingID: "v-2", ListingType: domain.ListingTypeVehicle, Method: domain.PaymentMethodWallet, Amount: 20, Stage: domain.StageCompleted, CreatedAt: now, UpdatedAt: now},
		{TransactionID: "tx-other", SessionKey: "s2", ListingID: "b-1", ListingType: domain.ListingTypeBattery, Method: domain.PaymentMethodMoMo, Amount: 30, Stage: domain.StageHandedOff, CreatedAt: now, UpdatedAt: now},
	} {
		rec := rec
		require.NoError(t, repo.Save(ctx, &rec))
	}

	t.Run("FindByID", func(t *testing.T) {
		rec, err := repo.FindByID(ctx, "tx-open")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, domain.StagePending, rec.Stage)

		missing, err := repo.FindByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("FindOpen", func(t *testing.T) {
		recs, err := repo.FindOpen(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "tx-open", recs[0].TransactionID)
	})

	t.Run("UpdateStage", func(t *testing.T) {
		require.NoError(t, repo.UpdateStage(ctx, "tx-open", domain.StageFailed, domain.KindInsufficientBalance, "insufficient balance"))

		// Read back through database/sql to check the column values
		raw, err := sql.Open("postgres", url)
		require.NoError(t, err)
		defer raw.Close()

		var stage, kind string
		err = raw.QueryRowContext(ctx,
			`SELECT stage, failure_kind FROM checkout_records WHERE transaction_id = $1`, "tx-open",
		).Scan(&stage, &kind)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StageFailed), stage)
		assert.Equal(t, string(domain.KindInsufficientBalance), kind)
	})
}
