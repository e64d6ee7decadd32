package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSnapshotService() (*SnapshotService, *testutil.MockTransactionRepository, *testutil.MockSnapshotRepository, *testutil.MockEventPublisher) {
	analytics, txRepo, _ := setupAnalyticsService()
	store := testutil.NewMockSnapshotRepository()
	publisher := testutil.NewMockEventPublisher()
	return NewSnapshotService(analytics, store, publisher), txRepo, store, publisher
}

func TestSnapshotService_ArchiveAndGet(t *testing.T) {
	svc, txRepo, store, publisher := setupSnapshotService()
	seedTx(txRepo, 7, domain.TransactionTypeIncome, 1000, "Sales", fixedNow, nil)
	seedTx(txRepo, 7, domain.TransactionTypeExpense, 250, "Rent", fixedNow, nil)

	archived, err := svc.Archive(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(archived.Key, "workspaces/7/snapshots/20250415T120000Z-"), archived.Key)
	assert.True(t, strings.HasSuffix(archived.Key, ".json"))
	assert.Equal(t, []string{archived.Key}, store.Keys())
	assert.Equal(t, []string{"snapshot.archived"}, publisher.Types())

	snapshot, err := svc.Get(context.Background(), 7, archived.Key)
	require.NoError(t, err)
	assert.Equal(t, int32(7), snapshot.WorkspaceID)
	require.NotNil(t, snapshot.Forecast)
	assert.True(t, snapshot.Forecast.CurrentBalance.Equal(decimal.NewFromInt(750)))
	require.NotNil(t, snapshot.BudgetSummary)
	assert.True(t, snapshot.BudgetSummary.TotalActual.Equal(decimal.NewFromInt(250)))
}

func TestSnapshotService_GetOtherWorkspace(t *testing.T) {
	svc, _, store, _ := setupSnapshotService()
	store.Objects["workspaces/2/snapshots/x.json"] = []byte(`{}`)

	_, err := svc.Get(context.Background(), 1, "workspaces/2/snapshots/x.json")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	_, err = svc.Get(context.Background(), 2, "workspaces/2/snapshots/missing.json")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestSnapshotService_StoreError(t *testing.T) {
	svc, _, store, publisher := setupSnapshotService()
	store.PutErr = errors.New("bucket not found")

	_, err := svc.Archive(context.Background(), 1)
	assert.ErrorIs(t, err, store.PutErr)
	assert.Empty(t, publisher.Events)
}

func setupSnapshotWorker() (*SnapshotWorker, *testutil.MockTransactionRepository, *testutil.MockSnapshotRepository) {
	svc, txRepo, store, _ := setupSnapshotService()
	worker := NewSnapshotWorker(svc, txRepo, zerolog.Nop(), SnapshotWorkerConfig{Interval: 100 * time.Millisecond})
	return worker, txRepo, store
}

func TestSnapshotWorker_DefaultConfig(t *testing.T) {
	assert.Equal(t, 24*time.Hour, DefaultSnapshotWorkerConfig().Interval)

	worker := NewSnapshotWorker(nil, nil, zerolog.Nop(), SnapshotWorkerConfig{})
	assert.Equal(t, 24*time.Hour, worker.interval)
	assert.False(t, worker.IsRunning())
}

func TestSnapshotWorker_ArchiveNow(t *testing.T) {
	worker, txRepo, store := setupSnapshotWorker()
	seedTx(txRepo, 1, domain.TransactionTypeIncome, 10, "Sales", fixedNow, nil)
	seedTx(txRepo, 2, domain.TransactionTypeIncome, 20, "Sales", fixedNow, nil)

	archived := worker.ArchiveNow(context.Background())
	assert.Equal(t, 2, archived)
	assert.Len(t, store.Keys(), 2)
}

func TestSnapshotWorker_ContinuesAfterFailure(t *testing.T) {
	worker, txRepo, store := setupSnapshotWorker()
	seedTx(txRepo, 1, domain.TransactionTypeIncome, 10, "Sales", fixedNow, nil)
	store.PutErr = errors.New("unavailable")

	assert.Equal(t, 0, worker.ArchiveNow(context.Background()))
	assert.Empty(t, store.Keys())
}

func TestSnapshotWorker_StartStop(t *testing.T) {
	worker, txRepo, store := setupSnapshotWorker()
	seedTx(txRepo, 1, domain.TransactionTypeIncome, 10, "Sales", fixedNow, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	worker.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	assert.True(t, worker.IsRunning())

	worker.Stop()
	assert.False(t, worker.IsRunning())
	assert.NotEmpty(t, store.Keys(), "runs once on startup")
}

func TestSnapshotWorker_Restart(t *testing.T) {
	worker, txRepo, store := setupSnapshotWorker()
	seedTx(txRepo, 1, domain.TransactionTypeIncome, 10, "Sales", fixedNow, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	archived := func(n int) func() bool {
		return func() bool { return len(store.Keys()) >= n }
	}

	worker.Start(ctx)
	require.Eventually(t, archived(1), time.Second, 5*time.Millisecond)
	worker.Stop()
	worker.Stop()
	assert.False(t, worker.IsRunning())

	worker.Start(ctx)
	assert.True(t, worker.IsRunning())
	require.Eventually(t, archived(2), time.Second, 5*time.Millisecond, "each start archives on startup")
	worker.Stop()
	assert.False(t, worker.IsRunning())
}

func TestSnapshotWorker_StopsWithContext(t *testing.T) {
	worker, _, _ := setupSnapshotWorker()

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool { return !worker.IsRunning() }, time.Second, 10*time.Millisecond)
	worker.Stop()
	worker.Start(context.Background())
	assert.True(t, worker.IsRunning())
	worker.Stop()
}

func TestSnapshotWorker_StopWithoutStart(t *testing.T) {
	worker, _, _ := setupSnapshotWorker()

	worker.Stop()
	assert.False(t, worker.IsRunning())
}
