package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	adaptershttp "github.com/marketcore/settlement/internal/adapter/http"
	"github.com/marketcore/settlement/internal/adapter/http/handler"
	"github.com/marketcore/settlement/internal/adapter/repository/postgres"
	redisrepo "github.com/marketcore/settlement/internal/adapter/repository/redis"
	"github.com/marketcore/settlement/internal/infrastructure/logger"
	infraredis "github.com/marketcore/settlement/internal/infrastructure/redis"
	"github.com/marketcore/settlement/internal/usecase"
	"github.com/marketcore/settlement/tests/testutil"
)

// testEnv wires the full HTTP stack against real postgres and redis.
type testEnv struct {
	DB     *testutil.TestDB
	Router http.Handler

	Engine     *usecase.BalanceTransferEngine
	Settlement *usecase.SettlementProcessor
	Reconciler *usecase.Reconciler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(ctx)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	require.NoError(t, err, "failed to connect to redis")
	t.Cleanup(func() { _ = redisClient.Close() })
	require.NoError(t, redisClient.FlushDB(ctx).Err())

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	walletRepo := postgres.NewWalletRepository(pool)
	recordRepo := postgres.NewRecordRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	reconRepo := postgres.NewReconciliationRepository(pool)
	users := postgres.NewUserDirectory(pool)
	cache := redisrepo.NewCache(redisClient)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier(logger.New(logger.Config{Level: "error", Format: "json"}))

	walletUC := usecase.NewWalletLedger(txManager, walletRepo, users, idGen, cache)
	engine := usecase.NewBalanceTransferEngine(
		txManager, walletRepo, recordRepo, outboxRepo, users, idGen, cache, retrier)
	journalUC := usecase.NewJournal(recordRepo, users, idGen)
	settlementUC := usecase.NewSettlementProcessor(
		txManager, transactionRepo, recordRepo, outboxRepo, engine,
		users, idGen, retrier, "platform")
	reconUC := usecase.NewReconciler(reconRepo)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		WalletHandler:         handler.NewWalletHandler(walletUC),
		FinanceHandler:        handler.NewFinanceHandler(engine, journalUC),
		TransactionHandler:    handler.NewTransactionHandler(settlementUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:      redisrepo.NewIdempotencyStore(redisClient),
	})

	return &testEnv{
		DB:         testDB,
		Router:     router,
		Engine:     engine,
		Settlement: settlementUC,
		Reconciler: reconUC,
	}
}

// do sends a JSON request through the router and returns the recorder.
func (env *testEnv) do(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	r := httptest.NewRequest(method, path, &body)
	r.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, r)
	return w
}

// decode unmarshals a recorded response body into out.
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}
