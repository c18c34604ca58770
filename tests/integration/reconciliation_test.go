package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketcore/settlement/internal/adapter/http/dto"
)

func TestReconciliation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.DB.CreateTestUser(ctx, "alice")
	env.DB.CreateTestUser(ctx, "bob")

	w := env.do(t, http.MethodPost, "/api/v1/balance/add", dto.BalanceChangeRequest{
		UserID:   "alice",
		Amount:   decimal.NewFromInt(300),
		Currency: "USD",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/v1/transfers", dto.TransferRequest{
		FromUserID: "alice",
		ToUserID:   "bob",
		Amount:     decimal.NewFromInt(100),
		Currency:   "USD",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("journal matches wallets after movements", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/reconciliation", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var report dto.ReconciliationResponse
		decode(t, w, &report)
		assert.True(t, report.Consistent)
		assert.Empty(t, report.MismatchedWallets)
	})

	t.Run("tampered wallet balance is reported", func(t *testing.T) {
		var walletID string
		err := env.DB.Pool.QueryRow(ctx,
			`SELECT id FROM wallets WHERE user_id = 'alice' AND currency = 'USD'`).Scan(&walletID)
		require.NoError(t, err)

		_, err = env.DB.Pool.Exec(ctx,
			`UPDATE wallets SET balance = balance + 7 WHERE id = $1`, walletID)
		require.NoError(t, err)

		w := env.do(t, http.MethodGet, "/api/v1/reconciliation", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var report dto.ReconciliationResponse
		decode(t, w, &report)
		assert.False(t, report.Consistent)
		assert.Contains(t, report.MismatchedWallets, walletID)
	})
}
