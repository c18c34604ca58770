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

func createTransaction(t *testing.T, env *testEnv, amount, fee int64) dto.TransactionResponse {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/v1/transactions/", dto.CreateTransactionRequest{
		AssetID:  "asset-1",
		BuyerID:  "buyer",
		SellerID: "seller",
		Currency: "USD",
		Type:     "purchase",
		Amount:   decimal.NewFromInt(amount),
		Fee:      decimal.NewFromInt(fee),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.TransactionResponse
	decode(t, w, &resp)
	return resp
}

func TestSettlementLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.DB.CreateTestUser(ctx, "buyer")
	env.DB.CreateTestUser(ctx, "seller")
	buyerWallet := env.DB.CreateTestWalletWithBalance(ctx, "buyer", "USD", decimal.NewFromInt(1000), true)

	t.Run("create leaves transaction pending", func(t *testing.T) {
		txn := createTransaction(t, env, 100, 10)

		assert.Equal(t, "pending", txn.Status)
		assert.True(t, txn.NetAmount.Equal(decimal.NewFromInt(90)))

		// Creation announces the flows but moves no funds.
		assert.True(t, env.DB.WalletBalance(ctx, buyerWallet.ID).Equal(decimal.NewFromInt(1000)))
	})

	t.Run("confirm settles all three parties", func(t *testing.T) {
		txn := createTransaction(t, env, 100, 10)

		w := env.do(t, http.MethodPost, "/api/v1/transactions/"+txn.ID+"/confirm", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var confirmed dto.TransactionResponse
		decode(t, w, &confirmed)
		assert.Equal(t, "completed", confirmed.Status)

		assert.True(t, env.DB.WalletBalance(ctx, buyerWallet.ID).Equal(decimal.NewFromInt(900)))

		var resp dto.BalanceResponse
		sellerW := env.do(t, http.MethodGet, "/api/v1/users/seller/balance?currency=USD", nil)
		require.Equal(t, http.StatusOK, sellerW.Code)
		decode(t, sellerW, &resp)
		assert.True(t, resp.Balance.Equal(decimal.NewFromInt(90)))

		platformW := env.do(t, http.MethodGet, "/api/v1/users/platform/balance?currency=USD", nil)
		require.Equal(t, http.StatusOK, platformW.Code)
		decode(t, platformW, &resp)
		assert.True(t, resp.Balance.Equal(decimal.NewFromInt(10)))
	})

	t.Run("confirm is not repeatable", func(t *testing.T) {
		txn := createTransaction(t, env, 50, 0)

		w := env.do(t, http.MethodPost, "/api/v1/transactions/"+txn.ID+"/confirm", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = env.do(t, http.MethodPost, "/api/v1/transactions/"+txn.ID+"/confirm", nil)
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("insufficient buyer balance fails the transaction", func(t *testing.T) {
		before := env.DB.WalletBalance(ctx, buyerWallet.ID)

		txn := createTransaction(t, env, 100000, 0)

		w := env.do(t, http.MethodPost, "/api/v1/transactions/"+txn.ID+"/confirm", nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

		var failed dto.TransactionResponse
		decode(t, w, &failed)
		assert.Equal(t, "failed", failed.Status)

		// Compensation keeps wallets untouched.
		assert.True(t, env.DB.WalletBalance(ctx, buyerWallet.ID).Equal(before))

		getW := env.do(t, http.MethodGet, "/api/v1/transactions/"+txn.ID, nil)
		require.Equal(t, http.StatusOK, getW.Code)
		decode(t, getW, &failed)
		assert.Equal(t, "failed", failed.Status)
	})

	t.Run("fail marks pending without moving funds", func(t *testing.T) {
		before := env.DB.WalletBalance(ctx, buyerWallet.ID)

		txn := createTransaction(t, env, 25, 5)

		w := env.do(t, http.MethodPost, "/api/v1/transactions/"+txn.ID+"/fail",
			dto.FailTransactionRequest{Reason: "buyer cancelled"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var failed dto.TransactionResponse
		decode(t, w, &failed)
		assert.Equal(t, "failed", failed.Status)
		assert.True(t, env.DB.WalletBalance(ctx, buyerWallet.ID).Equal(before))
	})

	t.Run("same buyer and seller rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/transactions/", dto.CreateTransactionRequest{
			AssetID:  "asset-1",
			BuyerID:  "buyer",
			SellerID: "buyer",
			Currency: "USD",
			Type:     "purchase",
			Amount:   decimal.NewFromInt(10),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})
}

func TestTransactionListingAndStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.DB.CreateTestUser(ctx, "buyer")
	env.DB.CreateTestUser(ctx, "seller")
	env.DB.CreateTestWalletWithBalance(ctx, "buyer", "USD", decimal.NewFromInt(1000), true)

	first := createTransaction(t, env, 100, 10)
	createTransaction(t, env, 200, 20)

	w := env.do(t, http.MethodPost, "/api/v1/transactions/"+first.ID+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	t.Run("list filters by status", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/transactions/?status=pending", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var list dto.TransactionListResponse
		decode(t, w, &list)
		require.Len(t, list.Transactions, 1)
		assert.Equal(t, int64(1), list.Total)
		assert.Equal(t, "pending", list.Transactions[0].Status)
	})

	t.Run("stats cover completed transactions only", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/users/buyer/transactions/stats", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var stats dto.TransactionStatsResponse
		decode(t, w, &stats)
		assert.True(t, stats.TotalPurchased.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, int64(1), stats.TotalTransactions)
	})
}
