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

func TestWalletLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.DB.CreateTestUser(ctx, "alice")

	t.Run("create wallet", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/wallets/", dto.CreateWalletRequest{
			UserID:    "alice",
			Address:   "0xabc123",
			Currency:  "ETH",
			Kind:      "custodial",
			Label:     "main",
			IsDefault: true,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp dto.WalletResponse
		decode(t, w, &resp)
		assert.Equal(t, "alice", resp.UserID)
		assert.Equal(t, "0xabc123", resp.Address)
		assert.True(t, resp.IsDefault)
		assert.True(t, resp.Balance.IsZero())
	})

	t.Run("duplicate address conflicts", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/wallets/", dto.CreateWalletRequest{
			UserID:   "alice",
			Address:  "0xabc123",
			Currency: "ETH",
		})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("unknown user rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/wallets/", dto.CreateWalletRequest{
			UserID:   "nobody",
			Address:  "0xdef456",
			Currency: "ETH",
		})
		assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	})

	t.Run("default flag moves between wallets", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/wallets/", dto.CreateWalletRequest{
			UserID:   "alice",
			Address:  "0xsecond",
			Currency: "ETH",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var second dto.WalletResponse
		decode(t, w, &second)
		require.False(t, second.IsDefault)

		makeDefault := true
		w = env.do(t, http.MethodPatch, "/api/v1/wallets/"+second.ID, dto.UpdateWalletRequest{
			IsDefault: &makeDefault,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = env.do(t, http.MethodGet, "/api/v1/users/alice/wallets", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var wallets []*dto.WalletResponse
		decode(t, w, &wallets)
		require.Len(t, wallets, 2)

		defaults := 0
		for _, wallet := range wallets {
			if wallet.IsDefault {
				defaults++
				assert.Equal(t, second.ID, wallet.ID)
			}
		}
		assert.Equal(t, 1, defaults)
	})
}

func TestUserBalanceAggregation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.DB.CreateTestUser(ctx, "bob")
	env.DB.CreateTestWalletWithBalance(ctx, "bob", "USD", decimal.NewFromInt(70), true)
	env.DB.CreateTestWalletWithBalance(ctx, "bob", "USD", decimal.NewFromInt(30), false)
	frozen := env.DB.CreateTestWalletWithBalance(ctx, "bob", "USD", decimal.NewFromInt(500), false)
	env.DB.FreezeWallet(ctx, frozen.ID)

	w := env.do(t, http.MethodGet, "/api/v1/users/bob/balance?currency=USD", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.BalanceResponse
	decode(t, w, &resp)
	assert.Equal(t, "USD", resp.Currency)
	// Frozen wallets stay out of the aggregate.
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(100)), "balance: %s", resp.Balance)
}

func TestBalanceRequiresCurrency(t *testing.T) {
	env := newTestEnv(t)
	env.DB.CreateTestUser(context.Background(), "carol")

	w := env.do(t, http.MethodGet, "/api/v1/users/carol/balance", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
