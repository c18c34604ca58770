package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/marketcore/settlement/internal/adapter/http/dto"
	"github.com/marketcore/settlement/internal/domain"
	"github.com/marketcore/settlement/internal/usecase"
)

type walletServiceStub struct {
	createFn     func(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error)
	getFn        func(ctx context.Context, id string) (*domain.Wallet, error)
	listFn       func(ctx context.Context, userID string) ([]*domain.Wallet, error)
	updateFn     func(ctx context.Context, id string, input usecase.UpdateWalletInput) (*domain.Wallet, error)
	getBalanceFn func(ctx context.Context, userID, currency string) (decimal.Decimal, error)
}

func (s *walletServiceStub) CreateWallet(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error) {
	return s.createFn(ctx, input)
}

func (s *walletServiceStub) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return s.getFn(ctx, id)
}

func (s *walletServiceStub) ListWallets(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	return s.listFn(ctx, userID)
}

func (s *walletServiceStub) UpdateWallet(ctx context.Context, id string, input usecase.UpdateWalletInput) (*domain.Wallet, error) {
	return s.updateFn(ctx, id, input)
}

func (s *walletServiceStub) GetBalance(ctx context.Context, userID, currency string) (decimal.Decimal, error) {
	return s.getBalanceFn(ctx, userID, currency)
}

func TestWalletHandler_Create_Success(t *testing.T) {
	wallet := &domain.Wallet{ID: "w-1", UserID: "user-1", Currency: "USDT"}
	var captured usecase.CreateWalletInput

	h := NewWalletHandler(&walletServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error) {
			captured = input
			return wallet, nil
		},
	})

	body, _ := json.Marshal(dto.CreateWalletRequest{
		UserID:   "user-1",
		Address:  "0xabc123",
		Currency: "USDT",
	})

	req := httptest.NewRequest(http.MethodPost, "/wallets", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	if captured.UserID != "user-1" || captured.Address != "0xabc123" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.WalletResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "w-1" {
		t.Fatalf("expected wallet ID w-1, got %s", resp.ID)
	}
}

func TestWalletHandler_Create_Duplicate(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error) {
			return nil, domain.ErrDuplicateWallet
		},
	})

	body, _ := json.Marshal(dto.CreateWalletRequest{UserID: "user-1", Address: "0xabc123", Currency: "USDT"})
	req := httptest.NewRequest(http.MethodPost, "/wallets", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestWalletHandler_Create_InvalidBody(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error) {
			t.Fatal("CreateWallet should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/wallets", bytes.NewBufferString("{bad json"))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWalletHandler_Get(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Wallet, error) {
			return &domain.Wallet{ID: id}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/wallets/w-1", nil)
	req = setChiURLParam(req, "id", "w-1")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestWalletHandler_Get_NotFound(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Wallet, error) {
			return nil, domain.ErrWalletNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/wallets/missing", nil)
	req = setChiURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestWalletHandler_Update(t *testing.T) {
	var captured usecase.UpdateWalletInput
	h := NewWalletHandler(&walletServiceStub{
		updateFn: func(ctx context.Context, id string, input usecase.UpdateWalletInput) (*domain.Wallet, error) {
			captured = input
			return &domain.Wallet{ID: id, Label: "savings"}, nil
		},
	})

	label := "savings"
	body, _ := json.Marshal(dto.UpdateWalletRequest{Label: &label})
	req := httptest.NewRequest(http.MethodPatch, "/wallets/w-1", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "w-1")
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if captured.Label == nil || *captured.Label != "savings" {
		t.Fatalf("expected label patch to propagate, got %+v", captured)
	}
}

func TestWalletHandler_GetBalance(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		getBalanceFn: func(ctx context.Context, userID, currency string) (decimal.Decimal, error) {
			if userID != "user-1" || currency != "USDT" {
				t.Fatalf("unexpected args: %s %s", userID, currency)
			}
			return decimal.RequireFromString("120.5"), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/users/user-1/balance?currency=USDT", nil)
	req = setChiURLParam(req, "userID", "user-1")
	rec := httptest.NewRecorder()

	h.GetBalance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Balance.Equal(decimal.RequireFromString("120.5")) {
		t.Fatalf("expected balance 120.5, got %s", resp.Balance)
	}
}

func TestWalletHandler_GetBalance_MissingCurrency(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		getBalanceFn: func(ctx context.Context, userID, currency string) (decimal.Decimal, error) {
			t.Fatal("GetBalance should not be called without currency")
			return decimal.Zero, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/users/user-1/balance", nil)
	req = setChiURLParam(req, "userID", "user-1")
	rec := httptest.NewRecorder()

	h.GetBalance(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
