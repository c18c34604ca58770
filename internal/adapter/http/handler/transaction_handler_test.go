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

type settlementServiceStub struct {
	createFn  func(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	confirmFn func(ctx context.Context, id string) (*domain.Transaction, error)
	failFn    func(ctx context.Context, id, reason string) (*domain.Transaction, error)
	getFn     func(ctx context.Context, id string) (*domain.Transaction, error)
	listFn    func(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error)
	statsFn   func(ctx context.Context, userID string) (*domain.TransactionStats, error)
}

func (s *settlementServiceStub) CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
	return s.createFn(ctx, input)
}

func (s *settlementServiceStub) ConfirmTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.confirmFn(ctx, id)
}

func (s *settlementServiceStub) FailTransaction(ctx context.Context, id, reason string) (*domain.Transaction, error) {
	return s.failFn(ctx, id, reason)
}

func (s *settlementServiceStub) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.getFn(ctx, id)
}

func (s *settlementServiceStub) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	return s.listFn(ctx, filter)
}

func (s *settlementServiceStub) TransactionStats(ctx context.Context, userID string) (*domain.TransactionStats, error) {
	return s.statsFn(ctx, userID)
}

func TestTransactionHandler_Create_Success(t *testing.T) {
	txn := &domain.Transaction{ID: "txn-1", Status: domain.TransactionStatusPending}
	var captured usecase.CreateTransactionInput

	h := NewTransactionHandler(&settlementServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
			captured = input
			return txn, nil
		},
	})

	body, _ := json.Marshal(dto.CreateTransactionRequest{
		AssetID:  "asset-1",
		BuyerID:  "buyer-1",
		SellerID: "seller-1",
		Currency: "USDT",
		Type:     "purchase",
		Amount:   decimal.NewFromInt(100),
		Fee:      decimal.NewFromInt(5),
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	if captured.BuyerID != "buyer-1" || captured.SellerID != "seller-1" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
}

func TestTransactionHandler_Create_SameUser(t *testing.T) {
	h := NewTransactionHandler(&settlementServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
			return nil, domain.ErrSameUser
		},
	})

	body, _ := json.Marshal(dto.CreateTransactionRequest{
		AssetID:  "asset-1",
		BuyerID:  "user-1",
		SellerID: "user-1",
		Currency: "USDT",
		Type:     "purchase",
		Amount:   decimal.NewFromInt(100),
	})
	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransactionHandler_Confirm_Success(t *testing.T) {
	h := NewTransactionHandler(&settlementServiceStub{
		confirmFn: func(ctx context.Context, id string) (*domain.Transaction, error) {
			return &domain.Transaction{ID: id, Status: domain.TransactionStatusCompleted}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/txn-1/confirm", nil)
	req = setChiURLParam(req, "id", "txn-1")
	rec := httptest.NewRecorder()

	h.Confirm(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.TransactionStatusCompleted) {
		t.Fatalf("expected completed status, got %s", resp.Status)
	}
}

func TestTransactionHandler_Confirm_InsufficientFunds(t *testing.T) {
	h := NewTransactionHandler(&settlementServiceStub{
		confirmFn: func(ctx context.Context, id string) (*domain.Transaction, error) {
			return &domain.Transaction{ID: id, Status: domain.TransactionStatusFailed}, domain.ErrInsufficientBalance
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/txn-1/confirm", nil)
	req = setChiURLParam(req, "id", "txn-1")
	rec := httptest.NewRecorder()

	h.Confirm(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.TransactionStatusFailed) {
		t.Fatalf("expected failed transaction in body, got %s", resp.Status)
	}
}

func TestTransactionHandler_Confirm_AlreadySettled(t *testing.T) {
	h := NewTransactionHandler(&settlementServiceStub{
		confirmFn: func(ctx context.Context, id string) (*domain.Transaction, error) {
			return nil, domain.ErrInvalidState
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/txn-1/confirm", nil)
	req = setChiURLParam(req, "id", "txn-1")
	rec := httptest.NewRecorder()

	h.Confirm(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestTransactionHandler_Fail(t *testing.T) {
	var capturedReason string
	h := NewTransactionHandler(&settlementServiceStub{
		failFn: func(ctx context.Context, id, reason string) (*domain.Transaction, error) {
			capturedReason = reason
			return &domain.Transaction{ID: id, Status: domain.TransactionStatusFailed}, nil
		},
	})

	body, _ := json.Marshal(dto.FailTransactionRequest{Reason: "buyer cancelled"})
	req := httptest.NewRequest(http.MethodPost, "/transactions/txn-1/fail", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "txn-1")
	rec := httptest.NewRecorder()

	h.Fail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if capturedReason != "buyer cancelled" {
		t.Fatalf("expected reason to propagate, got %q", capturedReason)
	}
}

func TestTransactionHandler_List(t *testing.T) {
	h := NewTransactionHandler(&settlementServiceStub{
		listFn: func(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
			if filter.UserID != "user-1" || filter.Status != domain.TransactionStatusCompleted {
				t.Fatalf("unexpected filter %+v", filter)
			}
			if filter.Page != 2 || filter.Limit != 5 {
				t.Fatalf("unexpected pagination %+v", filter)
			}
			return []*domain.Transaction{{ID: "txn-1"}}, 11, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions?user_id=user-1&status=completed&page=2&limit=5", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.TransactionListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 11 || len(resp.Transactions) != 1 {
		t.Fatalf("unexpected list response: %+v", resp)
	}
}

func TestTransactionHandler_Stats(t *testing.T) {
	h := NewTransactionHandler(&settlementServiceStub{
		statsFn: func(ctx context.Context, userID string) (*domain.TransactionStats, error) {
			return &domain.TransactionStats{
				TotalPurchased:    decimal.NewFromInt(100),
				TotalTransactions: 3,
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/users/user-1/transactions/stats", nil)
	req = setChiURLParam(req, "userID", "user-1")
	rec := httptest.NewRecorder()

	h.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.TransactionStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalTransactions != 3 {
		t.Fatalf("expected 3 transactions, got %d", resp.TotalTransactions)
	}
}
