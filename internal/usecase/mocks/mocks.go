package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketcore/settlement/internal/domain"
	"github.com/marketcore/settlement/internal/usecase"
)

// MockWalletRepository is a mock implementation of WalletRepository.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet

	CreateFunc              func(ctx context.Context, wallet *domain.Wallet) error
	CreateTxFunc            func(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Wallet, error)
	GetByIDForUpdateFunc    func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error)
	GetByAddressFunc        func(ctx context.Context, address, currency string) (*domain.Wallet, error)
	GetDefaultForUpdateFunc func(ctx context.Context, tx usecase.Transaction, userID, currency string) (*domain.Wallet, error)
	ListActiveForUpdateFunc func(ctx context.Context, tx usecase.Transaction, userID, currency string) ([]*domain.Wallet, error)
	ListByUserFunc          func(ctx context.Context, userID string) ([]*domain.Wallet, error)
	ClearDefaultFunc        func(ctx context.Context, tx usecase.Transaction, userID, currency string) error
	UpdateBalanceFunc       func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdateFunc              func(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error
	SumActiveBalanceFunc    func(ctx context.Context, userID, currency string) (decimal.Decimal, error)
}

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]*domain.Wallet),
	}
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, wallet)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.ID] = wallet
	return nil
}

func (m *MockWalletRepository) CreateTx(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, wallet)
	}
	return m.Create(ctx, wallet)
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.wallets[id]; ok {
		return w, nil
	}
	return nil, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockWalletRepository) GetByAddress(ctx context.Context, address, currency string) (*domain.Wallet, error) {
	if m.GetByAddressFunc != nil {
		return m.GetByAddressFunc(ctx, address, currency)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.wallets {
		if w.Address == address && w.Currency == currency {
			return w, nil
		}
	}
	return nil, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) GetDefaultForUpdate(ctx context.Context, tx usecase.Transaction, userID, currency string) (*domain.Wallet, error) {
	if m.GetDefaultForUpdateFunc != nil {
		return m.GetDefaultForUpdateFunc(ctx, tx, userID, currency)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.wallets {
		if w.UserID == userID && w.Currency == currency && w.IsDefault {
			return w, nil
		}
	}
	return nil, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) ListActiveForUpdate(ctx context.Context, tx usecase.Transaction, userID, currency string) ([]*domain.Wallet, error) {
	if m.ListActiveForUpdateFunc != nil {
		return m.ListActiveForUpdateFunc(ctx, tx, userID, currency)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var wallets []*domain.Wallet
	for _, w := range m.wallets {
		if w.UserID == userID && w.Currency == currency && w.Status == domain.WalletStatusActive {
			wallets = append(wallets, w)
		}
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].ID < wallets[j].ID })
	return wallets, nil
}

func (m *MockWalletRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var wallets []*domain.Wallet
	for _, w := range m.wallets {
		if w.UserID == userID {
			wallets = append(wallets, w)
		}
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].ID < wallets[j].ID })
	return wallets, nil
}

func (m *MockWalletRepository) ClearDefault(ctx context.Context, tx usecase.Transaction, userID, currency string) error {
	if m.ClearDefaultFunc != nil {
		return m.ClearDefaultFunc(ctx, tx, userID, currency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.wallets {
		if w.UserID == userID && w.Currency == currency {
			w.IsDefault = false
		}
	}
	return nil
}

func (m *MockWalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.wallets[id]; ok {
		w.Balance = balance
		w.Version++
		w.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockWalletRepository) Update(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, wallet)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.ID] = wallet
	return nil
}

func (m *MockWalletRepository) SumActiveBalance(ctx context.Context, userID, currency string) (decimal.Decimal, error) {
	if m.SumActiveBalanceFunc != nil {
		return m.SumActiveBalanceFunc(ctx, userID, currency)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, w := range m.wallets {
		if w.UserID == userID && w.Currency == currency && w.Status == domain.WalletStatusActive {
			total = total.Add(w.Balance)
		}
	}
	return total, nil
}

// MockRecordRepository is a mock implementation of RecordRepository.
type MockRecordRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.FinancialRecord
	order   []string

	CreateFunc   func(ctx context.Context, record *domain.FinancialRecord) error
	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, record *domain.FinancialRecord) error
	GetByIDFunc  func(ctx context.Context, id string) (*domain.FinancialRecord, error)
	QueryFunc    func(ctx context.Context, userID string, filter domain.RecordFilter) ([]*domain.FinancialRecord, int64, error)
	StatsFunc    func(ctx context.Context, userID, currency string) (*domain.RecordStats, error)
}

func NewMockRecordRepository() *MockRecordRepository {
	return &MockRecordRepository{
		records: make(map[string]*domain.FinancialRecord),
	}
}

func (m *MockRecordRepository) Create(ctx context.Context, record *domain.FinancialRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	m.order = append(m.order, record.ID)
	return nil
}

func (m *MockRecordRepository) CreateTx(ctx context.Context, tx usecase.Transaction, record *domain.FinancialRecord) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, record)
	}
	return m.Create(ctx, record)
}

func (m *MockRecordRepository) GetByID(ctx context.Context, id string) (*domain.FinancialRecord, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.records[id]; ok {
		return r, nil
	}
	return nil, domain.ErrRecordNotFound
}

func (m *MockRecordRepository) Query(ctx context.Context, userID string, filter domain.RecordFilter) ([]*domain.FinancialRecord, int64, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, userID, filter)
	}
	records := m.ByUser(userID)
	return records, int64(len(records)), nil
}

func (m *MockRecordRepository) Stats(ctx context.Context, userID, currency string) (*domain.RecordStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, userID, currency)
	}
	return &domain.RecordStats{}, nil
}

// All returns every stored record in insertion order.
func (m *MockRecordRepository) All() []*domain.FinancialRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]*domain.FinancialRecord, 0, len(m.order))
	for _, id := range m.order {
		records = append(records, m.records[id])
	}
	return records
}

// ByUser returns a user's records in insertion order.
func (m *MockRecordRepository) ByUser(userID string) []*domain.FinancialRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var records []*domain.FinancialRecord
	for _, id := range m.order {
		if m.records[id].UserID == userID {
			records = append(records, m.records[id])
		}
	}
	return records
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error)
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, memo string, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error)
	StatsFunc            func(ctx context.Context, userID string) (*domain.TransactionStats, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.ID] = txn
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, memo string, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, memo, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.transactions[id]; ok {
		t.Status = status
		t.Memo = memo
		t.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockTransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var transactions []*domain.Transaction
	for _, t := range m.transactions {
		transactions = append(transactions, t)
	}
	sort.Slice(transactions, func(i, j int) bool { return transactions[i].ID < transactions[j].ID })
	return transactions, int64(len(transactions)), nil
}

func (m *MockTransactionRepository) Stats(ctx context.Context, userID string) (*domain.TransactionStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, userID)
	}
	return &domain.TransactionStats{}, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			events = append(events, e)
			if len(events) == limit {
				break
			}
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// Events returns every stored event in insertion order.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := make([]*domain.OutboxEvent, len(m.events))
	copy(events, m.events)
	return events
}

// MockReconciliationRepository is a mock implementation of ReconciliationRepository.
type MockReconciliationRepository struct {
	MismatchedWalletsFunc func(ctx context.Context) ([]string, error)
}

func NewMockReconciliationRepository() *MockReconciliationRepository {
	return &MockReconciliationRepository{}
}

func (m *MockReconciliationRepository) MismatchedWallets(ctx context.Context) ([]string, error) {
	if m.MismatchedWalletsFunc != nil {
		return m.MismatchedWalletsFunc(ctx)
	}
	return nil, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%03d", m.counter)
}

// MockRetrier is a pass-through Retrier that counts attempts.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error

	mu    sync.Mutex
	Calls int
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	return operation()
}

// MockCache is an in-memory Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", domain.ErrRecordNotFound
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
