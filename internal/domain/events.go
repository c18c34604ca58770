package domain

import (
	"encoding/json"
	"time"
)

// Event types
const (
	EventTypeWalletCreated       = "wallet.created"
	EventTypeBalanceCredited     = "balance.credited"
	EventTypeBalanceDebited      = "balance.debited"
	EventTypeTransferCompleted   = "transfer.completed"
	EventTypeWithdrawalRequested = "withdrawal.requested"
	EventTypeDepositRecorded     = "deposit.recorded"
	EventTypeSettlementCompleted = "settlement.completed"
	EventTypeSettlementFailed    = "settlement.failed"
)

// Aggregate types
const (
	AggregateTypeWallet      = "wallet"
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent represents an event written in the same atomic unit as
// the state change it describes, to be relayed asynchronously.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// MarshalPayload converts an event payload struct into the generic map
// form stored in the outbox row.
func MarshalPayload(payload any) map[string]any {
	raw, err := json.Marshal(payload)
	if err != nil {
		return map[string]any{}
	}

	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}

	return out
}

// BalanceMovedEvent payload for credits and debits.
type BalanceMovedEvent struct {
	UserID   string `json:"user_id"`
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
	Reason   string `json:"reason"`
}

// TransferCompletedEvent payload
type TransferCompletedEvent struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Currency   string `json:"currency"`
	Amount     string `json:"amount"`
}

// SettlementEvent payload for settlement.completed / settlement.failed.
type SettlementEvent struct {
	TransactionID string `json:"transaction_id"`
	BuyerID       string `json:"buyer_id"`
	SellerID      string `json:"seller_id"`
	Currency      string `json:"currency"`
	Amount        string `json:"amount"`
	Fee           string `json:"fee"`
	NetAmount     string `json:"net_amount"`
	Reason        string `json:"reason,omitempty"`
}
