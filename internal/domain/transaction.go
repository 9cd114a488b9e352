package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether a transaction moves money out of or into
// the account.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// TransactionStatus represents the settlement state of a transaction.
type TransactionStatus string

const (
	TransactionSuccessful TransactionStatus = "successful"
	TransactionPending    TransactionStatus = "pending"
	TransactionFailed     TransactionStatus = "failed"
)

// Transaction is an append-only ledger record. It is immutable after
// creation; creation and the matching balance update happen as one unit
// inside the store.
type Transaction struct {
	ID                  string            `json:"id"`
	Type                string            `json:"type"`
	Amount              decimal.Decimal   `json:"amount"`
	Fee                 decimal.Decimal   `json:"fee"`
	Direction           Direction         `json:"direction"`
	Counterparty        string            `json:"counterparty"`
	CounterpartyBank    string            `json:"counterpartyBank,omitempty"`
	CounterpartyAccount string            `json:"counterpartyAccount,omitempty"`
	Status              TransactionStatus `json:"status"`
	Reference           string            `json:"reference"`
	Timestamp           time.Time         `json:"timestamp"`
	Description         string            `json:"description,omitempty"`
	Section             string            `json:"section,omitempty"`
}

// BalanceDelta returns the signed effect of the transaction on the
// account balance: debits cost amount plus fee, credits add amount.
func (t *Transaction) BalanceDelta() decimal.Decimal {
	if t.Direction == DirectionDebit {
		return t.Amount.Add(t.Fee).Neg()
	}
	return t.Amount
}

// IsChannelTransfer reports whether the transaction went through one of
// the daily-limited messaging channels (Email or SMS transfers).
func (t *Transaction) IsChannelTransfer() bool {
	return strings.Contains(t.Type, "Email") || strings.Contains(t.Type, "SMS")
}

// Validate checks creation-time invariants.
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if t.Fee.IsNegative() {
		return ErrInvalidFee
	}
	if t.Direction != DirectionDebit && t.Direction != DirectionCredit {
		return ErrInvalidDirection
	}
	return nil
}
