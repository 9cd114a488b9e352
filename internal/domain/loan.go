package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus represents where a loan application is in its lifecycle.
type LoanStatus string

const (
	LoanDraft       LoanStatus = "draft"
	LoanSubmitted   LoanStatus = "submitted"
	LoanUnderReview LoanStatus = "under_review"
	LoanApproved    LoanStatus = "approved"
	LoanRejected    LoanStatus = "rejected"
)

// Valid loan statuses.
var validLoanStatuses = map[LoanStatus]bool{
	LoanDraft:       true,
	LoanSubmitted:   true,
	LoanUnderReview: true,
	LoanApproved:    true,
	LoanRejected:    true,
}

// IsValid checks if the status is a known loan status.
func (s LoanStatus) IsValid() bool {
	return validLoanStatuses[s]
}

// Severity maps a loan status to the severity of the notification
// raised when an application reaches it.
func (s LoanStatus) Severity() Severity {
	switch s {
	case LoanApproved:
		return SeveritySuccess
	case LoanRejected:
		return SeverityError
	default:
		return SeverityInfo
	}
}

// LoanApplication is a locally-tracked loan request. Status transitions
// are driven by the owner or by a remote loan-decision command.
type LoanApplication struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	TermMonths      int             `json:"termMonths"`
	Purpose         string          `json:"purpose,omitempty"`
	Status          LoanStatus      `json:"status"`
	InterestRate    decimal.Decimal `json:"interestRate"`
	MonthlyPayment  decimal.Decimal `json:"monthlyPayment"`
	TotalRepayment  decimal.Decimal `json:"totalRepayment"`
	ApplicationDate time.Time       `json:"applicationDate"`
}

// ComputeRepayment fills the derived repayment fields from amount, rate
// and term using flat annual interest, rounded to 2 decimals.
func (l *LoanApplication) ComputeRepayment() {
	if l.TermMonths <= 0 {
		return
	}
	years := decimal.NewFromInt(int64(l.TermMonths)).Div(decimal.NewFromInt(12))
	interest := l.Amount.Mul(l.InterestRate).Div(decimal.NewFromInt(100)).Mul(years)
	l.TotalRepayment = RoundMoney(l.Amount.Add(interest))
	l.MonthlyPayment = RoundMoney(l.TotalRepayment.Div(decimal.NewFromInt(int64(l.TermMonths))))
}
