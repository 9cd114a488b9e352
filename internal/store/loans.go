package store

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketbank/internal/domain"
)

// LoanDraft is the input for CreateLoanApplication.
type LoanDraft struct {
	Type         string
	Amount       decimal.Decimal
	TermMonths   int
	Purpose      string
	InterestRate decimal.Decimal
}

// LoanApplications returns a copy of the loan application list.
func (s *Store) LoanApplications() []domain.LoanApplication {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.LoanApplication, len(s.state.LoanApplications))
	copy(out, s.state.LoanApplications)
	return out
}

// CreateLoanApplication records a submitted application, computes its
// repayment schedule, raises an in-app notification, and returns the
// new application's id.
func (s *Store) CreateLoanApplication(draft LoanDraft) (string, error) {
	if draft.Amount.LessThanOrEqual(decimal.Zero) {
		return "", domain.ErrInvalidAmount
	}

	loan := domain.LoanApplication{
		ID:              s.idGen.Generate(),
		Type:            draft.Type,
		Amount:          domain.RoundMoney(draft.Amount),
		TermMonths:      draft.TermMonths,
		Purpose:         draft.Purpose,
		Status:          domain.LoanSubmitted,
		InterestRate:    draft.InterestRate,
		ApplicationDate: s.now(),
	}
	loan.ComputeRepayment()

	err := s.mutate("create_loan", func(st *domain.AppState) error {
		st.LoanApplications = append(st.LoanApplications, loan)
		st.Notifications = append(st.Notifications, domain.Notification{
			ID:        s.idGen.Generate(),
			Title:     "Loan Application Submitted",
			Message:   fmt.Sprintf("Your %s application for %s is being processed", loan.Type, loan.Amount.StringFixed(2)),
			Severity:  domain.SeverityInfo,
			Timestamp: loan.ApplicationDate,
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return loan.ID, nil
}

// SetLoanStatus moves an application to a new status and raises a
// status-change notification whose severity depends on the outcome.
// Driven locally or by a remote loan-decision command.
func (s *Store) SetLoanStatus(id string, status domain.LoanStatus) error {
	if !status.IsValid() {
		return domain.ErrInvalidLoanStatus
	}

	return s.mutate("set_loan_status", func(st *domain.AppState) error {
		for i := range st.LoanApplications {
			if st.LoanApplications[i].ID != id {
				continue
			}
			st.LoanApplications[i].Status = status
			st.Notifications = append(st.Notifications, domain.Notification{
				ID:        s.idGen.Generate(),
				Title:     "Loan Status Update",
				Message:   fmt.Sprintf("Your %s application is now %s", st.LoanApplications[i].Type, status),
				Severity:  status.Severity(),
				Timestamp: s.now(),
			})
			return nil
		}
		return domain.ErrLoanNotFound
	})
}
