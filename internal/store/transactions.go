package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketbank/internal/alert"
	"github.com/iho/pocketbank/internal/domain"
)

// TransactionDraft is the validated input the form layer hands to
// CreateTransaction.
type TransactionDraft struct {
	Type                string
	Amount              decimal.Decimal
	Fee                 decimal.Decimal
	Direction           domain.Direction
	Counterparty        string
	CounterpartyBank    string
	CounterpartyAccount string
	Status              domain.TransactionStatus
	Description         string
	Section             string
}

// Transactions returns all transactions sorted newest first. The
// underlying order is not mutated.
func (s *Store) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Transaction, len(s.state.Transactions))
	copy(out, s.state.Transactions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// CreateTransaction records a new transaction and applies its balance
// effect as one unit: no listener or persisted write can ever observe
// the transaction without the balance change or vice versa. Returns
// the new transaction's id.
func (s *Store) CreateTransaction(draft TransactionDraft) (string, error) {
	status := draft.Status
	if status == "" {
		status = domain.TransactionSuccessful
	}

	now := s.now()
	txn := domain.Transaction{
		ID:                  s.idGen.Generate(),
		Type:                draft.Type,
		Amount:              domain.RoundMoney(draft.Amount),
		Fee:                 domain.RoundMoney(draft.Fee),
		Direction:           draft.Direction,
		Counterparty:        draft.Counterparty,
		CounterpartyBank:    draft.CounterpartyBank,
		CounterpartyAccount: draft.CounterpartyAccount,
		Status:              status,
		Reference:           "TXN-" + s.idGen.Generate(),
		Timestamp:           now,
		Description:         draft.Description,
		Section:             draft.Section,
	}
	if err := txn.Validate(); err != nil {
		return "", err
	}

	var (
		sendAlert bool
		alertMsg  alert.Message
	)

	err := s.mutate("create_transaction", func(st *domain.AppState) error {
		st.Transactions = append([]domain.Transaction{txn}, st.Transactions...)
		st.Profile.Balance = domain.RoundMoney(st.Profile.Balance.Add(txn.BalanceDelta()))

		if st.Settings.Notifications && st.Settings.SMSAlerts {
			sendAlert = true
			alertMsg = alert.Message{
				Destination: st.Profile.Phone,
				Text:        alertText(&txn, st.Profile.Balance),
				Category:    string(txn.Direction),
			}
		}

		st.Notifications = append(st.Notifications, domain.Notification{
			ID:        s.idGen.Generate(),
			Title:     notificationTitle(txn.Direction),
			Message:   fmt.Sprintf("%s of %s to %s (%s)", txn.Type, txn.Amount.StringFixed(2), txn.Counterparty, txn.Reference),
			Severity:  notificationSeverity(txn.Direction),
			Timestamp: now,
		})
		return nil
	})
	if err != nil {
		return "", err
	}

	if sendAlert {
		// Delivery is best-effort and must not block the mutation path.
		go s.dispatchAlert(alertMsg)
	}

	if s.metrics != nil {
		s.metrics.TransactionsCreated.Inc()
		amt, _ := txn.Amount.Float64()
		s.metrics.TransactionAmount.Observe(amt)
	}

	return txn.ID, nil
}

// dispatchAlert sends one alert with a bounded timeout. Failure is
// logged only; the local ledger stays the source of truth.
func (s *Store) dispatchAlert(msg alert.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := s.alerts.Send(ctx, msg)
	if err != nil || !res.Success {
		s.logger.Warn().Err(err).Str("error", res.Error).Str("destination", msg.Destination).Msg("alert delivery failed")
		if s.metrics != nil {
			s.metrics.AlertsFailed.Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.AlertsSent.Inc()
	}
}

// DailyChannelDebitTotal sums today's debit Email/SMS transfer amounts,
// the figure the daily channel limit is checked against. Credit
// transfers never count toward the limit, regardless of channel.
func (s *Store) DailyChannelDebitTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now()
	total := decimal.Zero
	for i := range s.state.Transactions {
		t := &s.state.Transactions[i]
		if t.Direction != domain.DirectionDebit {
			continue
		}
		if !t.IsChannelTransfer() {
			continue
		}
		if !sameDay(t.Timestamp, today) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return domain.RoundMoney(total)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func alertText(t *domain.Transaction, balance decimal.Decimal) string {
	if t.Direction == domain.DirectionDebit {
		return fmt.Sprintf("Debit Alert: %s sent to %s. Fee: %s. Bal: %s. Ref: %s",
			t.Amount.StringFixed(2), t.Counterparty, t.Fee.StringFixed(2), balance.StringFixed(2), t.Reference)
	}
	return fmt.Sprintf("Credit Alert: %s received from %s. Bal: %s. Ref: %s",
		t.Amount.StringFixed(2), t.Counterparty, balance.StringFixed(2), t.Reference)
}

func notificationTitle(d domain.Direction) string {
	if d == domain.DirectionDebit {
		return "Debit Transaction"
	}
	return "Credit Transaction"
}

func notificationSeverity(d domain.Direction) domain.Severity {
	if d == domain.DirectionDebit {
		return domain.SeverityInfo
	}
	return domain.SeveritySuccess
}
