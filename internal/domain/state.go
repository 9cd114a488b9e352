package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SchemaVersion is the state layout version this build reads and
// writes. Persisted or imported state carrying any other version is
// migrated before use.
const SchemaVersion = 1

// AppState is the aggregate of all locally-held data. It is the single
// unit of persistence and the single unit of migration.
type AppState struct {
	Profile          UserProfile       `json:"userData"`
	Transactions     []Transaction     `json:"transactions"`
	Beneficiaries    []Beneficiary     `json:"beneficiaries"`
	Notifications    []Notification    `json:"notifications"`
	LoanApplications []LoanApplication `json:"loanApplications"`
	Settings         AppSettings       `json:"settings"`
	LastSynced       time.Time         `json:"lastSynced"`
	Version          int               `json:"version"`
}

// SnapshotEnvelope wraps a full state copy for export and import.
type SnapshotEnvelope struct {
	Data      AppState  `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	Version   int       `json:"version"`
}

// DefaultSettings returns the out-of-box preferences.
func DefaultSettings() AppSettings {
	return AppSettings{
		Theme:         "light",
		Notifications: true,
		SMSAlerts:     true,
		Language:      "en",
	}
}

// DefaultState constructs the seeded demo state. It has no external
// dependencies and cannot fail.
func DefaultState(now time.Time) *AppState {
	money := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	return &AppState{
		Profile: UserProfile{
			ID:            "usr-0001",
			FullName:      "Adaeze Okafor",
			Email:         "adaeze.okafor@example.com",
			Phone:         "+2348012345678",
			AccountNumber: "0123456789",
			Balance:       money("125000.00"),
			Status:        AccountStatusActive,
		},
		Transactions: []Transaction{
			{
				ID:           "txn-seed-0003",
				Type:         "Bank Transfer",
				Amount:       money("15000.00"),
				Fee:          money("26.88"),
				Direction:    DirectionDebit,
				Counterparty: "Chinedu Eze",
				Status:       TransactionSuccessful,
				Reference:    "TXN-SEED-0003",
				Timestamp:    now.Add(-24 * time.Hour),
				Description:  "Rent contribution",
			},
			{
				ID:           "txn-seed-0002",
				Type:         "Salary",
				Amount:       money("250000.00"),
				Fee:          decimal.Zero,
				Direction:    DirectionCredit,
				Counterparty: "Acme Payroll",
				Status:       TransactionSuccessful,
				Reference:    "TXN-SEED-0002",
				Timestamp:    now.Add(-72 * time.Hour),
				Description:  "Monthly salary",
			},
			{
				ID:           "txn-seed-0001",
				Type:         "Airtime",
				Amount:       money("1000.00"),
				Fee:          decimal.Zero,
				Direction:    DirectionDebit,
				Counterparty: "MTN",
				Status:       TransactionSuccessful,
				Reference:    "TXN-SEED-0001",
				Timestamp:    now.Add(-96 * time.Hour),
				Description:  "Airtime top-up",
			},
		},
		Beneficiaries: []Beneficiary{
			{
				ID:            "ben-seed-0001",
				Name:          "Chinedu Eze",
				Bank:          "First Bank",
				AccountNumber: "2233445566",
				Phone:         "+2348098765432",
			},
			{
				ID:            "ben-seed-0002",
				Name:          "Funmi Adeyemi",
				Bank:          "GTBank",
				AccountNumber: "0011223344",
			},
		},
		Notifications:    []Notification{},
		LoanApplications: []LoanApplication{},
		Settings:         DefaultSettings(),
		LastSynced:       now,
		Version:          SchemaVersion,
	}
}

// Clone returns a deep copy of the state: every slice is freshly
// allocated, so the copy and the original never share backing arrays.
// Element types are plain values, so copying them is enough.
func (s *AppState) Clone() *AppState {
	out := *s
	out.Transactions = append([]Transaction(nil), s.Transactions...)
	out.Beneficiaries = append([]Beneficiary(nil), s.Beneficiaries...)
	out.Notifications = append([]Notification(nil), s.Notifications...)
	out.LoanApplications = append([]LoanApplication(nil), s.LoanApplications...)
	return &out
}

// Migrate brings an older state up to the current schema version. It
// starts from the default state and additively merges the profile,
// transactions and beneficiaries found on the old state. Migrating an
// already-current state returns it unchanged, so the routine is
// idempotent.
func Migrate(old *AppState, now time.Time) *AppState {
	if old == nil {
		return DefaultState(now)
	}
	if old.Version == SchemaVersion {
		return old
	}

	st := DefaultState(now)
	mergeProfile(&st.Profile, old.Profile)
	if old.Transactions != nil {
		st.Transactions = old.Transactions
	}
	if old.Beneficiaries != nil {
		st.Beneficiaries = old.Beneficiaries
	}
	st.Version = SchemaVersion

	return st
}

// mergeProfile copies every non-zero field from old onto dst.
func mergeProfile(dst *UserProfile, old UserProfile) {
	if old.ID != "" {
		dst.ID = old.ID
	}
	if old.FullName != "" {
		dst.FullName = old.FullName
	}
	if old.Email != "" {
		dst.Email = old.Email
	}
	if old.Phone != "" {
		dst.Phone = old.Phone
	}
	if old.AccountNumber != "" {
		dst.AccountNumber = old.AccountNumber
	}
	if old.ProfilePicture != "" {
		dst.ProfilePicture = old.ProfilePicture
	}
	if !old.Balance.IsZero() {
		dst.Balance = old.Balance
	}
	if old.Status != "" {
		dst.Status = old.Status
	}
}
