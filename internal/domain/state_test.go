package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDefaultStateIsCurrentVersion(t *testing.T) {
	st := DefaultState(time.Now())

	if st.Version != SchemaVersion {
		t.Fatalf("expected version %d, got %d", SchemaVersion, st.Version)
	}
	if st.Profile.Status != AccountStatusActive {
		t.Fatalf("expected active seed profile, got %s", st.Profile.Status)
	}
	if len(st.Transactions) == 0 || len(st.Beneficiaries) == 0 {
		t.Fatalf("expected seeded transactions and beneficiaries")
	}
}

func TestMigrateCurrentVersionIsNoOp(t *testing.T) {
	now := time.Now()
	st := DefaultState(now)
	st.Profile.FullName = "Someone Else"

	migrated := Migrate(st, now)
	if migrated != st {
		t.Fatalf("expected same state back for current version")
	}
	if migrated.Profile.FullName != "Someone Else" {
		t.Fatalf("expected state untouched, got %s", migrated.Profile.FullName)
	}
}

func TestMigrateVersionZeroMergesOldFields(t *testing.T) {
	now := time.Now()

	old := &AppState{
		Version: 0,
		Profile: UserProfile{
			FullName: "Old Owner",
			Balance:  decimal.RequireFromString("42.50"),
		},
		Transactions: []Transaction{
			{ID: "txn-old-1", Reference: "TXN-OLD-1", Amount: decimal.RequireFromString("10.00"), Direction: DirectionDebit},
		},
		Beneficiaries: []Beneficiary{
			{ID: "ben-old-1", Name: "Old Friend", AccountNumber: "999"},
		},
	}

	migrated := Migrate(old, now)

	if migrated.Version != SchemaVersion {
		t.Fatalf("expected version %d, got %d", SchemaVersion, migrated.Version)
	}
	if migrated.Profile.FullName != "Old Owner" {
		t.Fatalf("expected old profile name kept, got %s", migrated.Profile.FullName)
	}
	if migrated.Profile.Email == "" {
		t.Fatalf("expected default email filled in for missing field")
	}
	if !migrated.Profile.Balance.Equal(decimal.RequireFromString("42.50")) {
		t.Fatalf("expected old balance kept, got %s", migrated.Profile.Balance)
	}
	if len(migrated.Transactions) != 1 || migrated.Transactions[0].ID != "txn-old-1" {
		t.Fatalf("expected old transactions carried over, got %+v", migrated.Transactions)
	}
	if len(migrated.Beneficiaries) != 1 || migrated.Beneficiaries[0].ID != "ben-old-1" {
		t.Fatalf("expected old beneficiaries carried over, got %+v", migrated.Beneficiaries)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	now := time.Now()

	old := &AppState{
		Version:      0,
		Transactions: []Transaction{{ID: "txn-old-1"}},
	}

	once := Migrate(old, now)
	twice := Migrate(once, now)

	if twice != once {
		t.Fatalf("expected migrating twice to return the once-migrated state")
	}
}

func TestMigrateNilReturnsDefault(t *testing.T) {
	st := Migrate(nil, time.Now())
	if st == nil || st.Version != SchemaVersion {
		t.Fatalf("expected default state for nil input")
	}
}
