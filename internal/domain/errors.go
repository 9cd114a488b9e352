package domain

import "errors"

var (
	// Transaction errors
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidFee       = errors.New("fee must not be negative")
	ErrInvalidDirection = errors.New("direction must be debit or credit")

	// Entity lookup errors
	ErrBeneficiaryNotFound  = errors.New("beneficiary not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrLoanNotFound         = errors.New("loan application not found")

	// Loan errors
	ErrInvalidLoanStatus = errors.New("unknown loan status")

	// Snapshot errors
	ErrSnapshotVersionAhead = errors.New("snapshot version is newer than this build supports")
)
