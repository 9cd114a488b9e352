package domain

import "github.com/shopspring/decimal"

// AccountStatus represents whether a profile's account is usable.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// UserProfile is the single account owner. Exactly one instance exists
// per store lifetime; balance mutations always go through the store.
type UserProfile struct {
	ID             string          `json:"id"`
	FullName       string          `json:"fullName"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	AccountNumber  string          `json:"accountNumber"`
	ProfilePicture string          `json:"profilePicture,omitempty"`
	Balance        decimal.Decimal `json:"balance"`
	Status         AccountStatus   `json:"status"`
}

// ProfilePatch carries optional profile field updates. Nil fields are
// left untouched; balance is deliberately absent (use SetBalance).
type ProfilePatch struct {
	FullName       *string
	Email          *string
	Phone          *string
	ProfilePicture *string
	Status         *AccountStatus
}

// Apply merges the patch into the profile.
func (p *UserProfile) Apply(patch ProfilePatch) {
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.ProfilePicture != nil {
		p.ProfilePicture = *patch.ProfilePicture
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
}
