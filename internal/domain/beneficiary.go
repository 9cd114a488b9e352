package domain

// Beneficiary is a saved transfer recipient. Unique by ID; account
// number is a lookup key only, duplicates are tolerated.
type Beneficiary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Bank          string `json:"bank"`
	AccountNumber string `json:"accountNumber"`
	Phone         string `json:"phone,omitempty"`
}

// BeneficiaryPatch carries optional beneficiary field updates.
type BeneficiaryPatch struct {
	Name          *string
	Bank          *string
	AccountNumber *string
	Phone         *string
}

// Apply merges the patch into the beneficiary.
func (b *Beneficiary) Apply(patch BeneficiaryPatch) {
	if patch.Name != nil {
		b.Name = *patch.Name
	}
	if patch.Bank != nil {
		b.Bank = *patch.Bank
	}
	if patch.AccountNumber != nil {
		b.AccountNumber = *patch.AccountNumber
	}
	if patch.Phone != nil {
		b.Phone = *patch.Phone
	}
}
