package store

import (
	"strings"

	"github.com/iho/pocketbank/internal/domain"
)

// BeneficiaryDraft is the input for AddBeneficiary.
type BeneficiaryDraft struct {
	Name          string
	Bank          string
	AccountNumber string
	Phone         string
}

// Beneficiaries returns a copy of the beneficiary list.
func (s *Store) Beneficiaries() []domain.Beneficiary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Beneficiary, len(s.state.Beneficiaries))
	copy(out, s.state.Beneficiaries)
	return out
}

// FindBeneficiaryByAccount looks up a beneficiary by exact match on
// the trimmed account number. Account numbers are not unique; the
// first match wins.
func (s *Store) FindBeneficiaryByAccount(number string) (domain.Beneficiary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	number = strings.TrimSpace(number)
	for i := range s.state.Beneficiaries {
		if strings.TrimSpace(s.state.Beneficiaries[i].AccountNumber) == number {
			return s.state.Beneficiaries[i], true
		}
	}
	return domain.Beneficiary{}, false
}

// AddBeneficiary creates a beneficiary and returns its id.
func (s *Store) AddBeneficiary(draft BeneficiaryDraft) (string, error) {
	id := s.idGen.Generate()
	err := s.mutate("add_beneficiary", func(st *domain.AppState) error {
		st.Beneficiaries = append(st.Beneficiaries, domain.Beneficiary{
			ID:            id,
			Name:          draft.Name,
			Bank:          draft.Bank,
			AccountNumber: strings.TrimSpace(draft.AccountNumber),
			Phone:         draft.Phone,
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateBeneficiary applies a partial edit to the beneficiary with the
// given id.
func (s *Store) UpdateBeneficiary(id string, patch domain.BeneficiaryPatch) error {
	return s.mutate("update_beneficiary", func(st *domain.AppState) error {
		for i := range st.Beneficiaries {
			if st.Beneficiaries[i].ID == id {
				st.Beneficiaries[i].Apply(patch)
				return nil
			}
		}
		return domain.ErrBeneficiaryNotFound
	})
}

// DeleteBeneficiary removes the beneficiary with the given id.
func (s *Store) DeleteBeneficiary(id string) error {
	return s.mutate("delete_beneficiary", func(st *domain.AppState) error {
		for i := range st.Beneficiaries {
			if st.Beneficiaries[i].ID == id {
				st.Beneficiaries = append(st.Beneficiaries[:i], st.Beneficiaries[i+1:]...)
				return nil
			}
		}
		return domain.ErrBeneficiaryNotFound
	})
}
