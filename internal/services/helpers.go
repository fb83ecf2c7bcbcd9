package services

import (
	"errors"
	"strings"

	"github.com/yukikurage/agency-hub/internal/policy"
	"gorm.io/gorm"
)

var (
	ErrNoAgency  = errors.New("user account is not associated with any agency")
	ErrForbidden = errors.New("access denied")
)

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func scopeFor(p policy.Principal) (policy.Scope, error) {
	scope, err := policy.For(p)
	if err != nil {
		return nil, ErrForbidden
	}
	return scope, nil
}

func requireAgency(p policy.Principal) (uint64, error) {
	if p.AgencyID == nil {
		return 0, ErrNoAgency
	}
	return *p.AgencyID, nil
}

func senderOf(p policy.Principal) *uint64 {
	id := p.UserID
	return &id
}

func ptr[T any](v T) *T {
	return &v
}
