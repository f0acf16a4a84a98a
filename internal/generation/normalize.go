package generation

import (
	"fmt"

	"github.com/repetix/repetix-api/internal/domain"
)

// NormalizeCandidates trims every candidate and drops the ones that violate
// the flashcard text limits. It fails with ErrSchemaValidation when nothing
// usable is left.
func NormalizeCandidates(raw []domain.Candidate) ([]domain.Candidate, error) {
	out := make([]domain.Candidate, 0, len(raw))
	for _, c := range raw {
		n, err := c.Normalize()
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no valid candidates in response (%d received)", ErrSchemaValidation, len(raw))
	}
	return out, nil
}
