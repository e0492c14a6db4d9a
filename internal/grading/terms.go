package grading

import (
	"fmt"

	"github.com/noah-isme/sma-results-api/internal/models"
	appErrors "github.com/noah-isme/sma-results-api/pkg/errors"
)

// ActivateTerm marks termID active and every other term inactive. The input is not modified.
func ActivateTerm(terms []models.Term, termID string) ([]models.Term, error) {
	found := false
	out := make([]models.Term, len(terms))
	for i, term := range terms {
		term.IsActive = term.ID == termID
		found = found || term.IsActive
		out[i] = term
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("term %s not found", termID))
	}
	return out, nil
}

// NormalizeActiveTerms keeps the first active term and deactivates the rest. The boolean
// reports whether a correction was needed.
func NormalizeActiveTerms(terms []models.Term) ([]models.Term, bool) {
	out := make([]models.Term, len(terms))
	seen, corrected := false, false
	for i, term := range terms {
		if term.IsActive {
			if seen {
				term.IsActive = false
				corrected = true
			}
			seen = true
		}
		out[i] = term
	}
	return out, corrected
}

// ActiveTerm returns the active term, if any.
func ActiveTerm(terms []models.Term) *models.Term {
	for i := range terms {
		if terms[i].IsActive {
			return &terms[i]
		}
	}
	return nil
}
