package models

import (
	"fmt"
	"strings"
)

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	Preferences string `json:"preferences" validate:"required"`
	K           int    `json:"k,omitempty" validate:"omitempty,min=1"`
}

// Validate trims the preferences, applies defaultK when K is unset, and caps K at maxK.
// Returns ErrValidation when the preferences are blank or K is negative.
func (r *RecommendRequest) Validate(defaultK, maxK int) error {
	r.Preferences = strings.TrimSpace(r.Preferences)
	if r.Preferences == "" {
		return fmt.Errorf("%w: preferences not provided", ErrValidation)
	}
	if r.K < 0 {
		return fmt.Errorf("%w: k must be positive, got %d", ErrValidation, r.K)
	}
	if r.K == 0 {
		r.K = defaultK
	}
	if maxK > 0 && r.K > maxK {
		r.K = maxK
	}
	return nil
}
