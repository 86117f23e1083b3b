package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/finanalysis/internal/apperrors"
	"github.com/shopspring/decimal"
)

// DefaultImmaterialThreshold is the absolute amount below which entries are hidden when the
// immaterial filter is on.
var DefaultImmaterialThreshold = decimal.NewFromInt(50)

// InteractionState is an immutable snapshot of the user's edits to a statement: category
// overrides, manual ordering, year selection and the immaterial-amount filter.
// Every command returns a new state with an incremented Version; the receiver is never mutated.
type InteractionState struct {
	Overrides           map[string]Bucket   `json:"overrides"`
	SortOrder           map[Bucket][]string `json:"sortOrder"`
	SelectedYear        string              `json:"selectedYear,omitempty"`
	HideImmaterial      bool                `json:"hideImmaterial"`
	ImmaterialThreshold decimal.Decimal     `json:"immaterialThreshold"`
	Version             int64               `json:"version"`
}

// NewInteractionState returns an empty state using the given immaterial threshold.
func NewInteractionState(threshold decimal.Decimal) InteractionState {
	return InteractionState{
		Overrides:           map[string]Bucket{},
		SortOrder:           map[Bucket][]string{},
		ImmaterialThreshold: threshold,
	}
}

func (s InteractionState) clone() InteractionState {
	next := s
	next.Overrides = make(map[string]Bucket, len(s.Overrides))
	for k, v := range s.Overrides {
		next.Overrides[k] = v
	}
	next.SortOrder = make(map[Bucket][]string, len(s.SortOrder))
	for k, v := range s.SortOrder {
		next.SortOrder[k] = append([]string(nil), v...)
	}
	next.Version = s.Version + 1
	return next
}

// Reorder replaces the manual ordering of one section. An empty order clears it.
func (s InteractionState) Reorder(bucket Bucket, order []string) (InteractionState, error) {
	if !bucket.IsValid() {
		return s, fmt.Errorf("%w: unknown bucket %q", apperrors.ErrValidation, bucket)
	}
	next := s.clone()
	if len(order) == 0 {
		delete(next.SortOrder, bucket)
		return next, nil
	}
	next.SortOrder[bucket] = append([]string(nil), order...)
	return next, nil
}

// MoveItem records a category override sending every entry with the given description to toBucket.
// fromBucket is informational and only validated when set.
func (s InteractionState) MoveItem(description string, fromBucket, toBucket Bucket) (InteractionState, error) {
	if strings.TrimSpace(description) == "" {
		return s, fmt.Errorf("%w: description is required", apperrors.ErrValidation)
	}
	if fromBucket != "" && !fromBucket.IsValid() {
		return s, fmt.Errorf("%w: unknown bucket %q", apperrors.ErrValidation, fromBucket)
	}
	if !toBucket.IsValid() {
		return s, fmt.Errorf("%w: unknown bucket %q", apperrors.ErrValidation, toBucket)
	}
	next := s.clone()
	next.Overrides[description] = toBucket
	return next, nil
}

// SelectYear restricts the statement to entries dated in year. An empty year selects everything.
func (s InteractionState) SelectYear(year string) (InteractionState, error) {
	if year != "" && !isFourDigitYear(year) {
		return s, fmt.Errorf("%w: year must have four digits, got %q", apperrors.ErrValidation, year)
	}
	next := s.clone()
	next.SelectedYear = year
	return next, nil
}

// ToggleImmaterialFilter turns the immaterial-amount filter on or off.
func (s InteractionState) ToggleImmaterialFilter(enabled bool) InteractionState {
	next := s.clone()
	next.HideImmaterial = enabled
	return next
}

// SetImmaterialThreshold changes the absolute amount below which entries are hidden.
func (s InteractionState) SetImmaterialThreshold(amount decimal.Decimal) (InteractionState, error) {
	if amount.IsNegative() {
		return s, fmt.Errorf("%w: threshold must not be negative", apperrors.ErrValidation)
	}
	next := s.clone()
	next.ImmaterialThreshold = amount
	return next, nil
}

// Reset clears overrides and ordering and restores the default year selection,
// keeping the version sequence monotonic.
func (s InteractionState) Reset(defaultYear string, threshold decimal.Decimal) InteractionState {
	next := NewInteractionState(threshold)
	next.SelectedYear = defaultYear
	next.Version = s.Version + 1
	return next
}

func isFourDigitYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
