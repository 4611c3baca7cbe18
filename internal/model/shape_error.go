package model

import "fmt"

// ShapeError records a pair payload that is missing a field or carries a
// malformed value.
type ShapeError struct {
	PairAddress string `json:"pair_address"`
	Field       string `json:"field"`
	Reason      string `json:"reason"`
}

func newShapeError(pair, field, reason string) *ShapeError {
	return &ShapeError{PairAddress: pair, Field: field, Reason: reason}
}

func (e *ShapeError) Error() string {
	if e.PairAddress == "" {
		return fmt.Sprintf("pair payload: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("pair %s: %s: %s", e.PairAddress, e.Field, e.Reason)
}
