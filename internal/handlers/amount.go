package handlers

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	apperrors "pitaka/internal/errors"
)

// Amount is a monetary request field. It accepts a JSON number or a numeric
// string. Parsing is deferred to Decimal so a malformed value is reported as
// INVALID_AMOUNT rather than as a binding failure.
type Amount struct {
	raw string
	set bool
}

// UnmarshalJSON records the raw value. It never fails.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = Amount{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		s = string(b)
	}
	*a = Amount{raw: s, set: true}
	return nil
}

// IsSet reports whether the field was present and not null.
func (a Amount) IsSet() bool { return a.set }

// Decimal parses the amount. field names the offending request field in the
// error details.
func (a Amount) Decimal(field string) (decimal.Decimal, error) {
	if !a.set {
		return decimal.Zero, apperrors.WithDetails(
			apperrors.WithMessage(apperrors.ErrInvalidAmount, field+" is required"),
			map[string]any{"field": field},
		)
	}
	d, err := decimal.NewFromString(a.raw)
	if err != nil {
		return decimal.Zero, apperrors.WithDetails(
			apperrors.WithMessage(apperrors.ErrInvalidAmount, field+" must be numeric"),
			map[string]any{"field": field, "value": a.raw},
		)
	}
	return d, nil
}

// OptionalDecimal parses the amount when present and returns nil otherwise.
func (a Amount) OptionalDecimal(field string) (*decimal.Decimal, error) {
	if !a.set {
		return nil, nil
	}
	d, err := a.Decimal(field)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
