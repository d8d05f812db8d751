package validate

import (
	"strings"

	"github.com/shopspring/decimal"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

// Amount parses a decimal string and requires it to be positive. The engine
// re-validates; this exists so malformed input fails before any storage access.
func Amount(field, value string) (decimal.Decimal, *ErrField) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, &ErrField{Field: field, Msg: "must be a decimal number"}
	}
	if !d.IsPositive() {
		return decimal.Zero, &ErrField{Field: field, Msg: "must be > 0"}
	}
	return d, nil
}
