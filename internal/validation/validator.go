// =============================================================================
// History Converter - Validation Engine
// =============================================================================
//
// This module checks every normalized transaction against the invariants of
// the journal import before it is written:
//   - non-empty symbol
//   - action from the closed set, and tradable
//   - non-zero quantity and a non-negative price
//   - a trade date
//   - option transactions carry expiration, strike and right
//
// Errors are collected, not returned on the first failure, so a rejected
// row reports everything wrong with it.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/history-converter/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single failed check.
type ValidationError struct {
	// Line is the source line of the transaction.
	Line int

	// Field is the name of the field that failed validation.
	Field string

	// Value is the offending value, formatted for display.
	Value string

	// Message is a human-readable error message.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("line %d, field '%s': %s (value: '%s')", e.Line, e.Field, e.Message, e.Value)
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validate returns every invariant the transaction violates.
// An empty result means the transaction can be written.
func Validate(tx types.NormalizedTransaction) []*ValidationError {
	var errs []*ValidationError
	add := func(field, value, msg string) {
		errs = append(errs, &ValidationError{Line: tx.Line, Field: field, Value: value, Message: msg})
	}

	if strings.TrimSpace(tx.Symbol) == "" {
		add("Symbol", tx.Symbol, "symbol is required")
	}

	switch {
	case !tx.Action.Valid():
		add("Action", string(tx.Action), "unknown action")
	case !tx.Action.Tradable():
		add("Action", string(tx.Action), "action cannot be imported")
	}

	if tx.Date.IsZero() {
		add("Date", "", "trade date is required")
	}

	if tx.Quantity.IsZero() {
		add("Quantity", tx.Quantity.String(), "quantity must not be zero")
	}

	if !tx.HasPrice {
		add("Price", "", "price is required")
	} else if tx.Price.IsNegative() {
		add("Price", tx.Price.String(), "price must not be negative")
	}

	switch tx.AssetType {
	case types.AssetShare:
	case types.AssetOption:
		if tx.Expiration.IsZero() {
			add("Expiration Date", "", "option expiration is required")
		}
		if !tx.Strike.IsPositive() {
			add("Strike Price", tx.Strike.String(), "option strike must be positive")
		}
		if tx.Right != "Call" && tx.Right != "Put" {
			add("Call or Put", tx.Right, "option right must be Call or Put")
		}
	default:
		add("Type", string(tx.AssetType), "unknown asset type")
	}

	return errs
}

// FormatErrors joins validation errors into one message.
func FormatErrors(errs []*ValidationError) string {
	messages := make([]string, len(errs))
	for i, e := range errs {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(messages, "; ")
}
