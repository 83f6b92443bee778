// =============================================================================
// History Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser
//   - converter
//   - validation
//   - csvwriter / xlsxwriter
//
// =============================================================================

package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SOURCE TYPES
// =============================================================================

// Source column names of the Fidelity history report, in file order.
const (
	ColDate        = "Date"
	ColDescription = "Description"
	ColSymbol      = "Symbol"
	ColQuantity    = "Quantity"
	ColPrice       = "Price"
	ColAmount      = "Amount"
	ColCommission  = "Commission"
	ColFees        = "Fees"
	ColType        = "Type"
)

// SourceColumns is the column set every history report must carry.
var SourceColumns = []string{
	ColDate,
	ColDescription,
	ColSymbol,
	ColQuantity,
	ColPrice,
	ColAmount,
	ColCommission,
	ColFees,
	ColType,
}

// SourceRow is one data line of the broker-exported history file.
type SourceRow struct {
	// Line is the 1-based line number in the input file.
	// Used for warnings and the skip report.
	Line int

	// Fields maps the canonical column name to its trimmed raw value.
	Fields map[string]string
}

// Get returns the value of a column, or "" if the column is absent.
func (r SourceRow) Get(column string) string {
	return r.Fields[column]
}

// Key returns a string identifying the row content, ignoring the line number.
// Two rows with the same key are duplicates.
func (r SourceRow) Key() string {
	values := make([]string, len(SourceColumns))
	for i, column := range SourceColumns {
		values[i] = r.Fields[column]
	}
	return strings.Join(values, "\x1f")
}

// =============================================================================
// NORMALIZED TYPES
// =============================================================================

// Action is the closed set of transaction kinds understood by the converter.
type Action string

const (
	ActionBuy      Action = "buy"
	ActionSell     Action = "sell"
	ActionShort    Action = "short"
	ActionCover    Action = "cover"
	ActionDividend Action = "dividend"
	ActionOther    Action = "other"
)

// Valid reports whether the action belongs to the closed set.
func (a Action) Valid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionShort, ActionCover, ActionDividend, ActionOther:
		return true
	}
	return false
}

// Tradable reports whether the destination journal can represent the action.
func (a Action) Tradable() bool {
	switch a {
	case ActionBuy, ActionSell, ActionShort, ActionCover:
		return true
	}
	return false
}

// Side returns the journal side ("Buy" or "Sell") of a tradable action.
// Opening a short is a sale, covering it is a purchase.
func (a Action) Side() string {
	switch a {
	case ActionBuy, ActionCover:
		return "Buy"
	case ActionSell, ActionShort:
		return "Sell"
	}
	return ""
}

// AssetType tells shares and options apart.
type AssetType string

const (
	AssetShare  AssetType = "SHARE"
	AssetOption AssetType = "OPTION"
)

// NormalizedTransaction is the record produced after parsing a SourceRow.
// It is created during the single parse pass and discarded after serialization.
type NormalizedTransaction struct {
	// Line is the source line the transaction came from.
	Line int

	// Date is the trade date. The source carries no execution time.
	Date time.Time

	// Symbol is the traded ticker, or the underlying for options.
	Symbol string

	Action Action

	// Quantity is signed as found in the source (sales are usually negative).
	Quantity decimal.Decimal

	// Price is the per-unit price. HasPrice is false when the source left it empty.
	Price    decimal.Decimal
	HasPrice bool

	// Commission is the sum of the source commission and fees.
	Commission decimal.Decimal

	// Amount is the net cash amount reported by the broker, if any.
	Amount    decimal.Decimal
	HasAmount bool

	AssetType AssetType

	// Option contract details, set only when AssetType is AssetOption.
	Expiration time.Time
	Strike     decimal.Decimal
	Right      string
}

// IsOption reports whether the transaction is on an option contract.
func (t NormalizedTransaction) IsOption() bool {
	return t.AssetType == AssetOption
}

// =============================================================================
// SKIP RECORDS
// =============================================================================

// Skip reasons. A row skipped for any of these is counted, never emitted.
const (
	ReasonNonTradable   = "non-tradable"
	ReasonUnparseable   = "unparseable"
	ReasonMissingSymbol = "missing symbol"
	ReasonDuplicate     = "duplicate"
	ReasonInvalid       = "invalid"
)

// SkippedRow records a source row that was not emitted.
// It is accumulated during a run and reported in the summary.
type SkippedRow struct {
	Line   int
	Reason string
	Detail string
}
