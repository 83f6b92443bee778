// =============================================================================
// History Converter - CSV Writer
// =============================================================================
//
// This module serializes normalized transactions into the TraderSync import
// schema:
//
//   Date,Time,Symbol,Quantity,Price,Buy/Sell,Commission,Type,
//   Expiration Date,Strike Price,Call or Put
//
// FORMATTING RULES:
//   - Dates use the configured layout (default MM/DD/YYYY)
//   - Time is a fixed placeholder; the report carries no execution time
//   - Quantity is unsigned; the side is carried by Buy/Sell
//   - Prices and commissions are rounded to 4 places, shown with at least 2
//   - Option columns are empty for shares
//
// Output is deterministic: the same transactions always produce the same
// bytes.
//
// =============================================================================

package csvwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/history-converter/internal/types"
	"github.com/shopspring/decimal"
)

// Header is the TraderSync import header, in column order.
var Header = []string{
	"Date",
	"Time",
	"Symbol",
	"Quantity",
	"Price",
	"Buy/Sell",
	"Commission",
	"Type",
	"Expiration Date",
	"Strike Price",
	"Call or Put",
}

// Options controls value formatting.
type Options struct {
	// DateLayout is a Go time layout, e.g. "01/02/2006".
	DateLayout string

	// TimePlaceholder fills the Time column.
	TimePlaceholder string
}

// DefaultOptions returns the formatting TraderSync expects.
func DefaultOptions() Options {
	return Options{
		DateLayout:      "01/02/2006",
		TimePlaceholder: "12:00:00",
	}
}

// Write writes the header and one record per transaction, in order.
func Write(w io.Writer, transactions []types.NormalizedTransaction, opts Options) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, tx := range transactions {
		if err := cw.Write(Record(tx, opts)); err != nil {
			return fmt.Errorf("failed to write line %d: %w", tx.Line, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	return nil
}

// Records formats every transaction. Used by writers other than CSV.
func Records(transactions []types.NormalizedTransaction, opts Options) [][]string {
	records := make([][]string, len(transactions))
	for i, tx := range transactions {
		records[i] = Record(tx, opts)
	}
	return records
}

// Record formats one transaction as a row matching Header.
func Record(tx types.NormalizedTransaction, opts Options) []string {
	var expiration, strike, right string
	if tx.IsOption() {
		expiration = tx.Expiration.Format(opts.DateLayout)
		strike = FormatQuantity(tx.Strike)
		right = tx.Right
	}

	return []string{
		tx.Date.Format(opts.DateLayout),
		opts.TimePlaceholder,
		tx.Symbol,
		FormatQuantity(tx.Quantity.Abs()),
		FormatMoney(tx.Price),
		tx.Action.Side(),
		FormatMoney(tx.Commission),
		string(tx.AssetType),
		expiration,
		strike,
		right,
	}
}

// FormatMoney rounds to 4 decimal places and keeps at least 2.
// 150 -> "150.00", 7.12345 -> "7.1235", 0.125 -> "0.125"
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(4)
	// StringFixed(4) always has a dot followed by four digits.
	for strings.HasSuffix(s, "0") && len(s)-strings.IndexByte(s, '.') > 3 {
		s = s[:len(s)-1]
	}
	return s
}

// FormatQuantity returns the shortest exact form: 10 -> "10", 0.50 -> "0.5".
func FormatQuantity(d decimal.Decimal) string {
	return d.String()
}
