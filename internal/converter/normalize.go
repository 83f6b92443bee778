// =============================================================================
// History Converter - Row Normalizer
// =============================================================================
//
// This module turns one source row into a NormalizedTransaction, or a skip.
//
// SKIP POLICY:
//   - Rows whose action the journal cannot represent (dividends, interest,
//     transfers, fees, expirations, ...) are skipped as "non-tradable".
//     A dividend row is never emitted with a zero quantity.
//   - Tradable rows without a symbol are skipped as "missing symbol".
//   - Tradable rows with an unparseable date, quantity, price, commission or
//     fee are skipped as "unparseable".
//
// NUMBER FORMATS:
//   "1,234.50", "$1,234.50", "-10", "+10", "(12.50)" (negative), "" (absent)
//
// =============================================================================

package converter

import (
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/history-converter/internal/config"
	"github.com/ginjaninja78/history-converter/internal/types"
	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order for the Date column.
var dateLayouts = []string{
	"1/2/2006",
	"2006-01-02",
	"01-02-2006",
}

// Normalizer maps source rows to normalized transactions.
type Normalizer struct {
	prefixes []config.ActionPrefix
}

// NewNormalizer creates a Normalizer using the given description table.
// Prefixes are matched against the lower-cased description.
func NewNormalizer(prefixes []config.ActionPrefix) *Normalizer {
	lowered := make([]config.ActionPrefix, len(prefixes))
	for i, p := range prefixes {
		lowered[i] = config.ActionPrefix{
			Prefix: strings.ToLower(strings.TrimSpace(p.Prefix)),
			Action: p.Action,
		}
	}
	return &Normalizer{prefixes: lowered}
}

// Normalize converts a source row.
//
// RETURNS:
//   - The transaction, when the row is a trade the journal can import.
//   - A *SkipError otherwise.
func (n *Normalizer) Normalize(row types.SourceRow) (types.NormalizedTransaction, error) {
	tx := types.NormalizedTransaction{Line: row.Line}

	tx.Action = n.ParseAction(row.Get(types.ColDescription))
	if !tx.Action.Tradable() {
		return tx, skip(types.ReasonNonTradable, "%s: %q", tx.Action, row.Get(types.ColDescription))
	}

	sym, err := ParseSymbol(row.Get(types.ColSymbol))
	if err != nil {
		return tx, &SkipError{Reason: types.ReasonUnparseable, Err: err}
	}
	if sym.Symbol == "" {
		return tx, skip(types.ReasonMissingSymbol, "%s row without symbol", tx.Action)
	}
	tx.Symbol = sym.Symbol
	tx.AssetType = sym.AssetType
	tx.Expiration = sym.Expiration
	tx.Strike = sym.Strike
	tx.Right = sym.Right

	if tx.Date, err = ParseDate(row.Get(types.ColDate)); err != nil {
		return tx, &SkipError{Reason: types.ReasonUnparseable, Err: err}
	}

	quantity, ok, err := ParseDecimal(row.Get(types.ColQuantity))
	if err != nil {
		return tx, skip(types.ReasonUnparseable, "quantity: %v", err)
	}
	if !ok || quantity.IsZero() {
		return tx, skip(types.ReasonUnparseable, "quantity is missing or zero")
	}
	tx.Quantity = quantity

	price, ok, err := ParseDecimal(row.Get(types.ColPrice))
	if err != nil {
		return tx, skip(types.ReasonUnparseable, "price: %v", err)
	}
	if !ok {
		return tx, skip(types.ReasonUnparseable, "price is missing")
	}
	tx.Price, tx.HasPrice = price, true

	commission, _, err := ParseDecimal(row.Get(types.ColCommission))
	if err != nil {
		return tx, skip(types.ReasonUnparseable, "commission: %v", err)
	}
	fees, _, err := ParseDecimal(row.Get(types.ColFees))
	if err != nil {
		return tx, skip(types.ReasonUnparseable, "fees: %v", err)
	}
	tx.Commission = commission.Add(fees)

	if tx.Amount, tx.HasAmount, err = ParseDecimal(row.Get(types.ColAmount)); err != nil {
		return tx, skip(types.ReasonUnparseable, "amount: %v", err)
	}

	return tx, nil
}

// ParseAction maps a broker description to an action.
// A trailing " as of <date>" is ignored. Unknown descriptions map to
// types.ActionOther.
func (n *Normalizer) ParseAction(description string) types.Action {
	description = strings.ToLower(strings.TrimSpace(description))
	if i := strings.Index(description, " as of "); i >= 0 {
		description = description[:i]
	}
	description = strings.Join(strings.Fields(description), " ")

	for _, p := range n.prefixes {
		if strings.HasPrefix(description, p.Prefix) {
			return types.Action(p.Action)
		}
	}
	return types.ActionOther
}

// ParseDecimal parses a broker-formatted number.
// The second result is false when the field is empty.
func ParseDecimal(s string) (decimal.Decimal, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" {
		return decimal.Zero, false, nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	s = strings.TrimPrefix(s, "+")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("invalid number %q", s)
	}
	if negative {
		d = d.Neg()
	}
	return d, true, nil
}

// ParseDate parses the trade date. Only the calendar date is kept.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is missing")
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
