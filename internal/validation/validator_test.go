package validation

import (
	"testing"
	"time"

	"github.com/ginjaninja78/history-converter/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validShare() types.NormalizedTransaction {
	return types.NormalizedTransaction{
		Line:      5,
		Date:      time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
		Symbol:    "AAPL",
		Action:    types.ActionBuy,
		Quantity:  decimal.NewFromInt(10),
		Price:     decimal.NewFromInt(150),
		HasPrice:  true,
		AssetType: types.AssetShare,
	}
}

func validOption() types.NormalizedTransaction {
	tx := validShare()
	tx.Symbol = "BKSY"
	tx.AssetType = types.AssetOption
	tx.Expiration = time.Date(2022, 2, 18, 0, 0, 0, 0, time.UTC)
	tx.Strike = decimal.RequireFromString("7.5")
	tx.Right = "Call"
	return tx
}

func TestValidateAccepts(t *testing.T) {
	assert.Empty(t, Validate(validShare()))
	assert.Empty(t, Validate(validOption()))

	short := validShare()
	short.Action = types.ActionShort
	short.Quantity = decimal.NewFromInt(-5)
	short.Price = decimal.Zero
	assert.Empty(t, Validate(short), "negative quantity and zero price are allowed")
}

func TestValidateRejects(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(tx *types.NormalizedTransaction)
		field  string
	}{
		{"empty symbol", func(tx *types.NormalizedTransaction) { tx.Symbol = " " }, "Symbol"},
		{"unknown action", func(tx *types.NormalizedTransaction) { tx.Action = "split" }, "Action"},
		{"dividend", func(tx *types.NormalizedTransaction) { tx.Action = types.ActionDividend }, "Action"},
		{"no date", func(tx *types.NormalizedTransaction) { tx.Date = time.Time{} }, "Date"},
		{"zero quantity", func(tx *types.NormalizedTransaction) { tx.Quantity = decimal.Zero }, "Quantity"},
		{"no price", func(tx *types.NormalizedTransaction) { tx.HasPrice = false }, "Price"},
		{"negative price", func(tx *types.NormalizedTransaction) { tx.Price = decimal.NewFromInt(-1) }, "Price"},
		{"unknown asset type", func(tx *types.NormalizedTransaction) { tx.AssetType = "BOND" }, "Type"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validShare()
			tc.mutate(&tx)

			errs := Validate(tx)
			require.Len(t, errs, 1)
			assert.Equal(t, tc.field, errs[0].Field)
			assert.Equal(t, 5, errs[0].Line)
		})
	}
}

func TestValidateOptionCollectsAllErrors(t *testing.T) {
	tx := validOption()
	tx.Expiration = time.Time{}
	tx.Strike = decimal.Zero
	tx.Right = "Straddle"

	errs := Validate(tx)
	require.Len(t, errs, 3)
	assert.Equal(t,
		"Expiration Date: option expiration is required; "+
			"Strike Price: option strike must be positive; "+
			"Call or Put: option right must be Call or Put",
		FormatErrors(errs))
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Line: 12, Field: "Price", Value: "-1", Message: "price must not be negative"}
	assert.Equal(t, "line 12, field 'Price': price must not be negative (value: '-1')", err.Error())
}
