package csvwriter

import (
	"bytes"
	"testing"
	"time"

	"github.com/ginjaninja78/history-converter/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	transactions := []types.NormalizedTransaction{
		{
			Line:      5,
			Date:      time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
			Symbol:    "AAPL",
			Action:    types.ActionBuy,
			Quantity:  decimal.NewFromInt(10),
			Price:     decimal.NewFromInt(150),
			HasPrice:  true,
			AssetType: types.AssetShare,
		},
		{
			Line:       6,
			Date:       time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC),
			Symbol:     "BKSY",
			Action:     types.ActionSell,
			Quantity:   decimal.NewFromInt(-2),
			Price:      decimal.RequireFromString("0.35"),
			HasPrice:   true,
			Commission: decimal.RequireFromString("1.34"),
			AssetType:  types.AssetOption,
			Expiration: time.Date(2022, 2, 18, 0, 0, 0, 0, time.UTC),
			Strike:     decimal.RequireFromString("7.50"),
			Right:      "Put",
		},
		{
			Line:      7,
			Date:      time.Date(2023, 3, 9, 0, 0, 0, 0, time.UTC),
			Symbol:    "BRK.B",
			Action:    types.ActionCover,
			Quantity:  decimal.RequireFromString("0.5"),
			Price:     decimal.RequireFromString("310.123456"),
			HasPrice:  true,
			AssetType: types.AssetShare,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, transactions, DefaultOptions()))

	assert.Equal(t,
		"Date,Time,Symbol,Quantity,Price,Buy/Sell,Commission,Type,Expiration Date,Strike Price,Call or Put\n"+
			"01/05/2023,12:00:00,AAPL,10,150.00,Buy,0.00,SHARE,,,\n"+
			"02/01/2022,12:00:00,BKSY,2,0.35,Sell,1.34,OPTION,02/18/2022,7.5,Put\n"+
			"03/09/2023,12:00:00,BRK.B,0.5,310.1235,Buy,0.00,SHARE,,,\n",
		buf.String())
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, DefaultOptions()))
	assert.Equal(t, "Date,Time,Symbol,Quantity,Price,Buy/Sell,Commission,Type,Expiration Date,Strike Price,Call or Put\n", buf.String())
}

func TestRecordCustomOptions(t *testing.T) {
	tx := types.NormalizedTransaction{
		Date:      time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
		Symbol:    "AAPL",
		Action:    types.ActionShort,
		Quantity:  decimal.NewFromInt(-3),
		Price:     decimal.NewFromInt(1),
		HasPrice:  true,
		AssetType: types.AssetShare,
	}

	record := Record(tx, Options{DateLayout: "2006-01-02", TimePlaceholder: "09:30:00"})
	assert.Equal(t, []string{"2023-01-05", "09:30:00", "AAPL", "3", "1.00", "Sell", "0.00", "SHARE", "", "", ""}, record)
}

func TestFormatMoney(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"150", "150.00"},
		{"0", "0.00"},
		{"0.1", "0.10"},
		{"0.125", "0.125"},
		{"7.12345", "7.1235"},
		{"7.12344", "7.1234"},
		{"-1.5", "-1.50"},
		{"1234.5000", "1234.50"},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatMoney(decimal.RequireFromString(tc.in)))
		})
	}
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "10", FormatQuantity(decimal.NewFromInt(10)))
	assert.Equal(t, "0.5", FormatQuantity(decimal.RequireFromString("0.50")))
	assert.Equal(t, "1000", FormatQuantity(decimal.RequireFromString("1000.000")))
}
