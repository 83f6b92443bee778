package converter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ginjaninja78/history-converter/internal/types"
	"github.com/shopspring/decimal"
)

// optionSymbol matches OCC-style option symbols as Fidelity prints them,
// e.g. "BKSY220218C7.5": underlying, YYMMDD expiration, C/P, strike.
var optionSymbol = regexp.MustCompile(`^([A-Z.]+?)(\d{6})([CP])(\d+(?:\.\d+)?)$`)

// Symbol is a decoded source symbol.
type Symbol struct {
	// Symbol is the ticker, or the underlying ticker for options.
	Symbol    string
	AssetType types.AssetType

	// Option fields, zero for shares.
	Expiration time.Time
	Strike     decimal.Decimal
	Right      string
}

// ParseSymbol decodes a source symbol. Fidelity prefixes option symbols
// with "-"; that prefix is dropped. Anything that is not an option symbol,
// including 9-character CUSIPs, is returned unchanged as a share.
func ParseSymbol(raw string) (Symbol, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimSpace(strings.TrimLeft(s, "-"))
	if s == "" {
		return Symbol{}, nil
	}

	m := optionSymbol.FindStringSubmatch(s)
	if m == nil {
		return Symbol{Symbol: s, AssetType: types.AssetShare}, nil
	}

	expiration, err := time.Parse("060102", m[2])
	if err != nil {
		return Symbol{}, fmt.Errorf("option %s: invalid expiration %q", s, m[2])
	}
	strike, err := decimal.NewFromString(m[4])
	if err != nil {
		return Symbol{}, fmt.Errorf("option %s: invalid strike %q", s, m[4])
	}

	right := "Call"
	if m[3] == "P" {
		right = "Put"
	}

	return Symbol{
		Symbol:     m[1],
		AssetType:  types.AssetOption,
		Expiration: expiration,
		Strike:     strike,
		Right:      right,
	}, nil
}
