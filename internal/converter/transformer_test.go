package converter

import (
	"testing"

	"github.com/ginjaninja78/history-converter/internal/config"
	"github.com/ginjaninja78/history-converter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformRow(t *testing.T) {
	rules := []config.TransformationRule{
		{
			Field: types.ColSymbol,
			Actions: []config.TransformationAction{
				{Type: "trim"},
				{Type: "uppercase"},
				{Type: "lookup", LookupTable: map[string]string{"BRKB": "BRK.B"}},
			},
		},
		{
			Field: types.ColDescription,
			Actions: []config.TransformationAction{
				{Type: "regex_replace", Find: `^BOUGHT\b`, Value: "YOU BOUGHT"},
				{Type: "replace", Find: "  ", Value: " "},
			},
		},
		{
			Field:   types.ColType,
			Actions: []config.TransformationAction{{Type: "lowercase"}, {Type: "prepend_string", Value: "acct:"}, {Type: "append_string", Value: "!"}},
		},
		{
			Field:   "Not A Column",
			Actions: []config.TransformationAction{{Type: "uppercase"}},
		},
	}

	tr, err := NewTransformer(rules)
	require.NoError(t, err)

	row := types.SourceRow{Line: 3, Fields: map[string]string{
		types.ColSymbol:      " brkb ",
		types.ColDescription: "BOUGHT  BERKSHIRE",
		types.ColType:        "Cash",
	}}

	got, err := tr.TransformRow(row)
	require.NoError(t, err)

	assert.Equal(t, 3, got.Line)
	assert.Equal(t, "BRK.B", got.Get(types.ColSymbol))
	assert.Equal(t, "YOU BOUGHT BERKSHIRE", got.Get(types.ColDescription))
	assert.Equal(t, "acct:cash!", got.Get(types.ColType))
	assert.NotContains(t, got.Fields, "Not A Column")

	// The input row is not modified.
	assert.Equal(t, " brkb ", row.Get(types.ColSymbol))
}

func TestTransformRowWithoutRules(t *testing.T) {
	tr, err := NewTransformer(nil)
	require.NoError(t, err)

	row := types.SourceRow{Line: 1, Fields: map[string]string{types.ColSymbol: "AAPL"}}
	got, err := tr.TransformRow(row)
	require.NoError(t, err)
	assert.Equal(t, row, got)
}

func TestNewTransformerInvalidRegex(t *testing.T) {
	_, err := NewTransformer([]config.TransformationRule{{
		Field:   types.ColSymbol,
		Actions: []config.TransformationAction{{Type: "regex_replace", Find: "(unclosed"}},
	}})
	assert.Error(t, err)
}

func TestTransformRowUnknownType(t *testing.T) {
	tr, err := NewTransformer([]config.TransformationRule{{
		Field:   types.ColSymbol,
		Actions: []config.TransformationAction{{Type: "reverse"}},
	}})
	require.NoError(t, err)

	_, err = tr.TransformRow(types.SourceRow{Fields: map[string]string{types.ColSymbol: "AAPL"}})
	assert.Error(t, err)
}
