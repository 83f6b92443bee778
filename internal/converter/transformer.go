// =============================================================================
// History Converter - Field Transformer
// =============================================================================
//
// This module applies the configured field-level transformation rules to a
// source row before it is normalized. Typical uses:
//   - renaming a ticker the journal knows differently ("BRKB" -> "BRK.B")
//   - cleaning descriptions from a modified export
//
// SUPPORTED TRANSFORMATIONS:
//   trim, uppercase, lowercase, prepend_string, append_string, replace,
//   regex_replace, lookup
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/history-converter/internal/config"
	"github.com/ginjaninja78/history-converter/internal/types"
)

// Transformer applies transformation rules to source rows.
type Transformer struct {
	rules []config.TransformationRule

	// patterns caches compiled regex_replace patterns by source text.
	patterns map[string]*regexp.Regexp
}

// NewTransformer compiles the rules. It fails on an invalid regex pattern.
func NewTransformer(rules []config.TransformationRule) (*Transformer, error) {
	t := &Transformer{
		rules:    rules,
		patterns: make(map[string]*regexp.Regexp),
	}

	for _, rule := range rules {
		for _, action := range rule.Actions {
			if action.Type != "regex_replace" || action.Find == "" {
				continue
			}
			re, err := regexp.Compile(action.Find)
			if err != nil {
				return nil, fmt.Errorf("invalid regex pattern for field %s: %w", rule.Field, err)
			}
			t.patterns[action.Find] = re
		}
	}

	return t, nil
}

// TransformRow returns a copy of row with every rule applied.
// The input row is left untouched.
func (t *Transformer) TransformRow(row types.SourceRow) (types.SourceRow, error) {
	if len(t.rules) == 0 {
		return row, nil
	}

	fields := make(map[string]string, len(row.Fields))
	for k, v := range row.Fields {
		fields[k] = v
	}

	for _, rule := range t.rules {
		value, exists := fields[rule.Field]
		if !exists {
			continue
		}

		// Apply each action in sequence.
		for _, action := range rule.Actions {
			var err error
			value, err = t.apply(value, action)
			if err != nil {
				return row, fmt.Errorf("failed to apply %s to field %s: %w", action.Type, rule.Field, err)
			}
		}

		fields[rule.Field] = value
	}

	return types.SourceRow{Line: row.Line, Fields: fields}, nil
}

// apply applies a single transformation action to a value.
func (t *Transformer) apply(value string, action config.TransformationAction) (string, error) {
	switch action.Type {
	case "trim":
		return strings.TrimSpace(value), nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "prepend_string":
		return action.Value + value, nil

	case "append_string":
		return value + action.Value, nil

	case "replace":
		// Example: "BRK B" with find " " and value "." becomes "BRK.B"
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case "regex_replace":
		if action.Find == "" {
			return value, nil
		}
		re, ok := t.patterns[action.Find]
		if !ok {
			return "", fmt.Errorf("pattern %q was not compiled", action.Find)
		}
		return re.ReplaceAllString(value, action.Value), nil

	case "lookup":
		// Values missing from the table pass through unchanged.
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return value, nil

	default:
		return value, fmt.Errorf("unknown transformation type: %s", action.Type)
	}
}
