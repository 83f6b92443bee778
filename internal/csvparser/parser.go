// =============================================================================
// History Converter - CSV Parser Module
// =============================================================================
//
// This module loads a Fidelity history report into ordered source rows.
//
// FILE LAYOUT:
//   Fidelity prefixes the table with a few account lines and appends a block
//   of disclaimer text after it:
//
//     Brokerage
//     ...
//     Run Date,Action,Symbol,...      <- header row, located by content
//     01/05/2023,YOU BOUGHT ...       <- data rows
//     ...
//     "The data and information in this spreadsheet..."  <- ignored
//
// HEADER MATCHING:
//   Header cells are matched case-insensitively, with unit suffixes such as
//   " ($)" removed and known aliases ("Run Date", "Action", "Security Type")
//   mapped to the canonical column names in types.SourceColumns.
//
// =============================================================================

package csvparser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/ginjaninja78/history-converter/internal/types"
)

// =============================================================================
// REPORT DATA STRUCTURE
// =============================================================================

// Report represents a loaded history report.
type Report struct {
	// SourceFile is the path the report was loaded from.
	SourceFile string

	// HeaderLine is the 1-based line number of the header row.
	HeaderLine int

	// Headers contains the canonical column names, in file order.
	// Columns that are not part of the source schema keep their raw name.
	Headers []string

	// Rows contains the data rows in file order.
	Rows []types.SourceRow

	// Ignored counts lines after the header that are not data rows:
	// blank lines and single-cell disclaimer text.
	Ignored int
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Load reads a history report from disk.
//
// RETURNS:
//   - types.ErrInputNotFound if the file does not exist.
//   - types.ErrInputMalformed if the file is empty, has no recognizable
//     header, lacks an expected column, or has no data rows.
func Load(filePath string) (*Report, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrInputNotFound, filePath)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	report, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	report.SourceFile = filePath

	return report, nil
}

// Parse reads a history report from r.
func Parse(r io.Reader) (*Report, error) {
	reader := csv.NewReader(r)
	configureReader(reader)

	report := &Report{}
	var headerIndex map[string]int
	lines := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInputMalformed, err)
		}
		lines++
		line, _ := reader.FieldPos(0)

		if lines == 1 && len(row) > 0 {
			row[0] = strings.TrimPrefix(row[0], "\ufeff")
		}

		// Everything before the header is account preamble.
		if headerIndex == nil {
			if !looksLikeHeader(row) {
				continue
			}
			headers, index, err := extractHeaders(row)
			if err != nil {
				return nil, err
			}
			report.Headers = headers
			report.HeaderLine = line
			headerIndex = index
			continue
		}

		if countNonEmpty(row) <= 1 {
			report.Ignored++
			continue
		}

		report.Rows = append(report.Rows, toSourceRow(row, line, headerIndex))
	}

	if lines == 0 {
		return nil, fmt.Errorf("%w: file is empty", types.ErrInputMalformed)
	}
	if headerIndex == nil {
		return nil, fmt.Errorf("%w: no header row with %s and %s columns",
			types.ErrInputMalformed, types.ColDate, types.ColSymbol)
	}
	if len(report.Rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows after header", types.ErrInputMalformed)
	}

	return report, nil
}

// configureReader sets the csv.Reader options needed for broker exports.
func configureReader(reader *csv.Reader) {
	// Preamble and disclaimer lines have fewer columns than the table.
	reader.FieldsPerRecord = -1

	// Disclaimer text sometimes contains stray quotes.
	reader.LazyQuotes = true

	reader.TrimLeadingSpace = true
}

// =============================================================================
// HEADER HANDLING
// =============================================================================

// headerAliases maps normalized header text to canonical column names.
var headerAliases = map[string]string{
	"date":          types.ColDate,
	"run date":      types.ColDate,
	"trade date":    types.ColDate,
	"description":   types.ColDescription,
	"action":        types.ColDescription,
	"symbol":        types.ColSymbol,
	"quantity":      types.ColQuantity,
	"price":         types.ColPrice,
	"amount":        types.ColAmount,
	"commission":    types.ColCommission,
	"fees":          types.ColFees,
	"type":          types.ColType,
	"security type": types.ColType,
}

var unitSuffix = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// CanonicalHeader maps a raw header cell to its canonical column name.
// The second result is false when the cell is not a source schema column.
func CanonicalHeader(cell string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(cell))
	normalized = unitSuffix.ReplaceAllString(normalized, "")
	normalized = strings.Join(strings.Fields(normalized), " ")
	name, ok := headerAliases[normalized]
	return name, ok
}

// looksLikeHeader reports whether a row names both the date and symbol columns.
func looksLikeHeader(row []string) bool {
	var date, symbol bool
	for _, cell := range row {
		switch name, _ := CanonicalHeader(cell); name {
		case types.ColDate:
			date = true
		case types.ColSymbol:
			symbol = true
		}
	}
	return date && symbol
}

// extractHeaders canonicalizes the header row and checks the column set.
//
// RETURNS:
//   - The canonical headers in file order.
//   - A map from canonical column name to its index in the row.
//   - types.ErrInputMalformed naming the missing columns, if any.
func extractHeaders(row []string) ([]string, map[string]int, error) {
	headers := make([]string, len(row))
	index := make(map[string]int, len(types.SourceColumns))

	for i, cell := range row {
		name, ok := CanonicalHeader(cell)
		if !ok {
			headers[i] = strings.TrimSpace(cell)
			continue
		}
		headers[i] = name
		// The first occurrence of a column wins.
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	var missing []string
	for _, column := range types.SourceColumns {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: header is missing column(s) %s",
			types.ErrInputMalformed, strings.Join(missing, ", "))
	}

	return headers, index, nil
}

// =============================================================================
// ROW HANDLING
// =============================================================================

// toSourceRow picks the schema columns out of a raw row.
func toSourceRow(row []string, line int, index map[string]int) types.SourceRow {
	fields := make(map[string]string, len(index))
	for name, i := range index {
		if i < len(row) {
			fields[name] = strings.TrimSpace(row[i])
		} else {
			fields[name] = ""
		}
	}
	return types.SourceRow{Line: line, Fields: fields}
}

// countNonEmpty returns the number of cells holding something besides spaces.
func countNonEmpty(row []string) int {
	n := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			n++
		}
	}
	return n
}
