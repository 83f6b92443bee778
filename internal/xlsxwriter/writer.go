// =============================================================================
// History Converter - XLSX Writer
// =============================================================================
//
// This module builds an optional review workbook holding the same header
// and rows as the converted CSV, on a single sheet named "TraderSync".
// Cells are written as text so values read exactly as they will be imported.
//
// =============================================================================

package xlsxwriter

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the only sheet in the workbook.
const SheetName = "TraderSync"

// Build creates the workbook and returns its encoded bytes.
func Build(header []string, records [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// A new file starts with "Sheet1".
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := setRow(f, 1, header); err != nil {
		return nil, err
	}
	for i, record := range records {
		if err := setRow(f, i+2, record); err != nil {
			return nil, err
		}
	}

	// Keep the header visible while scrolling.
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// setRow writes values as text cells starting at column A of the given row.
func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}

	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}

	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
