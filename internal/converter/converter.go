// =============================================================================
// History Converter - Converter Module
// =============================================================================
//
// This module contains the conversion pipeline for a run. It turns the single
// report in the input directory into the TraderSync import file.
//
// CONVERSION PIPELINE:
//   1. Locate exactly one report in the input directory
//   2. Load the report (header located and verified)
//   3. For each source row, in order:
//      a. Apply the configured field transformations
//      b. Skip exact duplicates of an earlier row
//      c. Normalize the row, or record why it is skipped
//      d. Validate the normalized transaction
//   4. Serialize the surviving transactions, preserving source order
//   5. Write the output file (and the optional workbook and skip report)
//   6. Archive the report, when enabled
//
// SKIPPED ROWS:
//   Skips are recorded in the Result and logged as warnings; they do not fail
//   the run. In strict mode an unparseable row aborts the run instead.
//
// =============================================================================

package converter

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ginjaninja78/history-converter/internal/config"
	"github.com/ginjaninja78/history-converter/internal/csvparser"
	"github.com/ginjaninja78/history-converter/internal/csvwriter"
	"github.com/ginjaninja78/history-converter/internal/types"
	"github.com/ginjaninja78/history-converter/internal/validation"
	"github.com/ginjaninja78/history-converter/internal/xlsxwriter"
	"github.com/ginjaninja78/history-converter/pkg/utils"
	"go.uber.org/zap"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of a run.
type Result struct {
	// InputFile is the report that was converted.
	InputFile string

	// OutputFile is the path to the generated CSV file.
	OutputFile string

	// WorkbookFile is the path to the review workbook, if one was written.
	WorkbookFile string

	// SkipReportFile is the path to the skip report, if one was written.
	SkipReportFile string

	// ArchivedTo is where the report was moved, if archiving is enabled.
	ArchivedTo string

	// RowsRead is the number of data rows in the report.
	RowsRead int

	// RowsIgnored counts blank and disclaimer lines after the header.
	RowsIgnored int

	// RowsWritten is the number of transactions in the output.
	// Always RowsRead - len(Skipped).
	RowsWritten int

	// Skipped lists the rows that were not written, in source order.
	Skipped []types.SkippedRow

	// ProcessingTime is the time taken by the run.
	ProcessingTime time.Duration
}

// SkipCounts returns the number of skipped rows per reason.
func (r *Result) SkipCounts() map[string]int {
	counts := make(map[string]int)
	for _, s := range r.Skipped {
		counts[s.Reason]++
	}
	return counts
}

// SkipReasons returns the skip reasons present in the result, sorted.
func (r *Result) SkipReasons() []string {
	counts := r.SkipCounts()
	reasons := make([]string, 0, len(counts))
	for reason := range counts {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	return reasons
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the conversion pipeline.
type Converter struct {
	cfg         *config.Config
	logger      *zap.Logger
	files       *utils.FileManager
	transformer *Transformer
	normalizer  *Normalizer
}

// New creates a Converter from a loaded configuration.
func New(cfg *config.Config, logger *zap.Logger) (*Converter, error) {
	transformer, err := NewTransformer(cfg.TransformationRules)
	if err != nil {
		return nil, err
	}

	return &Converter{
		cfg:         cfg,
		logger:      logger,
		files:       utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir),
		transformer: transformer,
		normalizer:  NewNormalizer(cfg.ActionPrefixes),
	}, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline. Fatal errors wrap one of the types.Err*
// sentinels; see ExitCode.
func (c *Converter) Run() (*Result, error) {
	startTime := time.Now()
	result := &Result{}

	// =========================================================================
	// STEP 1: LOCATE AND LOAD THE REPORT
	// =========================================================================

	inputFile, err := c.files.DiscoverInputFile()
	if err != nil {
		return nil, err
	}
	result.InputFile = inputFile
	c.logger.Info("Processing report", zap.String("file", inputFile))

	report, err := csvparser.Load(inputFile)
	if err != nil {
		return nil, err
	}
	result.RowsRead = len(report.Rows)
	result.RowsIgnored = report.Ignored
	c.logger.Debug("Loaded report",
		zap.Int("header_line", report.HeaderLine),
		zap.Int("rows", len(report.Rows)),
		zap.Int("ignored", report.Ignored))

	// =========================================================================
	// STEP 2: TRANSFORM, NORMALIZE AND VALIDATE ROWS
	// =========================================================================

	transactions, err := c.convertRows(report.Rows, result)
	if err != nil {
		return nil, err
	}
	result.RowsWritten = len(transactions)

	// =========================================================================
	// STEP 3: SERIALIZE AND WRITE
	// =========================================================================

	opts := csvwriter.Options{
		DateLayout:      c.cfg.DateLayout,
		TimePlaceholder: c.cfg.TimePlaceholder,
	}

	var buf bytes.Buffer
	if err := csvwriter.Write(&buf, transactions, opts); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
	}

	if c.cfg.XLSXFile != "" {
		workbook, err := xlsxwriter.Build(csvwriter.Header, csvwriter.Records(transactions, opts))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
		}
		if result.WorkbookFile, err = c.files.WriteOutputFile(c.cfg.XLSXFile, workbook); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
		}
	}

	// The CSV goes last so that a failed run leaves no output file.
	if result.OutputFile, err = c.files.WriteOutputFile(c.cfg.OutputFile, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
	}
	c.logger.Info("Wrote output", zap.String("file", result.OutputFile), zap.Int("rows", result.RowsWritten))

	// =========================================================================
	// STEP 4: SIDE OUTPUTS
	// =========================================================================
	// Failures here are logged; the converted file is already in place.

	if c.cfg.SkipReport != "" {
		path, err := c.files.WriteSkipReport(c.cfg.SkipReport, inputFile, result.Skipped)
		if err != nil {
			c.logger.Warn("Failed to write skip report", zap.Error(err))
		} else {
			result.SkipReportFile = path
		}
	}

	if c.cfg.ArchiveInput {
		path, err := c.files.ArchiveInputFile(inputFile)
		if err != nil {
			c.logger.Warn("Failed to archive report", zap.Error(err))
		} else {
			result.ArchivedTo = path
		}
	}

	result.ProcessingTime = time.Since(startTime)
	return result, nil
}

// convertRows runs steps 3a-3d over every row and records skips in result.
func (c *Converter) convertRows(rows []types.SourceRow, result *Result) ([]types.NormalizedTransaction, error) {
	transactions := make([]types.NormalizedTransaction, 0, len(rows))
	seen := make(map[string]int)

	for _, row := range rows {
		if c.cfg.ShouldDropDuplicates() {
			key := row.Key()
			if first, dup := seen[key]; dup {
				c.recordSkip(result, row.Line, types.ReasonDuplicate, fmt.Sprintf("same as line %d", first))
				continue
			}
			seen[key] = row.Line
		}

		transformed, err := c.transformer.TransformRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", row.Line, err)
		}

		tx, err := c.normalizer.Normalize(transformed)
		if err != nil {
			var skipErr *SkipError
			if !errors.As(err, &skipErr) {
				return nil, fmt.Errorf("line %d: %w", row.Line, err)
			}
			if c.cfg.Strict && skipErr.Reason == types.ReasonUnparseable {
				return nil, fmt.Errorf("%w: line %d: %v", types.ErrInputMalformed, row.Line, skipErr)
			}
			c.recordSkip(result, row.Line, skipErr.Reason, errDetail(skipErr))
			continue
		}

		if verrs := validation.Validate(tx); len(verrs) > 0 {
			c.recordSkip(result, row.Line, types.ReasonInvalid, validation.FormatErrors(verrs))
			continue
		}

		transactions = append(transactions, tx)
	}

	return transactions, nil
}

// recordSkip adds a skipped row to the result. Non-tradable rows are expected
// in every report and log at debug; everything else is a warning.
func (c *Converter) recordSkip(result *Result, line int, reason, detail string) {
	result.Skipped = append(result.Skipped, types.SkippedRow{Line: line, Reason: reason, Detail: detail})

	fields := []zap.Field{zap.Int("line", line), zap.String("reason", reason), zap.String("detail", detail)}
	if reason == types.ReasonNonTradable {
		c.logger.Debug("Skipped row", fields...)
		return
	}
	c.logger.Warn("Skipped row", fields...)
}

func errDetail(e *SkipError) string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
