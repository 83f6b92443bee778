// =============================================================================
// History Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Invoked without
// arguments, it converts the single report in the input directory.
//
// COBRA CLI STRUCTURE:
//   rootCmd (history-converter)     - run the conversion
//   └── versionCmd (history-converter version)
//
// CONFIGURATION:
//   There are no flags. Settings come from config.yaml (or the file named by
//   HISTORY_CONVERTER_CONFIG), a .env file, and HISTORY_CONVERTER_*
//   environment variables.
//
// EXIT CODES:
//   0 success, 1 other failure, 2 input not found, 3 ambiguous input,
//   4 input malformed, 5 output write failed
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/history-converter/internal/config"
	"github.com/ginjaninja78/history-converter/internal/converter"
	"github.com/ginjaninja78/history-converter/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "history-converter",
	Short: "Convert a Fidelity history report into a TraderSync import file",
	Long: `History Converter reads the Fidelity "Accounts History" CSV export placed in
the input directory and writes a CSV file TraderSync can import.

Exactly one .csv report must be present in the input directory. Rows that
TraderSync cannot represent (dividends, interest, transfers, ...) are skipped
and counted in the summary.

Settings are read from config.yaml, a .env file and HISTORY_CONVERTER_*
environment variables, e.g.:
  HISTORY_CONVERTER_INPUT_DIR=./raw_reports
  HISTORY_CONVERTER_OUTPUT_DIR=./processed_output`,

	Args: cobra.NoArgs,

	// Errors are printed once by Execute, with the matching exit code.
	SilenceErrors: true,
	SilenceUsage:  true,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd.OutOrStdout())
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command and exits with the code matching the error.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(converter.ExitCode(err))
	}
}

// =============================================================================
// CONVERSION
// =============================================================================

// runConvert loads the configuration, runs the converter and prints a summary.
func runConvert(out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	conv, err := converter.New(cfg, log)
	if err != nil {
		return err
	}

	result, err := conv.Run()
	if err != nil {
		log.Error("Conversion failed", zap.Error(err))
		return err
	}

	printSummary(out, result)
	return nil
}

// printSummary writes the end-of-run report.
func printSummary(out io.Writer, result *converter.Result) {
	fmt.Fprintln(out, "=== Conversion Complete ===")
	fmt.Fprintf(out, "Input:           %s\n", filepath.Base(result.InputFile))
	fmt.Fprintf(out, "Output:          %s\n", result.OutputFile)
	if result.WorkbookFile != "" {
		fmt.Fprintf(out, "Workbook:        %s\n", result.WorkbookFile)
	}
	fmt.Fprintf(out, "Rows read:       %d\n", result.RowsRead)
	fmt.Fprintf(out, "Rows written:    %d\n", result.RowsWritten)
	fmt.Fprintf(out, "Rows skipped:    %d\n", len(result.Skipped))

	counts := result.SkipCounts()
	for _, reason := range result.SkipReasons() {
		fmt.Fprintf(out, "  %-15s %d\n", reason+":", counts[reason])
	}

	if result.SkipReportFile != "" {
		fmt.Fprintf(out, "Skip report:     %s\n", result.SkipReportFile)
	}
	if result.ArchivedTo != "" {
		fmt.Fprintf(out, "Archived to:     %s\n", result.ArchivedTo)
	}
	fmt.Fprintf(out, "Time elapsed:    %s\n", result.ProcessingTime)
}
