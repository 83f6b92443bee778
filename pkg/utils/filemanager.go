// =============================================================================
// History Converter - File Manager Utility
// =============================================================================
//
// This module provides the file handling around a conversion run:
//   - Locating the single input report
//   - Writing output files atomically
//   - Archiving the report after a successful run
//   - Writing the skipped-rows report
//
// ATOMIC WRITES:
//   Output is written to a uniquely named temporary file in the destination
//   directory and renamed over the target. A failed run never leaves a
//   partial or stale-looking output file behind.
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ginjaninja78/history-converter/internal/types"
	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the converter.
type FileManager struct {
	// InputDir is the directory where the report is placed.
	InputDir string

	// OutputDir is the directory where output files are placed.
	OutputDir string

	// InputArchiveDir is the directory for archived reports.
	InputArchiveDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
	}
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the candidate reports in the input directory:
// regular, non-hidden files with a .csv extension (any case), sorted by name.
// A missing input directory yields no candidates.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.EqualFold(filepath.Ext(name), ".csv") {
			files = append(files, filepath.Join(fm.InputDir, name))
		}
	}

	sort.Strings(files)
	return files, nil
}

// DiscoverInputFile returns the single report in the input directory.
//
// RETURNS:
//   - types.ErrInputNotFound if there is none.
//   - types.ErrAmbiguousInput if there is more than one.
func (fm *FileManager) DiscoverInputFile() (string, error) {
	files, err := fm.DiscoverInputFiles()
	if err != nil {
		return "", err
	}

	switch len(files) {
	case 0:
		return "", fmt.Errorf("%w: no .csv report in %s", types.ErrInputNotFound, fm.InputDir)
	case 1:
		return files[0], nil
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	return "", fmt.Errorf("%w: %d reports in %s (%s), expected exactly one",
		types.ErrAmbiguousInput, len(files), fm.InputDir, strings.Join(names, ", "))
}

// =============================================================================
// OUTPUT
// =============================================================================

// OutputPath returns the path of a file name inside the output directory.
func (fm *FileManager) OutputPath(name string) string {
	return filepath.Join(fm.OutputDir, name)
}

// WriteOutputFile atomically writes data to name inside the output
// directory, creating the directory if needed.
func (fm *FileManager) WriteOutputFile(name string, data []byte) (string, error) {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", fm.OutputDir, err)
	}

	path := fm.OutputPath(name)
	if err := WriteFileAtomic(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFileAtomic writes data to a temporary file next to path, then renames
// it over path. The temporary file is removed on every error path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))

	file, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = file.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = file.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	return nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a processed report to the archive directory.
// If rename fails (e.g. across devices) it falls back to copy and delete.
//
// RETURNS:
//   - The path to the archived file.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if err := os.MkdirAll(fm.InputArchiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := filepath.Join(fm.InputArchiveDir, filepath.Base(filePath))
	if FileExists(archivePath) {
		return "", fmt.Errorf("archive already holds %s", filepath.Base(filePath))
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// =============================================================================
// SKIP REPORT
// =============================================================================

// WriteSkipReport writes the skipped rows of a run to name inside the output
// directory. The report has no timestamps, so reruns produce the same file.
func (fm *FileManager) WriteSkipReport(name, sourceFile string, skipped []types.SkippedRow) (string, error) {
	var sb strings.Builder
	w := bufio.NewWriter(&sb)

	fmt.Fprintf(w, "History Converter - Skipped Rows\n"+
		"Source:        %s\n"+
		"Total Skipped: %d\n"+
		"================================================================================\n\n",
		filepath.Base(sourceFile), len(skipped))

	for _, s := range skipped {
		fmt.Fprintf(w, "Line %-6d %-16s %s\n", s.Line, s.Reason, s.Detail)
	}

	fmt.Fprint(w, "\n================================================================================\n"+
		"End of Report\n")

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to build skip report: %w", err)
	}

	return fm.WriteOutputFile(name, []byte(sb.String()))
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
