package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/history-converter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "in"),
		filepath.Join(root, "out"),
		filepath.Join(root, "archive"),
	)
	require.NoError(t, os.MkdirAll(fm.InputDir, 0755))
	return fm
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	fm := newTestManager(t)
	touch(t, filepath.Join(fm.InputDir, "b.csv"))
	touch(t, filepath.Join(fm.InputDir, "A.CSV"))
	touch(t, filepath.Join(fm.InputDir, ".~lock.b.csv"))
	touch(t, filepath.Join(fm.InputDir, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(fm.InputDir, "dir.csv"), 0755))

	files, err := fm.DiscoverInputFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(fm.InputDir, "A.CSV"),
		filepath.Join(fm.InputDir, "b.csv"),
	}, files)
}

func TestDiscoverInputFile(t *testing.T) {
	t.Run("single report", func(t *testing.T) {
		fm := newTestManager(t)
		touch(t, filepath.Join(fm.InputDir, "history.csv"))

		file, err := fm.DiscoverInputFile()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(fm.InputDir, "history.csv"), file)
	})

	t.Run("no report", func(t *testing.T) {
		fm := newTestManager(t)
		_, err := fm.DiscoverInputFile()
		assert.ErrorIs(t, err, types.ErrInputNotFound)
	})

	t.Run("missing directory", func(t *testing.T) {
		fm := NewFileManager(filepath.Join(t.TempDir(), "nope"), "", "")
		_, err := fm.DiscoverInputFile()
		assert.ErrorIs(t, err, types.ErrInputNotFound)
	})

	t.Run("two reports", func(t *testing.T) {
		fm := newTestManager(t)
		touch(t, filepath.Join(fm.InputDir, "a.csv"))
		touch(t, filepath.Join(fm.InputDir, "b.csv"))

		_, err := fm.DiscoverInputFile()
		assert.ErrorIs(t, err, types.ErrAmbiguousInput)
		assert.Contains(t, err.Error(), "a.csv, b.csv")
	})
}

func TestWriteOutputFile(t *testing.T) {
	fm := newTestManager(t)

	path, err := fm.WriteOutputFile("output.csv", []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.OutputDir, "output.csv"), path)

	// Overwrites in place and leaves no temporary files behind.
	_, err = fm.WriteOutputFile("output.csv", []byte("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(fm.OutputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "output.csv", entries[0].Name())
}

func TestWriteFileAtomicFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "output.csv")

	// Renaming a file over a directory fails.
	require.NoError(t, os.Mkdir(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), nil, 0644))

	err := WriteFileAtomic(target, []byte("data"), 0644)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "output.csv", entries[0].Name())
}

func TestArchiveInputFile(t *testing.T) {
	fm := newTestManager(t)
	report := filepath.Join(fm.InputDir, "history.csv")
	touch(t, report)

	archived, err := fm.ArchiveInputFile(report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "history.csv"), archived)
	assert.False(t, FileExists(report))
	assert.True(t, FileExists(archived))

	// A second report with the same name is not overwritten.
	touch(t, report)
	_, err = fm.ArchiveInputFile(report)
	require.Error(t, err)
	assert.True(t, FileExists(report))
}

func TestWriteSkipReport(t *testing.T) {
	fm := newTestManager(t)
	skipped := []types.SkippedRow{
		{Line: 6, Reason: types.ReasonNonTradable, Detail: `dividend: "DIVIDEND RECEIVED"`},
		{Line: 11, Reason: types.ReasonUnparseable, Detail: "quantity: invalid number \"abc\""},
	}

	path, err := fm.WriteSkipReport("skipped.txt", "/data/in/history.csv", skipped)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)

	assert.Contains(t, report, "Source:        history.csv\n")
	assert.Contains(t, report, "Total Skipped: 2\n")
	assert.Contains(t, report, "Line 6      non-tradable     dividend: \"DIVIDEND RECEIVED\"\n")
	assert.Contains(t, report, "Line 11     unparseable      quantity: invalid number \"abc\"\n")

	// No timestamps: the same input writes the same bytes.
	again, err := fm.WriteSkipReport("skipped.txt", "/data/in/history.csv", skipped)
	require.NoError(t, err)
	data2, err := os.ReadFile(again)
	require.NoError(t, err)
	assert.Equal(t, data, data2)
}
