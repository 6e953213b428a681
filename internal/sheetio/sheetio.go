package sheetio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/username/timesheet-payroll/internal/timesheet"
)

// Export writes sheet in the given format
func Export(w io.Writer, f Format, sheet Sheet) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, sheet.Table, sheet.Locale)
	case FormatXLSX:
		return WriteXLSX(w, sheet)
	case FormatPDF:
		return WritePDF(w, sheet)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// ExportFile writes sheet to path, or to dir/<default name> when path is a
// directory or empty. It returns the path written. The file is replaced only
// once the export succeeded.
func ExportFile(path, dir string, f Format, sheet Sheet) (string, error) {
	if path == "" {
		path = filepath.Join(dir, sheet.FileName(f))
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, sheet.FileName(f))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err := Export(buf, f, sheet); err != nil {
		return "", err
	}
	if err := buf.Flush(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to replace %s: %w", path, err)
	}
	committed = true
	return path, nil
}

// Read parses an import file. PDF is export-only.
func Read(r io.Reader, f Format) (timesheet.RawRows, error) {
	switch f {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r)
	default:
		return timesheet.RawRows{}, fmt.Errorf("%w for import: %q", ErrUnsupportedFormat, f)
	}
}

// ReadFile parses the file at path, picking the format from its extension
func ReadFile(path string) (timesheet.RawRows, error) {
	f, err := DetectFormat(path)
	if err != nil {
		return timesheet.RawRows{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return timesheet.RawRows{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return Read(file, f)
}
