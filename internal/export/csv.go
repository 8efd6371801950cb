// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/pubmed-extract/pkg/types"
)

// WriteRows writes the fixed header followed by one line per row.
func WriteRows(w io.Writer, rows []types.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.CSVHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.Fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes rows to path. The data goes to a temporary file in the
// same directory which is flushed, closed and renamed over path, so a
// reader never observes a partially written file. Errors wrap types.ErrIO.
func WriteCSV(path string, rows []types.Row) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating directory %s: %w", types.ErrIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", types.ErrIO, err)
	}
	tmpPath := tmp.Name()

	if err := WriteRows(tmp, rows); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: writing %s: %w", types.ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: closing %s: %w", types.ErrIO, path, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %w", types.ErrIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: renaming to %s: %w", types.ErrIO, path, err)
	}
	return nil
}
