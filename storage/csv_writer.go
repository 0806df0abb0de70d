package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/CodePeacock/scraper/models"
)

// Header is the fixed column order of every output file.
var Header = []string{"owner", "price", "property_name"}

// CSVWriter writes a run's combined listings to run.OutputPath.
// It is safe for concurrent use.
type CSVWriter struct {
	mu sync.Mutex
}

func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// Write creates (or truncates) the file, writes the header row and one row
// per listing. Intermediate directories are created automatically. An empty
// run still produces a header-only file.
func (c *CSVWriter) Write(_ context.Context, run *models.RunReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := run.OutputPath
	if path == "" {
		return fmt.Errorf("csv: empty output path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}

	if err := writeRows(csv.NewWriter(f), run.Listings); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csv: close %q: %w", path, err)
	}
	return nil
}

func writeRows(w *csv.Writer, listings []models.Listing) error {
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, l := range listings {
		if err := w.Write([]string{l.Owner, l.Price, l.PropertyName}); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return nil
}

// Close is a no-op; every Write opens and closes its own file.
func (c *CSVWriter) Close() error {
	return nil
}
