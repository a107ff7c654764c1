// Package csvfile reads and writes the events, lookup, and enriched tables as
// UTF-8 comma-separated files with a header row.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/event-location-etl/internal/domain"
)

// utf8BOM is stripped from the first header cell.
const utf8BOM = "\ufeff"

// Store is a filesystem-backed table store. Each call opens, fully reads or
// writes, and closes its file.
type Store struct{}

// NewStore creates a Store.
func NewStore() *Store {
	return &Store{}
}

// ReadEvents loads a table. A missing file yields an error matching
// fs.ErrNotExist; a zero-byte file yields domain.ErrEmptyTable.
func (s *Store) ReadEvents(path string) (domain.EventTable, error) {
	return readTable(path)
}

// WriteEvents writes a table, replacing any existing file.
func (s *Store) WriteEvents(path string, table domain.EventTable) error {
	return writeTable(path, table.Header, table.Rows)
}

// WriteLookup writes the lookup table with the fixed lookup header,
// replacing any existing file.
func (s *Store) WriteLookup(path string, entries []domain.LookupEntry) error {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = e.Record()
	}
	return writeTable(path, domain.LookupHeader, rows)
}

// ReadLookup loads a lookup table keyed by location. When a location appears
// more than once the last row wins.
func (s *Store) ReadLookup(path string) (domain.Lookup, error) {
	table, err := readTable(path)
	if err != nil {
		return nil, err
	}

	idx := make([]int, len(domain.LookupHeader))
	for i, col := range domain.LookupHeader {
		idx[i] = table.ColumnIndex(col)
		if idx[i] < 0 {
			return nil, fmt.Errorf("read lookup %s: %w: %q", path, domain.ErrMissingColumn, col)
		}
	}

	entries := make([]domain.LookupEntry, 0, len(table.Rows))
	for _, row := range table.Rows {
		entries = append(entries, domain.LookupEntry{
			Location:    row[idx[0]],
			Latitude:    row[idx[1]],
			Longitude:   row[idx[2]],
			DisplayName: row[idx[3]],
		})
	}
	return domain.NewLookup(entries), nil
}

func readTable(path string) (domain.EventTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.EventTable{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return domain.EventTable{}, fmt.Errorf("read %s: %w", path, domain.ErrEmptyTable)
	}
	if err != nil {
		return domain.EventTable{}, fmt.Errorf("read header %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return domain.EventTable{}, fmt.Errorf("read rows %s: %w", path, err)
	}
	return domain.EventTable{Header: header, Rows: rows}, nil
}

func writeTable(path string, header []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write header %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write rows %s: %w", path, err)
	}
	return f.Close()
}
