package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions no reader handles.
var ErrUnsupportedFormat = errors.New("ingest: unsupported file format")

// Table is a row-oriented sheet with normalised column names.
type Table struct {
	Source  string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a table from a raw header and data rows.
// Header names are normalised with NormalizeColumn and short rows are padded.
func NewTable(source string, header []string, rows [][]string) *Table {
	t := &Table{
		Source:  source,
		Columns: make([]string, len(header)),
		index:   make(map[string]int, len(header)),
	}
	for i, h := range header {
		name := NormalizeColumn(h)
		t.Columns[i] = name
		if _, dup := t.index[name]; !dup && name != "" {
			t.index[name] = i
		}
	}

	t.Rows = make([][]string, 0, len(rows))
	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		padded := make([]string, len(header))
		copy(padded, row)
		t.Rows = append(t.Rows, padded)
	}
	return t
}

// Column returns the position of the first column matching any of the given names.
func (t *Table) Column(names ...string) (int, bool) {
	for _, name := range names {
		if idx, ok := t.index[NormalizeColumn(name)]; ok {
			return idx, true
		}
	}
	return -1, false
}

// Len reports the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// NormalizeColumn lower-cases a header and turns separators into underscores.
func NormalizeColumn(name string) string {
	name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	name = strings.ToLower(name)
	return strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	}), "_")
}

// Reader decodes one table format.
type Reader interface {
	Read(r io.Reader, source string) (*Table, error)
}

var readers = map[string]Reader{
	".csv":  CSVReader{},
	".xlsx": XLSXReader{},
	".xlsm": XLSXReader{},
}

// Read decodes r using the reader registered for the extension of name.
func Read(r io.Reader, name string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(name))
	reader, ok := readers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return reader.Read(r, filepath.Base(name))
}

// ReadFile opens path and decodes it with Read.
func ReadFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer file.Close()

	return Read(file, path)
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
