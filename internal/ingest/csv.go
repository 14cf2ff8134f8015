package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// CSVReader reads comma separated noon-report exports.
type CSVReader struct{}

// Read parses a header row followed by data rows.
func (CSVReader) Read(r io.Reader, source string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv %s: empty file", source)
		}
		return nil, fmt.Errorf("csv %s: read header: %w", source, err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv %s: %w", source, err)
	}

	return NewTable(source, header, rows), nil
}

var _ Reader = CSVReader{}
