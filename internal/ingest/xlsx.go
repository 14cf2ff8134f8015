package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXReader reads the first worksheet of an Excel workbook.
type XLSXReader struct{}

// Read parses the first sheet; its first row is the header.
func (XLSXReader) Read(r io.Reader, source string) (*Table, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx %s: open workbook: %w", source, err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx %s: workbook has no sheets", source)
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx %s: read sheet %q: %w", source, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx %s: sheet %q is empty", source, sheets[0])
	}

	return NewTable(source, rows[0], rows[1:]), nil
}

var _ Reader = XLSXReader{}
