package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ironsheep/answer-sheet-roi/internal/geometry"
)

// ResultRow is one coordinate-file line: the image filename followed by each
// region's top-left and bottom-right corners, row before column.
type ResultRow struct {
	Filename string          `json:"filename"`
	Regions  []geometry.Quad `json:"regions"`
}

// NewResultRow builds the row for one match.
func NewResultRow(filename string, m Match) ResultRow {
	regions := make([]geometry.Quad, len(m.Regions))
	for i, r := range m.Regions {
		regions[i] = r.Corners
	}
	return ResultRow{Filename: filename, Regions: regions}
}

// Fields renders the row as
//
//	filename y1 x1 y2 x2 [y1 x1 y2 x2 ...]
//
// where (x1,y1) is a region's corner 0 and (x2,y2) its corner 2.
func (r ResultRow) Fields() []string {
	fields := make([]string, 0, 1+4*len(r.Regions))
	fields = append(fields, r.Filename)
	for _, q := range r.Regions {
		tl := q[geometry.TopLeft]
		br := q[geometry.BottomRight]
		fields = append(fields,
			strconv.Itoa(tl.Y), strconv.Itoa(tl.X),
			strconv.Itoa(br.Y), strconv.Itoa(br.X),
		)
	}
	return fields
}

// WriteRows writes rows space-delimited with no header. Fields containing a
// space or quote are quoted. crlf selects "\r\n" line endings.
func WriteRows(w io.Writer, rows []ResultRow, crlf bool) error {
	cw := csv.NewWriter(w)
	cw.Comma = ' '
	cw.UseCRLF = crlf

	for _, row := range rows {
		if err := cw.Write(row.Fields()); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", row.Filename, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush rows: %w", err)
	}
	return nil
}

// WriteCoordinateFile creates (or truncates) path and writes rows to it. An
// empty rows slice yields an empty file.
func WriteCoordinateFile(path string, rows []ResultRow, crlf bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return newError(CodeOutputWrite, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = newError(CodeOutputWrite, path, cerr)
		}
	}()

	if err := WriteRows(f, rows, crlf); err != nil {
		return newError(CodeOutputWrite, path, err)
	}
	return nil
}
