package workbook

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// ReadCSV reads delimited text as a single-sheet workbook. Input that is not
// valid UTF-8 is decoded as Windows-1252, the usual spreadsheet export charset.
// The delimiter is sniffed from the first line (comma, semicolon or tab).
func ReadCSV(r io.Reader) (*Workbook, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, curriculum.Malformed("read csv", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		decoded, _, derr := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
		if derr != nil {
			return nil, curriculum.Malformed("decode csv", derr)
		}
		raw = decoded
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = sniffDelimiter(raw)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, curriculum.Malformed("parse csv", err)
		}
		rows = append(rows, rec)
	}
	return &Workbook{Sheets: []Sheet{newSheet("csv", rows)}}, nil
}

func sniffDelimiter(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	best, bestN := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte{byte(d)}); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
