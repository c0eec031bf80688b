package workbook

import (
	"bytes"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
)

// FileType is an accepted upload format.
type FileType string

const (
	TypeCSV  FileType = "csv"
	TypeXLSX FileType = "xlsx"
	TypeXLS  FileType = "xls"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
)

// Delimited reports whether the type is a flat text format rather than a
// spreadsheet workbook.
func (t FileType) Delimited() bool { return t == TypeCSV }

// Workbook exists only for the duration of one ingestion call.
type Workbook struct {
	Sheets []Sheet
}

// Sheet holds the header row and the data rows beneath it. HeaderRow is the
// 1-based row number of the header inside the source sheet.
type Sheet struct {
	Name      string
	HeaderRow int
	Header    []string
	Rows      [][]string
}

// SourceRow returns the 1-based source row number of data row i.
func (s *Sheet) SourceRow(i int) int { return s.HeaderRow + 1 + i }

var allowedMIME = map[FileType][]string{
	TypeCSV:  {"text/csv", "application/csv", "text/plain", "text/comma-separated-values", mimeXLS},
	TypeXLSX: {mimeXLSX, "application/zip"},
	TypeXLS:  {mimeXLS, "application/msexcel", "application/x-msexcel"},
}

// DetectType validates a declared file name and MIME type against the
// accepted formats. The extension wins; the MIME type must agree with it when
// it is specific. Without an extension the MIME type decides.
func DetectType(fileName, declaredMIME string) (FileType, error) {
	mt := ""
	if declaredMIME != "" {
		if parsed, _, err := mime.ParseMediaType(declaredMIME); err == nil {
			mt = strings.ToLower(parsed)
		}
	}
	generic := mt == "" || mt == "application/octet-stream"

	ext := FileType(strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(fileName))), "."))
	switch ext {
	case TypeCSV, TypeXLSX, TypeXLS:
		if generic || contains(allowedMIME[ext], mt) {
			return ext, nil
		}
		return "", curriculum.Malformed(fmt.Sprintf("declared type %q does not match .%s", mt, ext), nil)
	case "":
		switch mt {
		case mimeXLSX:
			return TypeXLSX, nil
		case mimeXLS:
			return TypeXLS, nil
		case "text/csv", "application/csv":
			return TypeCSV, nil
		}
	}
	return "", curriculum.Malformed("unsupported file type; expected csv, xlsx or xls", nil)
}

// Parse reads raw upload bytes into a workbook.
func Parse(data []byte, t FileType) (*Workbook, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, curriculum.Malformed("file is empty", nil)
	}
	switch t {
	case TypeCSV:
		return ReadCSV(bytes.NewReader(data))
	case TypeXLSX:
		return ReadXLSX(bytes.NewReader(data))
	case TypeXLS:
		return ReadXLS(bytes.NewReader(data))
	default:
		return nil, curriculum.Malformed(fmt.Sprintf("unsupported file type %q", t), nil)
	}
}

// newSheet splits raw rows into header and data, skipping leading blank rows.
func newSheet(name string, rows [][]string) Sheet {
	s := Sheet{Name: name}
	for i, r := range rows {
		if blank(r) {
			continue
		}
		s.HeaderRow = i + 1
		s.Header = r
		s.Rows = rows[i+1:]
		return s
	}
	return s
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
