package workbook

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
)

func TestDetectType(t *testing.T) {
	cases := []struct {
		name, mime string
		want       FileType
	}{
		{"outcomes.csv", "text/csv", TypeCSV},
		{"outcomes.CSV", "", TypeCSV},
		{"outcomes.csv", "application/vnd.ms-excel", TypeCSV},
		{"outcomes.xlsx", mimeXLSX, TypeXLSX},
		{"outcomes.xlsx", "application/octet-stream", TypeXLSX},
		{"outcomes.xls", mimeXLS, TypeXLS},
		{"upload", mimeXLSX, TypeXLSX},
		{"upload", "text/csv; charset=utf-8", TypeCSV},
	}
	for _, tc := range cases {
		got, err := DetectType(tc.name, tc.mime)
		require.NoErrorf(t, err, "%s %s", tc.name, tc.mime)
		require.Equal(t, tc.want, got)
	}

	for _, bad := range [][2]string{
		{"outcomes.pdf", "application/pdf"},
		{"outcomes.xlsx", "image/png"},
		{"upload", "application/octet-stream"},
	} {
		_, err := DetectType(bad[0], bad[1])
		require.Error(t, err)
		require.True(t, errors.Is(err, curriculum.ErrMalformedInput))
	}
}

func TestReadCSVStripsBOMAndSniffsSemicolon(t *testing.T) {
	data := []byte("\xef\xbb\xbfLearning Area;Level;Content Description\nMaths;Year 1;\"Count; to 20\"\n")
	wb, err := ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	s := wb.Sheets[0]
	require.Equal(t, []string{"Learning Area", "Level", "Content Description"}, s.Header)
	require.Equal(t, [][]string{{"Maths", "Year 1", "Count; to 20"}}, s.Rows)
	require.Equal(t, 2, s.SourceRow(0))
}

func TestReadCSVDecodesWindows1252(t *testing.T) {
	// "Français" with ç encoded as 0xE7
	data := []byte("Subject,Level\nFran\xe7ais,Year 9\n")
	wb, err := ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "Français", wb.Sheets[0].Rows[0][0])
}

func TestReadCSVSkipsLeadingBlankLines(t *testing.T) {
	data := []byte(",,\nSubject,Level\nArts,Year 2\n")
	wb, err := ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	s := wb.Sheets[0]
	require.Equal(t, 2, s.HeaderRow)
	require.Equal(t, []string{"Subject", "Level"}, s.Header)
	require.Equal(t, 3, s.SourceRow(0))
}

func TestReadXLSXAllSheets(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Outcomes"))
	_, err := f.NewSheet("Empty")
	require.NoError(t, err)
	header := []interface{}{"Learning Area", "Subject", "Level", "Content Description"}
	require.NoError(t, f.SetSheetRow("Outcomes", "A1", &header))
	row := []interface{}{"Science", "Physics", 7, "Investigate forces"}
	require.NoError(t, f.SetSheetRow("Outcomes", "A2", &row))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	wb, err := Parse(buf.Bytes(), TypeXLSX)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)
	require.Equal(t, "Outcomes", wb.Sheets[0].Name)
	require.Equal(t, []string{"Science", "Physics", "7", "Investigate forces"}, wb.Sheets[0].Rows[0])
	require.Empty(t, wb.Sheets[1].Header)
	require.Empty(t, wb.Sheets[1].Rows)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("not a zip"), TypeXLSX)
	require.ErrorIs(t, err, curriculum.ErrMalformedInput)

	_, err = Parse([]byte("   "), TypeCSV)
	require.ErrorIs(t, err, curriculum.ErrMalformedInput)
}
