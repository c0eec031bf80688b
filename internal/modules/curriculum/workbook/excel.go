package workbook

import (
	"fmt"
	"io"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
)

// ReadXLSX reads every sheet of an Office Open XML workbook. Cell values come
// back formatted as displayed, so numbers and dates are already strings.
func ReadXLSX(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, curriculum.Malformed("open xlsx", err)
	}
	defer func() { _ = f.Close() }()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, curriculum.Malformed(fmt.Sprintf("read sheet %q", name), err)
		}
		wb.Sheets = append(wb.Sheets, newSheet(name, rows))
	}
	if len(wb.Sheets) == 0 {
		return nil, curriculum.Malformed("workbook has no sheets", nil)
	}
	return wb, nil
}

// ReadXLS reads a legacy BIFF (Excel 97-2003) workbook.
func ReadXLS(r io.ReadSeeker) (*Workbook, error) {
	book, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, curriculum.Malformed("open xls", err)
	}
	if book == nil || book.NumSheets() == 0 {
		return nil, curriculum.Malformed("workbook has no sheets", nil)
	}

	wb := &Workbook{}
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		var rows [][]string
		for ri := 0; ri <= int(sheet.MaxRow); ri++ {
			row := sheet.Row(ri)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for ci := 0; ci < row.LastCol(); ci++ {
				cells = append(cells, row.Col(ci))
			}
			rows = append(rows, cells)
		}
		wb.Sheets = append(wb.Sheets, newSheet(sheet.Name, rows))
	}
	return wb, nil
}
