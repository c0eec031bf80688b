package ingest

import (
	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/keywords"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/normalize"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/schema"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/workbook"
)

// SheetReport summarizes one sheet of an ingestion run.
type SheetReport struct {
	Name     string
	Mapped   int
	Rows     int
	Accepted int
	Rejected int
	Skipped  bool
}

// Report summarizes an ingestion run. Rejected rows are counted only; they
// are never reported individually.
type Report struct {
	Sheets   []SheetReport
	Rows     int
	Accepted int
	Rejected int
}

// DefaultMode is the acceptance policy for a file type: strict for delimited
// text, lenient for spreadsheet workbooks.
func DefaultMode(t workbook.FileType) normalize.Mode {
	if t.Delimited() {
		return normalize.ModeStrict
	}
	return normalize.ModeLenient
}

// Outcomes normalizes every sheet of wb. Sheets whose header maps no
// canonical field contribute nothing; if no sheet has a usable header the
// workbook is malformed.
func Outcomes(wb *workbook.Workbook, mode normalize.Mode) ([]*curriculum.Outcome, Report, error) {
	var (
		out    []*curriculum.Outcome
		report Report
		usable int
	)
	if wb == nil {
		return nil, report, curriculum.Malformed("no workbook", nil)
	}
	for si := range wb.Sheets {
		sheet := &wb.Sheets[si]
		sr := SheetReport{Name: sheet.Name, Rows: len(sheet.Rows)}

		mapping := schema.MapHeader(sheet.Header)
		sr.Mapped = len(mapping)
		if len(mapping) == 0 {
			sr.Skipped = true
			report.Rows += sr.Rows
			report.Sheets = append(report.Sheets, sr)
			continue
		}
		usable++

		for ri, row := range sheet.Rows {
			o, ok := normalize.Row(row, mapping, mode)
			if !ok {
				sr.Rejected++
				continue
			}
			o.Topics = keywords.MergeTopics(o.Topics, o.DescriptiveText())
			o.SourceSheet = sheet.Name
			o.SourceRow = sheet.SourceRow(ri)
			out = append(out, o)
			sr.Accepted++
		}
		report.Rows += sr.Rows
		report.Accepted += sr.Accepted
		report.Rejected += sr.Rejected
		report.Sheets = append(report.Sheets, sr)
	}
	if usable == 0 {
		return nil, report, curriculum.Malformed("no sheet has a recognizable header row", nil)
	}
	return out, report, nil
}
