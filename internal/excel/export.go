// Package excel renders score data into xlsx workbooks for the teacher
// exports. Ranking is descending by score with stable ties, so students who
// scored earlier keep their position.
package excel

import (
	"fmt"
	"sort"

	"quiz-admin-service/internal/domain"
	"github.com/xuri/excelize/v2"
)

const dateLayout = "2006-01-02 15:04:05"

// SubjectWorkbook builds the per-subject score sheet. The topper's rows are
// highlighted and marked in the Remarks column. records must already be
// filtered to the subject.
func SubjectWorkbook(subject string, records []domain.ScoreRecord) (*excelize.File, error) {
	ranked := rankByScore(records)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, subject); err == nil {
		sheet = subject
	}

	headers := []string{"Student Name", "Subject", "Score", "Total", "Percentage", "Date", "Remarks"}
	widths := []float64{25, 25, 10, 10, 15, 20, 15}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetCellValue(sheet, col+"1", h); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return nil, err
		}
	}

	topperStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}
	topperNameStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}},
		Font: &excelize.Font{Bold: true, Color: "FF0000"},
	})
	if err != nil {
		return nil, err
	}

	var topper string
	if len(ranked) > 0 {
		topper = ranked[0].Student
	}

	for i, rec := range ranked {
		row := i + 2
		remark := ""
		if rec.Student == topper {
			remark = "Topper"
		}
		values := []any{rec.Student, rec.Subject, rec.Score, rec.Total, rec.Percentage, rec.RecordedAt.Format(dateLayout), remark}
		for j, v := range values {
			col, _ := excelize.ColumnNumberToName(j + 1)
			if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), v); err != nil {
				return nil, err
			}
		}
		if rec.Student == topper {
			if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), topperStyle); err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), topperNameStyle); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// ToppersWorkbook builds the all-subjects toppers sheet: per subject (in
// first-seen order) a title row followed by the top 5 scores.
func ToppersWorkbook(records []domain.ScoreRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, "Subject Toppers"); err == nil {
		sheet = "Subject Toppers"
	}

	headers := []string{"Rank", "Student Name", "Score", "Percentage"}
	widths := []float64{6, 30, 10, 15}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetCellValue(sheet, col+"1", h); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return nil, err
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, err
	}

	row := 2
	for _, subject := range subjectsInOrder(records) {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Subject: "+subject); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), titleStyle); err != nil {
			return nil, err
		}
		row += 2 // title + spacing

		top := rankByScore(filterBySubject(records, subject))
		if len(top) > 5 {
			top = top[:5]
		}
		for rank, rec := range top {
			values := []any{rank + 1, rec.Student, rec.Score, rec.Percentage}
			for j, v := range values {
				col, _ := excelize.ColumnNumberToName(j + 1)
				if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), v); err != nil {
					return nil, err
				}
			}
			row++
		}
		row++ // spacing between subjects
	}
	return f, nil
}

// rankByScore returns a copy sorted descending by score. The sort is stable:
// ties keep their original insertion order.
func rankByScore(records []domain.ScoreRecord) []domain.ScoreRecord {
	ranked := append([]domain.ScoreRecord(nil), records...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func filterBySubject(records []domain.ScoreRecord, subject string) []domain.ScoreRecord {
	var out []domain.ScoreRecord
	for _, rec := range records {
		if rec.Subject == subject {
			out = append(out, rec)
		}
	}
	return out
}

func subjectsInOrder(records []domain.ScoreRecord) []string {
	seen := make(map[string]struct{})
	var subjects []string
	for _, rec := range records {
		if _, ok := seen[rec.Subject]; ok {
			continue
		}
		seen[rec.Subject] = struct{}{}
		subjects = append(subjects, rec.Subject)
	}
	return subjects
}
