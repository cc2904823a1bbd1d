// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
)

// SheetName is the worksheet the attendance table is written to.
const SheetName = "Attendance"

const xlsxColumnWidth = 18

// WriteXLSX writes rows as a single-sheet workbook. Numeric columns are stored
// as numbers so they can be summed in a spreadsheet.
func WriteXLSX(w io.Writer, rows []*models.AttendanceRow) error {
	f, err := buildWorkbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes the workbook to path.
func SaveXLSX(path string, rows []*models.AttendanceRow) error {
	f, err := buildWorkbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook to %s: %w", path, err)
	}
	return nil
}

func buildWorkbook(rows []*models.AttendanceRow) (*excelize.File, error) {
	f := excelize.NewFile()

	// Rename the default sheet instead of adding a second one.
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, col := range Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(SheetName, cell, col); err != nil {
			f.Close()
			return nil, err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(Columns), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	for rowIdx, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := cellValues(row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			f.Close()
			return nil, err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(Columns))
	if err := f.SetColWidth(SheetName, "A", lastCol, xlsxColumnWidth); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// cellValues mirrors Record but keeps numeric columns typed.
func cellValues(row *models.AttendanceRow) []any {
	text := Record(row)
	values := make([]any, len(text))
	for i, v := range text {
		values[i] = v
	}
	values[4] = row.ParticipantDuration
	if row.AttendedMinutes != nil {
		values[5] = *row.AttendedMinutes
	}
	values[9] = row.MeetingID
	values[13] = row.MeetingDuration
	return values
}
