// Package export renders applicant lists as CSV or Excel files.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go-applicant-tracker/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ErrNoApplicants is returned when there is nothing to export
var ErrNoApplicants = errors.New("no applicants to export")

// EmptyMessage is the API message sent with the 404 for an empty export
const EmptyMessage = "No applicants to export"

// Headers are the export columns in order
var Headers = []string{
	"Full Name",
	"LinkedIn URL",
	"Expected Salary",
	"Resume File",
	"Notes",
	"Date Added",
}

// DateAddedLayout formats the Date Added column
const DateAddedLayout = domain.TimestampLayout

// Filename returns applicants_YYYY-MM-DD.<format>
func Filename(format domain.ExportFormat, now time.Time) string {
	return fmt.Sprintf("applicants_%s.%s", now.Format("2006-01-02"), format)
}

// Row returns the export cells of one applicant
func Row(a domain.Applicant) []string {
	dateAdded := ""
	if !a.CreatedAt.IsZero() {
		dateAdded = a.CreatedAt.Format(DateAddedLayout)
	}
	return []string{
		a.FullName,
		a.LinkedInURL,
		a.ExpectedSalary,
		a.ResumeName(),
		a.Notes,
		dateAdded,
	}
}

// WriteCSV writes a header row plus one fully quoted row per applicant
func WriteCSV(w io.Writer, applicants []domain.Applicant) error {
	if len(applicants) == 0 {
		return ErrNoApplicants
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(Headers, ",") + "\n")
	for _, a := range applicants {
		cells := Row(a)
		for i, cell := range cells {
			cells[i] = quote(cell)
		}
		buf.WriteString(strings.Join(cells, ",") + "\n")
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteXLSX writes a single-sheet workbook with a styled header row
func WriteXLSX(w io.Writer, applicants []domain.Applicant) error {
	if len(applicants) == 0 {
		return ErrNoApplicants
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Applicants"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, header := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(Headers), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, a := range applicants {
		for colIdx, value := range Row(a) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range Headers {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 24)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

// Write dispatches on format and returns the encoded bytes
func Write(format domain.ExportFormat, applicants []domain.Applicant) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case domain.ExportCSV, "":
		err = WriteCSV(&buf, applicants)
	case domain.ExportXLSX:
		err = WriteXLSX(&buf, applicants)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ContentType returns the MIME type of an export format
func ContentType(format domain.ExportFormat) string {
	if format == domain.ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
