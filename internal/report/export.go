package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/performance-evaluation/internal"
)

// Export formats.
const (
	FormatPDF   = "pdf"
	FormatExcel = "excel"
)

// Export renders a stored table into the requested format and returns the
// bytes plus the content type to serve them with.
func Export(table *Table, name, format string) ([]byte, string, error) {
	switch format {
	case FormatPDF:
		data, err := exportPDF(table, name)
		return data, "application/pdf", err
	case FormatExcel:
		data, err := exportExcel(table, name)
		return data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	default:
		return nil, "", internal.ErrUnsupportedFormat
	}
}

func exportExcel(table *Table, name string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Reporte"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, err
	}

	for i, column := range table.Columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, column); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, 22); err != nil {
			return nil, err
		}
	}

	for rowIdx, row := range table.Rows {
		for colIdx, value := range row {
			col, err := excelize.ColumnNumberToName(colIdx + 1)
			if err != nil {
				return nil, err
			}
			cell := fmt.Sprintf("%s%d", col, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, cellValue(value)); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportPDF(table *Table, name string) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(name, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, name, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generado el: "+time.Now().Format("02/01/2006"), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	colWidth := usable
	if len(table.Columns) > 0 {
		colWidth = usable / float64(len(table.Columns))
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(217, 225, 242)
	for _, column := range table.Columns {
		pdf.CellFormat(colWidth, 7, column, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, row := range table.Rows {
		for _, value := range row {
			pdf.CellFormat(colWidth, 6, fmt.Sprint(cellValue(value)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cellValue flattens JSON-decoded and driver values into something both
// renderers accept.
func cellValue(v any) any {
	switch value := v.(type) {
	case nil:
		return ""
	case *string:
		if value == nil {
			return ""
		}
		return *value
	case *time.Time:
		if value == nil {
			return ""
		}
		return value.Format("2006-01-02")
	case time.Time:
		return value.Format("2006-01-02")
	default:
		return value
	}
}
