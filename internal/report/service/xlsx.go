package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

func (s *Service) RenderXLSX(ctx context.Context, from, to time.Time) (io.Reader, error) {
	summary, err := s.Summary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Financial Report"
	f.SetSheetName("Sheet1", sheet)

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	f.SetCellValue(sheet, "A1", "CityLights Financial Report")
	f.SetCellValue(sheet, "A2", "Range")
	f.SetCellValue(sheet, "B2", summary.From.Format("2006-01-02")+" to "+summary.To.Format("2006-01-02"))
	f.SetCellValue(sheet, "A3", "Generated")
	f.SetCellValue(sheet, "B3", s.clock.Now().Format("2006-01-02 15:04"))

	f.SetCellValue(sheet, "A5", "Period")
	f.SetCellValue(sheet, "B5", "Income")
	f.SetCellValue(sheet, "C5", "Expense")
	f.SetCellValue(sheet, "D5", "Net")
	f.SetCellStyle(sheet, "A1", "A1", header)
	f.SetCellStyle(sheet, "A5", "D5", header)

	rowIdx := 6
	for _, r := range summary.Rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", rowIdx), r.Period())
		f.SetCellValue(sheet, fmt.Sprintf("B%d", rowIdx), r.Income)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", rowIdx), r.Expense)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", rowIdx), r.Net)
		rowIdx++
	}

	f.SetCellValue(sheet, fmt.Sprintf("A%d", rowIdx), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", rowIdx), summary.TotalIncome)
	f.SetCellValue(sheet, fmt.Sprintf("C%d", rowIdx), summary.TotalExpense)
	f.SetCellValue(sheet, fmt.Sprintf("D%d", rowIdx), summary.TotalNet)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", rowIdx), fmt.Sprintf("D%d", rowIdx), header)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}
