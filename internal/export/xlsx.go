// Package export renders batch results as spreadsheets.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/paystubs/internal/core"
	"github.com/joseph-ayodele/paystubs/internal/core/extract"
)

const (
	SummarySheet   = "Summary"
	LineItemsSheet = "Line Items"

	// ContentType is the media type of BatchXLSX output.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var summaryHeaders = []string{
	"File",
	"Success",
	"Provider",
	"Employer",
	"Employee",
	"Pay Date",
	"Period Start",
	"Period End",
	"Frequency",
	"Gross Pay",
	"Net Pay",
	"Total Taxes",
	"Total Deductions",
	"Confidence",
	"Error",
}

var lineItemHeaders = []string{
	"File",
	"Kind",
	"Description",
	"Hours",
	"Rate",
	"Amount",
	"Pre-Tax",
}

// BatchXLSX returns a workbook with one Summary row per entry and one Line
// Items row per earning, deduction and tax, in entry order.
func BatchXLSX(entries []core.BatchEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(LineItemsSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	idx, _ := f.GetSheetIndex(SummarySheet)
	f.SetActiveSheet(idx)

	if err := writeRow(f, SummarySheet, 1, toAny(summaryHeaders)); err != nil {
		return nil, err
	}
	if err := writeRow(f, LineItemsSheet, 1, toAny(lineItemHeaders)); err != nil {
		return nil, err
	}

	itemRow := 2
	for i, e := range entries {
		if err := writeRow(f, SummarySheet, i+2, summaryRow(e)); err != nil {
			return nil, err
		}
		if e.Data == nil {
			continue
		}
		for _, row := range lineItems(e.Filename, e.Data) {
			if err := writeRow(f, LineItemsSheet, itemRow, row); err != nil {
				return nil, err
			}
			itemRow++
		}
	}

	_ = f.SetColWidth(SummarySheet, "A", "A", 28) // file
	_ = f.SetColWidth(SummarySheet, "C", "E", 22) // provider, names
	_ = f.SetColWidth(SummarySheet, "F", "I", 14) // dates, frequency
	_ = f.SetColWidth(SummarySheet, "J", "M", 14) // amounts
	_ = f.SetColWidth(SummarySheet, "O", "O", 48) // error
	_ = f.SetColWidth(LineItemsSheet, "A", "A", 28)
	_ = f.SetColWidth(LineItemsSheet, "C", "C", 32)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func summaryRow(e core.BatchEntry) []any {
	if e.Data == nil {
		row := make([]any, len(summaryHeaders))
		row[0], row[1], row[len(row)-1] = e.Filename, e.Success, e.Error
		return row
	}
	r := e.Data
	return []any{
		e.Filename,
		e.Success,
		string(r.Provider),
		r.Employer.Name,
		r.Employee.Name,
		r.PayDate,
		r.PayPeriodStart,
		r.PayPeriodEnd,
		string(r.PayFrequency),
		r.GrossPay.Float64(),
		r.NetPay.Float64(),
		r.TotalTaxes().Float64(),
		r.TotalDeductions().Float64(),
		r.ConfidenceScore,
		e.Error,
	}
}

func lineItems(file string, r *extract.ExtractionResult) [][]any {
	rows := make([][]any, 0, len(r.Earnings)+len(r.Deductions)+len(r.Taxes))
	for _, it := range r.Earnings {
		rows = append(rows, []any{file, "earning", it.Description, optional(it.Hours), optional(it.Rate), it.Amount.Float64(), nil})
	}
	for _, it := range r.Deductions {
		rows = append(rows, []any{file, "deduction", it.Description, nil, nil, it.Amount.Float64(), it.PreTax})
	}
	for _, it := range r.Taxes {
		rows = append(rows, []any{file, "tax", it.Description, nil, nil, it.Amount.Float64(), nil})
	}
	return rows
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
