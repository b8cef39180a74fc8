package services

import (
	"fmt"
	"strings"

	"trackmystartup/pkg/money"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	recordsSheet   = "Records"
	monthlySheet   = "Monthly"
	verticalsSheet = "Verticals"
)

// ExportFileName names the workbook after the startup and filter.
func ExportFileName(d *ExportData) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, d.Startup.Name)
	entity := "all"
	if !d.Report.Filter.AllEntities() {
		entity = strings.ReplaceAll(strings.ToLower(d.Report.Filter.Entity), " ", "_")
	}
	return fmt.Sprintf("%s_financials_%s_%s.xlsx", name, entity, d.Report.Filter.Year.String())
}

// BuildWorkbook renders the records, the monthly series and the vertical
// breakdown into one workbook. Amount columns hold numbers; the Display
// columns hold the amount formatted in the startup's currency.
func BuildWorkbook(d *ExportData) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return nil, err
	}
	for _, name := range []string{monthlySheet, verticalsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	cur := d.Startup.Currency

	rows := [][]interface{}{{"Date", "Type", "Entity", "Vertical", "Description", "Amount", "Display", "Funding Source", "COGS", "Attachment"}}
	for _, r := range d.Records {
		var cogs interface{}
		if r.Cogs.Valid {
			cogs = r.Cogs.Decimal.InexactFloat64()
		}
		rows = append(rows, []interface{}{
			r.Date.Format("2006-01-02"),
			string(r.RecordType),
			r.Entity,
			r.Vertical.Label,
			r.Description,
			r.Amount.InexactFloat64(),
			money.Format(r.Amount, cur),
			r.FundingSource,
			cogs,
			r.AttachmentURL,
		})
	}
	if err := writeRows(f, recordsSheet, rows); err != nil {
		return nil, err
	}

	rows = [][]interface{}{{"Period", "Revenue", "Expenses", "Revenue Display", "Expenses Display"}}
	for _, p := range d.Report.Monthly {
		rows = append(rows, []interface{}{
			p.Label,
			p.Revenue.InexactFloat64(),
			p.Expenses.InexactFloat64(),
			money.Format(p.Revenue, cur),
			money.Format(p.Expenses, cur),
		})
	}
	rows = append(rows, []interface{}{})
	s := d.Report.Summary
	for _, line := range []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Total Revenue", s.TotalRevenue},
		{"Total Expenses", s.TotalExpenses},
		{"Gross Profit", s.GrossProfit},
		{"Total Funding", s.TotalFunding},
		{"Available Funds", s.AvailableFunds},
	} {
		rows = append(rows, []interface{}{line.label, line.amount.InexactFloat64(), nil, money.Format(line.amount, cur)})
	}
	if err := writeRows(f, monthlySheet, rows); err != nil {
		return nil, err
	}

	rows = [][]interface{}{{"Type", "Vertical", "Amount", "Display"}}
	for _, v := range d.Report.Verticals.Revenue {
		rows = append(rows, []interface{}{"revenue", v.Label, v.Amount.InexactFloat64(), money.Format(v.Amount, cur)})
	}
	for _, v := range d.Report.Verticals.Expenses {
		rows = append(rows, []interface{}{"expense", v.Label, v.Amount.InexactFloat64(), money.Format(v.Amount, cur)})
	}
	if err := writeRows(f, verticalsSheet, rows); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
