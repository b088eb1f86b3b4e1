package ledger

import (
	"context"
	"fmt"
	"io"

	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// ExportXLSX writes the pivot of the store for the month as a spreadsheet and returns the resolved month.
//
// The sheet is named after the month. It has a header row, one row per day and a totals row.
func (s *Service) ExportXLSX(ctx context.Context, kind models.Kind, token string, w io.Writer) (types.Month, error) {
	month, _ := s.Resolve(token)

	p, err := s.MonthlyPivot(ctx, kind, month.String())
	if err != nil {
		return month, err
	}

	f, err := pivotWorkbook(p)
	if err != nil {
		return month, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("closing workbook")
		}
	}()

	return month, f.Write(w)
}

// pivotWorkbook renders the pivot into a new workbook.
func pivotWorkbook(p Pivot) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := p.Month.String()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	header := make([]interface{}, 0, len(p.Members)+2)
	header = append(header, "Date")
	for _, name := range p.Members {
		header = append(header, name)
	}
	header = append(header, "Total")

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, row := range p.Rows {
		values := make([]interface{}, 0, len(row.Cells)+2)
		values = append(values, row.Date.String())
		for _, cell := range row.Cells {
			if cell.Blank {
				values = append(values, nil)
				continue
			}
			values = append(values, cell.Value.InexactFloat64())
		}
		values = append(values, row.Total.InexactFloat64())

		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return nil, err
		}
	}

	totals := make([]interface{}, 0, len(p.Members)+2)
	totals = append(totals, "Total")
	for _, total := range p.ColumnTotals {
		totals = append(totals, total.InexactFloat64())
	}
	totals = append(totals, p.GrandTotal.InexactFloat64())

	totalsRow := len(p.Rows) + 2
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", totalsRow), &totals); err != nil {
		return nil, err
	}

	for _, row := range []int{1, totalsRow} {
		if err := f.SetRowStyle(sheet, row, row, bold); err != nil {
			return nil, err
		}
	}

	return f, nil
}
