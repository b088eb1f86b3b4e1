package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/shopspring/decimal"
)

// Columns of the deposit import file
const (
	colUserID = iota
	colDate
	colAmount
)

// ImportHeader is the header row of deposit import files.
var ImportHeader = []string{"user_id", "date", "amount"}

// importFields maps validation fields to the columns of the import file.
var importFields = map[string]string{
	"memberId": "user_id",
	"date":     "date",
	"quantity": "amount",
}

// ImportDeposits imports deposits from a CSV file with the columns user_id, date and amount.
//
// Rows are validated and stored one by one. Invalid rows are reported and skipped,
// all valid rows are stored. If storing a row fails, the import stops and the rows
// stored until then are kept. Row numbers count the header as row 1.
func (s *Service) ImportDeposits(ctx context.Context, f io.Reader) (BulkResult, error) {
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return BulkResult{}, fmt.Errorf("%w: the file is empty", ErrInvalidCSV)
	} else if err != nil {
		return BulkResult{}, fmt.Errorf("%w: could not read header: %w", ErrInvalidCSV, err)
	}

	if !validHeader(header) {
		return BulkResult{}, fmt.Errorf("%w: expected headers: %s", ErrInvalidCSV, strings.Join(ImportHeader, ", "))
	}

	roster, err := s.store.ActiveMembers(ctx)
	if err != nil {
		return BulkResult{}, err
	}
	active := newRoster(roster)

	result := BulkResult{Errors: []string{}}
	var months []types.Month

	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: could not be read: %v", row, err))
			continue
		}

		in, problems := parseImportRow(record, active)
		if len(problems) == 0 {
			if err := validateRecord(s.validate, models.KindDeposit, in); err != nil {
				var v ValidationError
				if !errors.As(err, &v) {
					return result, err
				}
				for field, message := range v.Fields {
					column := importFields[field]
					problems[column] = strings.Replace(message, field, column, 1)
				}
			}
		}

		if len(problems) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", row, joinProblems(problems)))
			continue
		}

		if _, err := s.store.Upsert(ctx, models.KindDeposit, entry(models.KindDeposit, in)); err != nil {
			// Rows stored before the failure are committed
			if ierr := s.invalidate(ctx, months...); ierr != nil {
				return result, errors.Join(err, ierr)
			}
			return result, err
		}

		result.Imported++
		months = append(months, in.Date.Month())
	}

	if err := s.invalidate(ctx, months...); err != nil {
		return result, err
	}

	return result, nil
}

func validHeader(header []string) bool {
	if len(header) < len(ImportHeader) {
		return false
	}

	for i, name := range ImportHeader {
		cell := strings.TrimSpace(header[i])
		if i == 0 {
			cell = strings.TrimPrefix(cell, "\ufeff")
		}

		if cell != name {
			return false
		}
	}
	return true
}

// parseImportRow parses the cells of a row. Problems are keyed by column.
func parseImportRow(record []string, active roster) (RecordInput, map[string]string) {
	problems := map[string]string{}

	if len(record) < len(ImportHeader) {
		problems["_"] = "Insufficient data"
		return RecordInput{}, problems
	}

	var in RecordInput

	id, err := uuid.Parse(strings.TrimSpace(record[colUserID]))
	if err != nil {
		problems["user_id"] = "user_id is not a valid member ID"
	} else if _, ok := active[id]; !ok {
		problems["user_id"] = "user_id is not an active member"
	}
	in.MemberID = id

	date, err := types.ParseDate(record[colDate])
	if err != nil {
		problems["date"] = "date must be a date in the format YYYY-MM-DD"
	}
	in.Date = date

	amount, err := decimal.NewFromString(strings.TrimSpace(record[colAmount]))
	if err != nil {
		problems["amount"] = "amount must be a number"
	}
	in.Quantity = amount

	return in, problems
}

// joinProblems joins the problems of a row in column order.
func joinProblems(problems map[string]string) string {
	order := map[string]int{"_": 0, "user_id": 1, "date": 2, "amount": 3}

	keys := make([]string, 0, len(problems))
	for k := range problems {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return order[keys[i]] < order[keys[j]]
	})

	messages := make([]string, 0, len(keys))
	for _, k := range keys {
		messages = append(messages, problems[k])
	}
	return strings.Join(messages, ", ")
}

// ImportTemplate writes an import file with one zero deposit per active member for today.
func (s *Service) ImportTemplate(ctx context.Context, w io.Writer) error {
	roster, err := s.store.ActiveMembers(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(ImportHeader); err != nil {
		return err
	}

	today := s.Today().String()
	for _, member := range roster {
		if err := writer.Write([]string{member.ID.String(), today, "0.00"}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportCSV writes the records of the store for the month as CSV and returns the resolved month.
//
// Meals are exported as their pivot with the columns Date, one per member, and Total.
// All other stores are exported as Date, User, Amount and, if they have one, Description.
func (s *Service) ExportCSV(ctx context.Context, kind models.Kind, token string, w io.Writer) (types.Month, error) {
	month, _ := s.Resolve(token)
	writer := csv.NewWriter(w)

	var err error
	if kind == models.KindMeal {
		err = s.exportPivotCSV(ctx, kind, month, writer)
	} else {
		err = s.exportListCSV(ctx, kind, month, writer)
	}
	if err != nil {
		return month, err
	}

	writer.Flush()
	return month, writer.Error()
}

func (s *Service) exportPivotCSV(ctx context.Context, kind models.Kind, month types.Month, writer *csv.Writer) error {
	p, err := s.MonthlyPivot(ctx, kind, month.String())
	if err != nil {
		return err
	}

	header := append([]string{"Date"}, p.Members...)
	header = append(header, "Total")
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range p.Rows {
		line := make([]string, 0, len(row.Cells)+2)
		line = append(line, row.Date.String())
		for _, cell := range row.Cells {
			line = append(line, formatQuantity(kind, cell.Value))
		}
		line = append(line, formatQuantity(kind, row.Total))

		if err := writer.Write(line); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) exportListCSV(ctx context.Context, kind models.Kind, month types.Month, writer *csv.Writer) error {
	list, err := s.Records(ctx, kind, month.String())
	if err != nil {
		return err
	}

	records := list.Records
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].MemberName < records[j].MemberName
	})

	header := []string{"Date", "User", "Amount"}
	if kind.HasDescription() {
		header = append(header, "Description")
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		line := []string{r.Date.String(), r.MemberName, formatQuantity(kind, r.Quantity)}
		if kind.HasDescription() {
			line = append(line, r.Description)
		}

		if err := writer.Write(line); err != nil {
			return err
		}
	}

	return nil
}

// formatQuantity formats meal counts with one and money with two decimal places.
func formatQuantity(kind models.Kind, d decimal.Decimal) string {
	if kind.Monetary() {
		return d.StringFixed(2)
	}
	return d.StringFixed(1)
}
