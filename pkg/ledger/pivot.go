package ledger

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/shopspring/decimal"
)

// Cell is the quantity of one member on one day.
//
// A blank cell marks "no activity" in display-only pivots. It is never summed.
type Cell struct {
	Value decimal.Decimal `json:"value"`
	Blank bool            `json:"blank,omitempty"`
}

// PivotRow holds the cells of one day in column order.
type PivotRow struct {
	Date  types.Date      `json:"date"`
	Cells []Cell          `json:"cells"`
	Total decimal.Decimal `json:"total"`
}

// Pivot is the dense day × member matrix of a record store.
type Pivot struct {
	Kind         models.Kind       `json:"kind"`
	Month        types.Month       `json:"month"`
	Members      []string          `json:"members"` // Column names, in roster order
	MemberIDs    []uuid.UUID       `json:"memberIds"`
	Rows         []PivotRow        `json:"rows"`
	ColumnTotals []decimal.Decimal `json:"columnTotals"` // In column order
	GrandTotal   decimal.Decimal   `json:"grandTotal"`
}

type cellKey struct {
	day    string
	member uuid.UUID
}

// BuildPivot builds the pivot of records over every day of the range.
//
// Columns are the roster members in roster order. Records of members not on the roster
// are ignored. Days without a record for a member get a zero cell, or a blank cell
// if blank is set.
func BuildPivot(r types.DateRange, roster []models.Member, records []models.Entry, blank bool) Pivot {
	p := Pivot{
		Members:      make([]string, len(roster)),
		MemberIDs:    make([]uuid.UUID, len(roster)),
		Rows:         make([]PivotRow, 0, r.Len()),
		ColumnTotals: make([]decimal.Decimal, len(roster)),
		GrandTotal:   decimal.Zero,
	}

	for i, member := range roster {
		p.Members[i] = member.Name
		p.MemberIDs[i] = member.ID
		p.ColumnTotals[i] = decimal.Zero
	}

	index := make(map[cellKey]decimal.Decimal, len(records))
	for _, record := range records {
		index[cellKey{types.DateOf(record.Date).String(), record.MemberID}] = record.Quantity
	}

	for _, day := range r.Days() {
		row := PivotRow{
			Date:  day,
			Cells: make([]Cell, len(roster)),
			Total: decimal.Zero,
		}

		for i, member := range roster {
			quantity, ok := index[cellKey{day.String(), member.ID}]
			if !ok {
				row.Cells[i] = Cell{Value: decimal.Zero, Blank: blank}
				continue
			}

			row.Cells[i] = Cell{Value: quantity}
			row.Total = row.Total.Add(quantity)
			p.ColumnTotals[i] = p.ColumnTotals[i].Add(quantity)
		}

		p.Rows = append(p.Rows, row)
	}

	for _, total := range p.ColumnTotals {
		p.GrandTotal = p.GrandTotal.Add(total)
	}

	return p
}

// Totals returns the column totals keyed by member name.
func (p Pivot) Totals() map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(p.Members))
	for i, name := range p.Members {
		totals[name] = p.ColumnTotals[i]
	}
	return totals
}

// Table returns the rows as objects keyed by member name.
func (p Pivot) Table() []TableRow {
	rows := make([]TableRow, len(p.Rows))
	for i, row := range p.Rows {
		rows[i] = TableRow{members: p.Members, row: row}
	}
	return rows
}

// TableRow is a pivot row rendered as
// {"date": "2024-05-01", "<member>": "1.5", ..., "total": "3"}.
//
// Keys keep the column order. Quantities are strings like every other decimal
// in the API. Blank cells are rendered as "".
type TableRow struct {
	members []string
	row     PivotRow
}

func (t TableRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"date":`)

	date, err := json.Marshal(t.row.Date)
	if err != nil {
		return nil, err
	}
	buf.Write(date)

	for i, name := range t.members {
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}

		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')

		cell := t.row.Cells[i]
		if cell.Blank {
			buf.WriteString(`""`)
		} else {
			writeDecimal(&buf, cell.Value)
		}
	}

	buf.WriteString(`,"total":`)
	writeDecimal(&buf, t.row.Total)
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// writeDecimal writes d quoted, the way decimal.Decimal marshals itself.
func writeDecimal(buf *bytes.Buffer, d decimal.Decimal) {
	buf.WriteByte('"')
	buf.WriteString(d.String())
	buf.WriteByte('"')
}
