package v1

import (
	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/ledger"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/shopspring/decimal"
)

type RecordResponse struct {
	Data ledger.Record `json:"data"` // Data for the record
}

type RecordListResponse struct {
	Data ledger.RecordList `json:"data"` // Records of the month with their statistics
}

// Pivot is the pivot of a record store with one object per day.
type Pivot struct {
	Kind       models.Kind                `json:"kind" example:"meals" swaggertype:"string"`
	Month      types.Month                `json:"month" example:"2024-05" swaggertype:"string"`
	Members    []string                   `json:"members" example:"Rahim,Karim"`                                // Column names in order
	Rows       []ledger.TableRow          `json:"rows" swaggertype:"array,object"`                               // {"date": "2024-05-01", "<member>": "1.5", "total": "3"} for every day of the month
	Totals     map[string]decimal.Decimal `json:"totals" swaggertype:"object,string" example:"Rahim:31.5,Karim:28"` // Totals by member name
	GrandTotal decimal.Decimal            `json:"grandTotal" example:"59.5"`
}

type PivotResponse struct {
	Data Pivot `json:"data"` // Pivot of the month
}

func newPivot(p ledger.Pivot) Pivot {
	return Pivot{
		Kind:       p.Kind,
		Month:      p.Month,
		Members:    p.Members,
		Rows:       p.Table(),
		Totals:     p.Totals(),
		GrandTotal: p.GrandTotal,
	}
}

type BulkResponse struct {
	Data ledger.BulkResult `json:"data"` // Number of imported records and errors per row
}
