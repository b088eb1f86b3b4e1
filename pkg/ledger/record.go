package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/shopspring/decimal"
)

// Record is a record of any store.
type Record struct {
	ID          uuid.UUID       `json:"id" example:"9b5c2f8e-8f0e-4a43-9d2e-3f0c6a9b1c11"`
	MemberID    uuid.UUID       `json:"memberId" example:"5f7cb04b-1fbd-4a65-a3bd-5e0d5e1dd6a4"`
	MemberName  string          `json:"memberName" example:"Rahim"`
	Date        types.Date      `json:"date" example:"2024-05-04" swaggertype:"string"`
	Quantity    decimal.Decimal `json:"quantity" example:"2.5"`
	Description string          `json:"description,omitempty" example:"Rice and lentils"`
	CreatedAt   time.Time       `json:"createdAt" example:"2024-05-04T19:28:44.491514Z"`
	UpdatedAt   time.Time       `json:"updatedAt" example:"2024-05-04T20:14:01.048145Z"`
}

// RecordList are the records of a store in a month.
type RecordList struct {
	Month   types.Month `json:"month" example:"2024-05" swaggertype:"string"`
	Records []Record    `json:"records"`
	Stats   RecordStats `json:"stats"`
}

func newRecord(kind models.Kind, e models.Entry, memberName string) Record {
	r := Record{
		ID:         e.ID,
		MemberID:   e.MemberID,
		MemberName: memberName,
		Date:       types.DateOf(e.Date),
		Quantity:   e.Quantity,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}

	if kind.HasDescription() {
		r.Description = e.Description
	}

	return r
}
