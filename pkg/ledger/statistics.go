package ledger

import (
	"github.com/google/uuid"
	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/shopspring/decimal"
)

// Statistics are key figures of a month.
type Statistics struct {
	Month                 types.Month       `json:"month" example:"2024-05"`
	TotalActiveMembers    int               `json:"totalActiveMembers" example:"6"`
	TotalMeals            decimal.Decimal   `json:"totalMeals" example:"312.5"`
	TotalDeposits         decimal.Decimal   `json:"totalDeposits" example:"42000"`
	TotalShoppingExpenses decimal.Decimal   `json:"totalShoppingExpenses" example:"31250"`
	AverageMealsPerDay    decimal.Decimal   `json:"averageMealsPerDay" example:"10.08"`
	MostActiveMember      *MostActiveMember `json:"mostActiveMember"` // The member with the most meals, null without active members
}

type MostActiveMember struct {
	Name       string          `json:"name" example:"Rahim"`
	TotalMeals decimal.Decimal `json:"totalMeals" example:"62"`
}

// RecordStats summarize the records of a store for a month.
type RecordStats struct {
	Total         decimal.Decimal `json:"total" example:"1250.5"`
	Count         int             `json:"count" example:"24"`
	ActiveMembers int             `json:"activeMembers" example:"5"` // Number of distinct members with at least one record
}

// BuildStatistics computes the statistics of the month from the records of the roster.
//
// Ties for the most active member go to the member first in roster order.
func BuildStatistics(month types.Month, members []models.Member, meals, deposits, shopping []models.Entry) Statistics {
	r := newRoster(members)

	s := Statistics{
		Month:                 month,
		TotalActiveMembers:    len(members),
		TotalMeals:            r.Sum(meals),
		TotalDeposits:         r.Sum(deposits),
		TotalShoppingExpenses: r.Sum(shopping),
		AverageMealsPerDay:    decimal.Zero,
	}

	if days := month.Days(); days > 0 {
		s.AverageMealsPerDay = s.TotalMeals.Div(decimal.NewFromInt(int64(days))).Round(2)
	}

	mealSums := SumByMember(meals)
	for _, member := range members {
		total := mealSums[member.ID]
		if s.MostActiveMember == nil || total.GreaterThan(s.MostActiveMember.TotalMeals) {
			s.MostActiveMember = &MostActiveMember{Name: member.Name, TotalMeals: total}
		}
	}

	return s
}

// Stats computes the record statistics of the records.
func Stats(records []models.Entry) RecordStats {
	members := make(map[uuid.UUID]struct{})
	total := decimal.Zero

	for _, record := range records {
		total = total.Add(record.Quantity)
		members[record.MemberID] = struct{}{}
	}

	return RecordStats{
		Total:         total,
		Count:         len(records),
		ActiveMembers: len(members),
	}
}
