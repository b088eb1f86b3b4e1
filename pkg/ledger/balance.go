package ledger

import (
	"github.com/google/uuid"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/shopspring/decimal"
)

// UserSummary is the cost allocation and balance of one member for a month.
type UserSummary struct {
	ID           uuid.UUID       `json:"id" example:"5f7cb04b-1fbd-4a65-a3bd-5e0d5e1dd6a4"`
	Name         string          `json:"name" example:"Rahim"`
	TotalMeal    decimal.Decimal `json:"totalMeal" example:"40"`
	MealRate     decimal.Decimal `json:"mealRate" example:"12.5"`
	MealCost     decimal.Decimal `json:"mealCost" example:"500"`
	TotalUtility decimal.Decimal `json:"totalUtility" example:"0"`
	TotalCost    decimal.Decimal `json:"totalCost" example:"500"`
	TotalDeposit decimal.Decimal `json:"totalDeposit" example:"1000"`
	Balance      decimal.Decimal `json:"balance" example:"500"` // Positive when the member paid more than their cost
}

// MemberBalance computes the summary of one member from their totals and the
// mess-wide meal rate.
func MemberBalance(member models.Member, totalMeal, totalDeposit, totalUtility, mealRate decimal.Decimal) UserSummary {
	mealCost := totalMeal.Mul(mealRate).Round(2)
	totalCost := mealCost.Add(totalUtility)

	return UserSummary{
		ID:           member.ID,
		Name:         member.Name,
		TotalMeal:    totalMeal,
		MealRate:     mealRate.Round(2),
		MealCost:     mealCost,
		TotalUtility: totalUtility,
		TotalCost:    totalCost.Round(2),
		TotalDeposit: totalDeposit,
		Balance:      totalDeposit.Sub(totalCost).Round(2),
	}
}

// Balances computes the summary of every member, in the order of members.
//
// The meal rate is not recomputed per member.
func Balances(members []models.Member, meals, deposits, utilities []models.Entry, mealRate decimal.Decimal) []UserSummary {
	mealSums := SumByMember(meals)
	depositSums := SumByMember(deposits)
	utilitySums := SumByMember(utilities)

	summaries := make([]UserSummary, 0, len(members))
	for _, member := range members {
		summaries = append(summaries, MemberBalance(
			member,
			mealSums[member.ID],
			depositSums[member.ID],
			utilitySums[member.ID],
			mealRate,
		))
	}

	return summaries
}
