package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/shopspring/decimal"
)

// MonthlySummary are the totals of a month and the balances of all roster members.
type MonthlySummary struct {
	Month                 types.Month     `json:"month" example:"2024-05"`
	TotalMeals            decimal.Decimal `json:"totalMeals" example:"312.5"`
	TotalDeposits         decimal.Decimal `json:"totalDeposits" example:"42000"`
	TotalShoppingExpenses decimal.Decimal `json:"totalShoppingExpenses" example:"31250"`
	TotalUtilities        decimal.Decimal `json:"totalUtilities" example:"4500"`
	MealRate              decimal.Decimal `json:"mealRate" example:"100"`   // Shopping expenses per meal, pooled over all members
	MealCost              decimal.Decimal `json:"mealCost" example:"31250"` // Total meals × meal rate
	Balance               decimal.Decimal `json:"balance" example:"6250"`   // Deposits minus shopping expenses and utilities
	Users                 []UserSummary   `json:"users"`
}

// roster is the set of members taking part in a calculation.
type roster map[uuid.UUID]struct{}

func newRoster(members []models.Member) roster {
	r := make(roster, len(members))
	for _, m := range members {
		r[m.ID] = struct{}{}
	}
	return r
}

// Sum returns the sum of all quantities of records by members on the roster.
func (r roster) Sum(records []models.Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, record := range records {
		if _, ok := r[record.MemberID]; ok {
			sum = sum.Add(record.Quantity)
		}
	}
	return sum
}

// SumByMember returns the sum of quantities per member.
func SumByMember(records []models.Entry) map[uuid.UUID]decimal.Decimal {
	sums := make(map[uuid.UUID]decimal.Decimal)
	for _, record := range records {
		sums[record.MemberID] = sums[record.MemberID].Add(record.Quantity)
	}
	return sums
}

// MealRate is the cost of a single meal: shopping expenses divided by the number of meals.
//
// Without meals, the rate is zero.
func MealRate(shoppingExpenses, meals decimal.Decimal) decimal.Decimal {
	if !meals.IsPositive() {
		return decimal.Zero
	}
	return shoppingExpenses.Div(meals)
}

// Summarize computes the monthly summary from the records of all stores for the month.
//
// Only records of members on the roster are counted, so the per-user totals always add
// up to the monthly totals.
func Summarize(month types.Month, members []models.Member, meals, deposits, shopping, utilities []models.Entry) MonthlySummary {
	r := newRoster(members)

	s := MonthlySummary{
		Month:                 month,
		TotalMeals:            r.Sum(meals),
		TotalDeposits:         r.Sum(deposits),
		TotalShoppingExpenses: r.Sum(shopping),
		TotalUtilities:        r.Sum(utilities),
	}

	rate := MealRate(s.TotalShoppingExpenses, s.TotalMeals)
	s.MealRate = rate.Round(2)
	s.MealCost = s.TotalMeals.Mul(rate).Round(2)
	s.Balance = s.TotalDeposits.Sub(s.TotalShoppingExpenses).Sub(s.TotalUtilities).Round(2)
	s.Users = Balances(members, meals, deposits, utilities, rate)

	return s
}

// Consistent verifies that the per-user totals add up to the monthly totals.
func (s MonthlySummary) Consistent() error {
	meals, deposits, utilities := decimal.Zero, decimal.Zero, decimal.Zero
	for _, u := range s.Users {
		meals = meals.Add(u.TotalMeal)
		deposits = deposits.Add(u.TotalDeposit)
		utilities = utilities.Add(u.TotalUtility)
	}

	if !meals.Equal(s.TotalMeals) {
		return fmt.Errorf("%w: meals of all users sum up to %s, total is %s", ErrInconsistent, meals, s.TotalMeals)
	}

	if !deposits.Equal(s.TotalDeposits) {
		return fmt.Errorf("%w: deposits of all users sum up to %s, total is %s", ErrInconsistent, deposits, s.TotalDeposits)
	}

	if !utilities.Equal(s.TotalUtilities) {
		return fmt.Errorf("%w: utilities of all users sum up to %s, total is %s", ErrInconsistent, utilities, s.TotalUtilities)
	}

	return nil
}
