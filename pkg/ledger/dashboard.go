package ledger

import (
	"context"
	"time"

	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/cache"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Dashboard combines the summary and statistics of a month with display strings.
type Dashboard struct {
	Month         types.Month    `json:"month" example:"2024-05" swaggertype:"string"`
	PreviousMonth types.Month    `json:"previousMonth" example:"2024-04" swaggertype:"string"`
	NextMonth     types.Month    `json:"nextMonth" example:"2024-06" swaggertype:"string"`
	Summary       MonthlySummary `json:"summary"`
	Statistics    Statistics     `json:"statistics"`
	Display       Display        `json:"display"`
}

// Display are the key figures of a month formatted for the configured language.
type Display struct {
	FormattedMonth        string `json:"formattedMonth" example:"May 2024"`
	TotalMeals            string `json:"totalMeals" example:"312.5"`
	TotalDeposits         string `json:"totalDeposits" example:"42,000.00"`
	TotalShoppingExpenses string `json:"totalShoppingExpenses" example:"31,250.00"`
	TotalUtilities        string `json:"totalUtilities" example:"4,500.00"`
	MealRate              string `json:"mealRate" example:"100.00"`
	Balance               string `json:"balance" example:"6,250.00"`
}

// Dashboard returns the dashboard of the month.
func (s *Service) Dashboard(ctx context.Context, token string) (Dashboard, error) {
	month, _ := s.Resolve(token)

	return cached(ctx, s, cache.Key(reportDashboard, month), func() (Dashboard, error) {
		summary, err := s.MonthlySummary(ctx, month.String())
		if err != nil {
			return Dashboard{}, err
		}

		statistics, err := s.Statistics(ctx, month.String())
		if err != nil {
			return Dashboard{}, err
		}

		return Dashboard{
			Month:         month,
			PreviousMonth: month.AddDate(0, -1),
			NextMonth:     month.AddDate(0, 1),
			Summary:       summary,
			Statistics:    statistics,
			Display:       display(s.language, summary),
		}, nil
	})
}

// display formats the summary for the language. Money has two decimal places,
// meal counts one.
func display(tag language.Tag, s MonthlySummary) Display {
	p := message.NewPrinter(tag)

	money := func(d decimal.Decimal) string {
		return p.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
	}

	return Display{
		FormattedMonth:        time.Time(s.Month).Format("January 2006"),
		TotalMeals:            p.Sprint(number.Decimal(s.TotalMeals.InexactFloat64(), number.Scale(1))),
		TotalDeposits:         money(s.TotalDeposits),
		TotalShoppingExpenses: money(s.TotalShoppingExpenses),
		TotalUtilities:        money(s.TotalUtilities),
		MealRate:              money(s.MealRate),
		Balance:               money(s.Balance),
	}
}
