package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// BulkMealInput are the meal counts of many members for one day.
type BulkMealInput struct {
	Date  types.Date                      `json:"date" validate:"required,notfuture" example:"2024-05-04" swaggertype:"string"`
	Meals map[uuid.UUID]decimal.Decimal `json:"meals"` // Meal count by member ID. Zero counts are skipped.
}

// BulkResult reports the outcome of a bulk write.
type BulkResult struct {
	Imported int      `json:"imported" example:"4"`
	Errors   []string `json:"errors"`
}

// BulkMeals stores the meal counts of all members for the day.
//
// The request is validated as a whole and rejected if any count is invalid.
// All counts are stored in one transaction. Counts of zero do not create records.
func (s *Service) BulkMeals(ctx context.Context, in BulkMealInput) (BulkResult, error) {
	fields := map[string]string{}
	if err := s.validate.Struct(in); err != nil {
		collect(err, fields)
	}

	if len(in.Meals) == 0 {
		fields["meals"] = "meals is required"
	}

	// Sorted for deterministic processing
	ids := maps.Keys(in.Meals)
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})

	for _, id := range ids {
		field := fmt.Sprintf("meals.%s", id)
		if err := s.validate.Var(in.Meals[id], quantityRules[models.KindMeal]); err != nil {
			fields[field] = fmt.Sprintf("meal count for %s is not valid: must be between 0 and 10 in steps of 0.5", id)
			continue
		}

		if _, err := s.checkMember(ctx, id, false); err != nil {
			if v, ok := err.(ValidationError); ok {
				fields[field] = v.Fields["memberId"]
				continue
			}
			return BulkResult{}, err
		}
	}

	if len(fields) > 0 {
		return BulkResult{}, ValidationError{Fields: fields}
	}

	entries := make([]models.Entry, 0, len(ids))
	for _, id := range ids {
		count := in.Meals[id]
		if !count.IsPositive() {
			continue
		}

		entries = append(entries, models.Entry{
			MemberID: id,
			Date:     in.Date.Time(),
			Quantity: count,
		})
	}

	result := BulkResult{Errors: []string{}}
	if len(entries) == 0 {
		return result, nil
	}

	if err := s.store.UpsertMany(ctx, models.KindMeal, entries); err != nil {
		return result, err
	}
	result.Imported = len(entries)

	if err := s.invalidate(ctx, in.Date.Month()); err != nil {
		return result, err
	}

	return result, nil
}
