package ledger_test

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/ledger"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestBulkMeals() {
	a := suite.createTestMember("A")
	b := suite.createTestMember("B")
	c := suite.createTestMember("C")

	// An existing record is replaced
	suite.save(models.KindMeal, a, types.NewDate(2024, 5, 4), "1")

	result, err := suite.service.BulkMeals(suite.ctx, ledger.BulkMealInput{
		Date: types.NewDate(2024, 5, 4),
		Meals: map[uuid.UUID]decimal.Decimal{
			a.ID: decimal.NewFromInt(2),
			b.ID: decimal.Zero,
			c.ID: decimal.RequireFromString("1.5"),
		},
	})
	suite.Require().Nil(err)
	suite.Assert().Equal(2, result.Imported)
	suite.Assert().Empty(result.Errors)

	list, err := suite.service.Records(suite.ctx, models.KindMeal, "2024-05")
	suite.Require().Nil(err)
	suite.Require().Len(list.Records, 2, "zero counts must not create records")
	suite.Assert().Equal("3.5", list.Stats.Total.String())
}

func (suite *TestSuiteStandard) TestBulkMealsRejectsWholeRequest() {
	a := suite.createTestMember("A")
	b := suite.createTestMember("B")
	missing := uuidFor("missing")

	_, err := suite.service.BulkMeals(suite.ctx, ledger.BulkMealInput{
		Date: types.NewDate(2024, 5, 4),
		Meals: map[uuid.UUID]decimal.Decimal{
			a.ID:    decimal.NewFromInt(2),
			b.ID:    decimal.NewFromInt(11),
			missing: decimal.NewFromInt(1),
		},
	})

	var v ledger.ValidationError
	suite.Require().ErrorAs(err, &v)
	suite.Assert().Len(v.Fields, 2)
	suite.Assert().Contains(v.Fields[fmt.Sprintf("meals.%s", b.ID)], "must be between 0 and 10")
	suite.Assert().Equal("member does not exist", v.Fields[fmt.Sprintf("meals.%s", missing)])

	list, err := suite.service.Records(suite.ctx, models.KindMeal, "2024-05")
	suite.Require().Nil(err)
	suite.Assert().Empty(list.Records, "nothing is stored for a rejected request")
}

func (suite *TestSuiteStandard) TestBulkMealsValidation() {
	a := suite.createTestMember("A")

	_, err := suite.service.BulkMeals(suite.ctx, ledger.BulkMealInput{Date: types.NewDate(2024, 5, 4)})
	var v ledger.ValidationError
	suite.Require().ErrorAs(err, &v)
	suite.Assert().Equal("meals is required", v.Fields["meals"])

	_, err = suite.service.BulkMeals(suite.ctx, ledger.BulkMealInput{
		Date:  types.NewDate(2024, 5, 21),
		Meals: map[uuid.UUID]decimal.Decimal{a.ID: decimal.NewFromInt(1)},
	})
	suite.Require().ErrorAs(err, &v)
	suite.Assert().Equal("date cannot be in the future", v.Fields["date"])
}

func (suite *TestSuiteStandard) TestBulkMealsOnlyZeros() {
	a := suite.createTestMember("A")

	_, err := suite.service.MonthlySummary(suite.ctx, "2024-05")
	suite.Require().Nil(err)

	result, err := suite.service.BulkMeals(suite.ctx, ledger.BulkMealInput{
		Date:  types.NewDate(2024, 5, 4),
		Meals: map[uuid.UUID]decimal.Decimal{a.ID: decimal.Zero},
	})
	suite.Require().Nil(err)
	suite.Assert().Equal(0, result.Imported)
	suite.Assert().True(suite.cachedMonth("summary", types.NewMonth(2024, 5)), "nothing was written, nothing is invalidated")
}
