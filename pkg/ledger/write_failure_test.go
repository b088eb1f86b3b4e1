package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/ledger"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errConnectionLost = errors.New("connection lost")

// interceptStore wraps a Store to fail upserts or run code while a report is loaded.
type interceptStore struct {
	ledger.Store

	// upsertsLeft is the number of upserts that succeed, negative for no limit
	upsertsLeft int

	// onRecords runs before the records of the kind are queried
	onRecords func(kind models.Kind)
}

func (s *interceptStore) Upsert(ctx context.Context, kind models.Kind, e models.Entry) (models.Entry, error) {
	if s.upsertsLeft == 0 {
		return models.Entry{}, errConnectionLost
	}
	s.upsertsLeft--
	return s.Store.Upsert(ctx, kind, e)
}

func (s *interceptStore) Records(ctx context.Context, kind models.Kind, r types.DateRange) ([]models.Entry, error) {
	if s.onRecords != nil {
		s.onRecords(kind)
	}
	return s.Store.Records(ctx, kind, r)
}

func (suite *TestSuiteStandard) interceptedService(store *interceptStore) *ledger.Service {
	store.Store = ledger.NewGormStore(suite.db)
	return ledger.NewService(store, suite.cache, ledger.WithClock(func() time.Time { return now }))
}

func (suite *TestSuiteStandard) TestImportDepositsFailureInvalidatesStoredRows() {
	a := suite.createTestMember("A")
	b := suite.createTestMember("B")
	service := suite.interceptedService(&interceptStore{upsertsLeft: 1})
	may := types.NewMonth(2024, 5)

	before, err := service.MonthlySummary(suite.ctx, "2024-05")
	suite.Require().Nil(err)
	suite.Require().True(before.TotalDeposits.IsZero())
	suite.Require().True(suite.cachedMonth("summary", may))

	file := strings.Join([]string{
		"user_id,date,amount",
		fmt.Sprintf("%s,2024-05-01,100", a.ID),
		fmt.Sprintf("%s,2024-05-02,50", b.ID),
	}, "\n")

	result, err := service.ImportDeposits(suite.ctx, strings.NewReader(file))
	suite.Assert().ErrorIs(err, errConnectionLost)
	suite.Assert().Equal(1, result.Imported)
	suite.Assert().False(suite.cachedMonth("summary", may), "the first row is stored, the month must be invalidated")

	after, err := service.MonthlySummary(suite.ctx, "2024-05")
	suite.Require().Nil(err)
	suite.Assert().Equal("100", after.TotalDeposits.String())
}

func (suite *TestSuiteStandard) TestImportDepositsFailureOnFirstRowKeepsCache() {
	a := suite.createTestMember("A")
	service := suite.interceptedService(&interceptStore{upsertsLeft: 0})

	_, err := service.MonthlySummary(suite.ctx, "2024-05")
	suite.Require().Nil(err)

	file := fmt.Sprintf("user_id,date,amount\n%s,2024-05-01,100", a.ID)
	result, err := service.ImportDeposits(suite.ctx, strings.NewReader(file))
	suite.Assert().ErrorIs(err, errConnectionLost)
	suite.Assert().Equal(0, result.Imported)
	suite.Assert().True(suite.cachedMonth("summary", types.NewMonth(2024, 5)))
}

func (suite *TestSuiteStandard) TestBulkMealsStoresNothingOnFailure() {
	a := suite.createTestMember("A")
	b := suite.createTestMember("B")
	suite.save(models.KindMeal, a, types.NewDate(2024, 5, 4), "1")

	summary, err := suite.service.MonthlySummary(suite.ctx, "2024-05")
	suite.Require().Nil(err)
	suite.Require().Equal("1", summary.TotalMeals.String())

	// The second meal written fails
	creates := 0
	err = suite.db.Callback().Create().Before("gorm:create").Register("test:fail_second_meal", func(tx *gorm.DB) {
		if tx.Statement.Table != models.KindMeal.Table() {
			return
		}
		creates++
		if creates == 2 {
			_ = tx.AddError(errConnectionLost)
		}
	})
	suite.Require().Nil(err)

	_, err = suite.service.BulkMeals(suite.ctx, ledger.BulkMealInput{
		Date: types.NewDate(2024, 5, 4),
		Meals: map[uuid.UUID]decimal.Decimal{
			a.ID: decimal.NewFromInt(3),
			b.ID: decimal.NewFromInt(2),
		},
	})
	suite.Require().ErrorIs(err, errConnectionLost)
	suite.Assert().Equal(2, creates)

	list, err := suite.service.Records(suite.ctx, models.KindMeal, "2024-05")
	suite.Require().Nil(err)
	suite.Require().Len(list.Records, 1, "no meal of the request is stored")
	suite.Assert().Equal("1", list.Records[0].Quantity.String())

	suite.Assert().True(suite.cachedMonth("summary", types.NewMonth(2024, 5)), "nothing was committed, nothing is invalidated")
}

func (suite *TestSuiteStandard) TestReportBuiltDuringWriteIsNotCached() {
	a := suite.createTestMember("A")
	may := types.NewMonth(2024, 5)

	var service *ledger.Service
	store := &interceptStore{upsertsLeft: -1}

	// A meal is written after the meals of the month have been loaded
	written := false
	store.onRecords = func(kind models.Kind) {
		if kind != models.KindUtility || written {
			return
		}
		written = true

		_, err := service.Save(suite.ctx, models.KindMeal, ledger.RecordInput{
			MemberID: a.ID,
			Date:     types.NewDate(2024, 5, 4),
			Quantity: decimal.NewFromInt(2),
		})
		suite.Require().Nil(err)
	}
	service = suite.interceptedService(store)

	stale, err := service.MonthlySummary(suite.ctx, "2024-05")
	suite.Require().Nil(err)
	suite.Require().True(written)
	suite.Assert().True(stale.TotalMeals.IsZero())
	suite.Assert().False(suite.cachedMonth("summary", may), "a report older than the write must not be cached")

	fresh, err := service.MonthlySummary(suite.ctx, "2024-05")
	suite.Require().Nil(err)
	suite.Assert().Equal("2", fresh.TotalMeals.String())
	suite.Assert().True(suite.cachedMonth("summary", may))
}
