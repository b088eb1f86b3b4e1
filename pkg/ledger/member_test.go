package ledger_test

import (
	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/ledger"
	"github.com/mess-ledger/backend/pkg/models"
)

func (suite *TestSuiteStandard) TestCreateMember() {
	m, err := suite.service.CreateMember(suite.ctx, ledger.MemberInput{Name: "  Rahim "})
	suite.Require().Nil(err)
	suite.Assert().Equal("Rahim", m.Name)
	suite.Assert().True(m.Active, "new members are active by default")

	inactive := false
	m, err = suite.service.CreateMember(suite.ctx, ledger.MemberInput{Name: "Karim", Active: &inactive})
	suite.Require().Nil(err)
	suite.Assert().False(m.Active)
}

func (suite *TestSuiteStandard) TestCreateMemberValidation() {
	tests := []struct {
		name  string
		input string
		err   string
	}{
		{"Empty", "", "name is required"},
		{"Reserved date column", "Date", "name cannot be one of date, total"},
		{"Reserved total column", " total ", "name cannot be one of date, total"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.CreateMember(suite.ctx, ledger.MemberInput{Name: tt.input})

			var v ledger.ValidationError
			suite.Require().ErrorAs(err, &v)
			suite.Assert().Equal(tt.err, v.Fields["name"])
		})
	}
}

func (suite *TestSuiteStandard) TestCreateMemberDuplicate() {
	suite.createTestMember("Rahim")

	_, err := suite.service.CreateMember(suite.ctx, ledger.MemberInput{Name: "Rahim"})
	suite.Assert().ErrorIs(err, models.ErrMemberNameNotUnique)
}

func (suite *TestSuiteStandard) TestMembers() {
	suite.createTestMember("Rahim")
	suite.createTestMember("Abdul")
	karim := suite.createTestMember("Karim")

	inactive := false
	_, err := suite.service.UpdateMember(suite.ctx, karim.ID, ledger.MemberInput{Active: &inactive}, []string{"active"})
	suite.Require().Nil(err)

	all, err := suite.service.Members(suite.ctx, nil)
	suite.Require().Nil(err)
	suite.Require().Len(all, 3)
	suite.Assert().Equal("Abdul", all[0].Name, "members are ordered by name")

	active := true
	roster, err := suite.service.Members(suite.ctx, &active)
	suite.Require().Nil(err)
	suite.Assert().Len(roster, 2)

	inactiveMembers, err := suite.service.Members(suite.ctx, &inactive)
	suite.Require().Nil(err)
	suite.Require().Len(inactiveMembers, 1)
	suite.Assert().Equal("Karim", inactiveMembers[0].Name)
}

func (suite *TestSuiteStandard) TestUpdateMemberName() {
	m := suite.createTestMember("Rahim")

	updated, err := suite.service.UpdateMember(suite.ctx, m.ID, ledger.MemberInput{Name: "Rahim Uddin"}, []string{"name"})
	suite.Require().Nil(err)
	suite.Assert().Equal("Rahim Uddin", updated.Name)
	suite.Assert().True(updated.Active, "fields not named must not change")

	fetched, err := suite.service.Member(suite.ctx, m.ID)
	suite.Require().Nil(err)
	suite.Assert().Equal("Rahim Uddin", fetched.Name)
}

func (suite *TestSuiteStandard) TestUpdateMemberNullActive() {
	m := suite.createTestMember("Rahim")

	_, err := suite.service.UpdateMember(suite.ctx, m.ID, ledger.MemberInput{Name: ""}, []string{"name", "active"})
	var v ledger.ValidationError
	suite.Require().ErrorAs(err, &v)
	suite.Assert().Equal("active must be true or false", v.Fields["active"])
	suite.Assert().Contains(v.Fields, "name", "all problems are reported")

	fetched, err := suite.service.Member(suite.ctx, m.ID)
	suite.Require().Nil(err)
	suite.Assert().True(fetched.Active)
	suite.Assert().Equal("Rahim", fetched.Name)
}

func (suite *TestSuiteStandard) TestUpdateMemberFlushesCache() {
	m := suite.createTestMember("Rahim")
	suite.save(models.KindMeal, m, types.NewDate(2024, 3, 4), "2")

	_, err := suite.service.MonthlyPivot(suite.ctx, models.KindMeal, "2024-03")
	suite.Require().Nil(err)
	suite.Assert().True(suite.cachedMonth("pivot:meals", types.NewMonth(2024, 3)))

	_, err = suite.service.UpdateMember(suite.ctx, m.ID, ledger.MemberInput{Name: "Rahim Uddin"}, []string{"name"})
	suite.Require().Nil(err)
	suite.Assert().Equal(0, suite.cache.Len())

	p, err := suite.service.MonthlyPivot(suite.ctx, models.KindMeal, "2024-03")
	suite.Require().Nil(err)
	suite.Assert().Equal([]string{"Rahim Uddin"}, p.Members)
}

func (suite *TestSuiteStandard) TestUpdateMemberNotFound() {
	_, err := suite.service.UpdateMember(suite.ctx, uuidFor("missing"), ledger.MemberInput{Name: "X"}, []string{"name"})
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestDeleteMemberDeletesRecords() {
	m := suite.createTestMember("Rahim")
	other := suite.createTestMember("Karim")

	for _, kind := range models.Kinds {
		suite.save(kind, m, types.NewDate(2024, 5, 1), "1")
	}
	suite.save(models.KindMeal, other, types.NewDate(2024, 5, 1), "1")

	suite.Require().Nil(suite.service.DeleteMember(suite.ctx, m.ID))

	_, err := suite.service.Member(suite.ctx, m.ID)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	for _, kind := range models.Kinds {
		list, err := suite.service.Records(suite.ctx, kind, "2024-05")
		suite.Require().Nil(err)
		for _, r := range list.Records {
			suite.Assert().NotEqual(m.ID, r.MemberID, "record of deleted member in %s", kind)
		}
	}

	meals, err := suite.service.Records(suite.ctx, models.KindMeal, "2024-05")
	suite.Require().Nil(err)
	suite.Assert().Len(meals.Records, 1)

	err = suite.service.DeleteMember(suite.ctx, m.ID)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}
