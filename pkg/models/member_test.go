package models_test

import (
	"strings"

	"github.com/mess-ledger/backend/pkg/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestMemberTrimWhitespace() {
	name := "\t Karim   "
	member := suite.createTestMember(name)

	assert.Equal(suite.T(), strings.TrimSpace(name), member.Name)
}

func (suite *TestSuiteStandard) TestMemberNameUnique() {
	_ = suite.createTestMember("Rahim")

	duplicate := models.Member{MemberEditable: models.MemberEditable{Name: " Rahim "}}
	err := suite.db.Create(&duplicate).Error
	suite.Assert().ErrorIs(err, models.ErrMemberNameNotUnique)
}
