package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/mess-ledger/backend/pkg/controllers/v1"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/mess-ledger/backend/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestMembersOptions() {
	m := suite.createTestMember("Rahim")

	tests := []struct {
		name   string
		path   string
		status int
		allow  string
	}{
		{"List", "/members", http.StatusNoContent, "OPTIONS, GET, POST"},
		{"Detail", fmt.Sprintf("/members/%s", m.ID), http.StatusNoContent, "OPTIONS, GET, PATCH, DELETE"},
		{"Balance", fmt.Sprintf("/members/%s/balance", m.ID), http.StatusNoContent, "OPTIONS, GET"},
		{"Invalid ID", "/members/not-a-uuid", http.StatusBadRequest, ""},
		{"Not found", "/members/d3bc3b8a-3a18-4f54-8a0a-4d1e4c1a9a37", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(http.MethodOptions, tt.path, "")
			test.AssertHTTPStatus(t, &r, tt.status)
			assert.Equal(t, tt.allow, r.Header().Get("allow"))
		})
	}
}

func (suite *TestSuiteStandard) TestMembersCreate() {
	m := suite.createTestMember("  Rahim ")

	suite.Assert().Equal("Rahim", m.Name)
	suite.Assert().True(m.Active)
	suite.Assert().Equal(fmt.Sprintf("%s/v1/members/%s", test.BaseURL(), m.ID), m.Links.Self)
	suite.Assert().Equal(fmt.Sprintf("%s/v1/members/%s/balance", test.BaseURL(), m.ID), m.Links.Balance)
}

func (suite *TestSuiteStandard) TestMembersCreateFails() {
	suite.createTestMember("Rahim")

	tests := []struct {
		name   string
		body   any
		status int
		field  string
	}{
		{"Empty body", "", http.StatusBadRequest, ""},
		{"Broken body", `{ "name": 2 }`, http.StatusBadRequest, ""},
		{"No name", map[string]any{"active": true}, http.StatusBadRequest, "name"},
		{"Reserved name", map[string]any{"name": "Total"}, http.StatusBadRequest, "name"},
		{"Duplicate name", map[string]any{"name": "Rahim"}, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(http.MethodPost, "/members", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)

			e := test.DecodeError(t, &r)
			assert.NotEmpty(t, e.Error)
			if tt.field != "" {
				assert.Contains(t, e.Fields, tt.field)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestMembersList() {
	suite.createTestMember("Rahim")
	karim := suite.createTestMember("Karim")

	r := suite.request(http.MethodPatch, fmt.Sprintf("/members/%s", karim.ID), map[string]any{"active": false})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	tests := []struct {
		query  string
		status int
		names  []string
	}{
		{"", http.StatusOK, []string{"Karim", "Rahim"}},
		{"?active=true", http.StatusOK, []string{"Rahim"}},
		{"?active=false", http.StatusOK, []string{"Karim"}},
		{"?active=maybe", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		suite.T().Run(tt.query, func(t *testing.T) {
			r := suite.request(http.MethodGet, "/members"+tt.query, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status != http.StatusOK {
				return
			}

			var response v1.MemberListResponse
			test.DecodeResponse(t, &r, &response)

			names := make([]string, 0, len(response.Data))
			for _, m := range response.Data {
				names = append(names, m.Name)
			}
			assert.Equal(t, tt.names, names)
		})
	}
}

func (suite *TestSuiteStandard) TestMembersListEmpty() {
	r := suite.request(http.MethodGet, "/members", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	suite.Assert().JSONEq(`{"data": []}`, r.Body.String())
}

func (suite *TestSuiteStandard) TestMembersGet() {
	m := suite.createTestMember("Rahim")

	r := suite.request(http.MethodGet, fmt.Sprintf("/members/%s", m.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.MemberResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(m.ID, response.Data.ID)

	r = suite.request(http.MethodGet, "/members/d3bc3b8a-3a18-4f54-8a0a-4d1e4c1a9a37", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
	suite.Assert().Equal("there is no member matching your query", test.DecodeError(suite.T(), &r).Error)

	r = suite.request(http.MethodGet, "/members/42", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestMembersUpdate() {
	m := suite.createTestMember("Rahim")

	// Only the name is updated, the member stays active
	r := suite.request(http.MethodPatch, fmt.Sprintf("/members/%s", m.ID), `{ "name": "Rahim Uddin" }`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.MemberResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("Rahim Uddin", response.Data.Name)
	suite.Assert().True(response.Data.Active)

	r = suite.request(http.MethodPatch, fmt.Sprintf("/members/%s", m.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(http.MethodPatch, fmt.Sprintf("/members/%s", m.ID), `[1, 2]`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(http.MethodPatch, "/members/d3bc3b8a-3a18-4f54-8a0a-4d1e4c1a9a37", `{ "name": "Karim" }`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = suite.request(http.MethodPatch, fmt.Sprintf("/members/%s", m.ID), `{ "active": null }`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
	suite.Assert().Equal("active must be true or false", test.DecodeError(suite.T(), &r).Fields["active"])
}

func (suite *TestSuiteStandard) TestMembersDelete() {
	m := suite.createTestMember("Rahim")
	record := suite.saveRecord(models.KindMeal, m, "2024-05-01", "2")

	r := suite.request(http.MethodDelete, fmt.Sprintf("/members/%s", m.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = suite.request(http.MethodGet, fmt.Sprintf("/members/%s", m.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	// Records of the member are gone, too
	r = suite.request(http.MethodGet, fmt.Sprintf("/meals/%s", record.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = suite.request(http.MethodDelete, fmt.Sprintf("/members/%s", m.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestMembersBalance() {
	rahim := suite.createTestMember("Rahim")
	karim := suite.createTestMember("Karim")

	suite.saveRecord(models.KindMeal, rahim, "2024-05-01", "3")
	suite.saveRecord(models.KindMeal, karim, "2024-05-01", "1")
	suite.saveRecord(models.KindShoppingExpense, karim, "2024-05-01", "400")
	suite.saveRecord(models.KindDeposit, rahim, "2024-05-02", "1000")

	r := suite.request(http.MethodGet, fmt.Sprintf("/members/%s/balance?month=2024-05", rahim.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.MemberBalanceResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("100", response.Data.MealRate.String())
	suite.Assert().Equal("300", response.Data.MealCost.String())
	suite.Assert().Equal("700", response.Data.Balance.String())

	// Another month has nothing
	r = suite.request(http.MethodGet, fmt.Sprintf("/members/%s/balance?month=2024-04", rahim.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().True(response.Data.Balance.IsZero())
}

func (suite *TestSuiteStandard) TestMembersDatabaseError() {
	suite.CloseDB()

	r := suite.request(http.MethodGet, "/members", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusInternalServerError)
	suite.Assert().Contains(test.DecodeError(suite.T(), &r).Error, "An error occurred on the server")
}
