package v1_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	v1 "github.com/mess-ledger/backend/pkg/controllers/v1"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/mess-ledger/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func (suite *TestSuiteStandard) TestRecordsOptions() {
	m := suite.createTestMember("Rahim")
	meal := suite.saveRecord(models.KindMeal, m, "2024-05-01", "2")

	tests := []struct {
		name   string
		path   string
		status int
		allow  string
	}{
		{"List", "/meals", http.StatusNoContent, "OPTIONS, GET, POST"},
		{"Detail", fmt.Sprintf("/meals/%s", meal.ID), http.StatusNoContent, "OPTIONS, GET, PATCH, DELETE"},
		{"Other store", fmt.Sprintf("/deposits/%s", meal.ID), http.StatusNotFound, ""},
		{"Pivot", "/utilities/pivot", http.StatusNoContent, "OPTIONS, GET"},
		{"Bulk", "/meals/bulk", http.StatusNoContent, "OPTIONS, POST"},
		{"Import", "/deposits/import", http.StatusNoContent, "OPTIONS, POST"},
		{"Template", "/deposits/import/template", http.StatusNoContent, "OPTIONS, GET"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(http.MethodOptions, tt.path, "")
			test.AssertHTTPStatus(t, &r, tt.status)
			assert.Equal(t, tt.allow, r.Header().Get("allow"))
		})
	}
}

func (suite *TestSuiteStandard) TestRecordsSaveIsUpsert() {
	m := suite.createTestMember("Rahim")

	first := suite.saveRecord(models.KindDeposit, m, "2024-05-04", "100")
	second := suite.saveRecord(models.KindDeposit, m, "2024-05-04", "150")

	suite.Assert().Equal(first.ID, second.ID)
	suite.Assert().Equal("150", second.Quantity.String())
	suite.Assert().Equal("Rahim", second.MemberName)

	r := suite.request(http.MethodGet, "/deposits?month=2024-05", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.RecordListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Len(response.Data.Records, 1)
	suite.Assert().Equal("150", response.Data.Stats.Total.String())
	suite.Assert().Equal("2024-05", response.Data.Month.String())
}

func (suite *TestSuiteStandard) TestRecordsSaveValidation() {
	m := suite.createTestMember("Rahim")

	tests := []struct {
		name  string
		kind  models.Kind
		body  string
		field string
	}{
		{"Future date", models.KindMeal, fmt.Sprintf(`{"memberId": "%s", "date": "2024-05-21", "quantity": "1"}`, m.ID), "date"},
		{"Too many meals", models.KindMeal, fmt.Sprintf(`{"memberId": "%s", "date": "2024-05-01", "quantity": "10.5"}`, m.ID), "quantity"},
		{"Half steps", models.KindMeal, fmt.Sprintf(`{"memberId": "%s", "date": "2024-05-01", "quantity": "1.25"}`, m.ID), "quantity"},
		{"Negative deposit", models.KindDeposit, fmt.Sprintf(`{"memberId": "%s", "date": "2024-05-01", "quantity": "-1"}`, m.ID), "quantity"},
		{"Cents", models.KindShoppingExpense, fmt.Sprintf(`{"memberId": "%s", "date": "2024-05-01", "quantity": "1.001"}`, m.ID), "quantity"},
		{"No member", models.KindUtility, `{"date": "2024-05-01", "quantity": "10"}`, "memberId"},
		{"Unknown member", models.KindUtility, `{"memberId": "d3bc3b8a-3a18-4f54-8a0a-4d1e4c1a9a37", "date": "2024-05-01", "quantity": "10"}`, "memberId"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(http.MethodPost, "/"+string(tt.kind), tt.body)
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
			assert.Contains(t, test.DecodeError(t, &r).Fields, tt.field)
		})
	}
}

func (suite *TestSuiteStandard) TestRecordsSaveBrokenDate() {
	m := suite.createTestMember("Rahim")

	r := suite.request(http.MethodPost, "/meals", fmt.Sprintf(`{"memberId": "%s", "date": "04.05.2024", "quantity": "1"}`, m.ID))
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
	suite.Assert().Contains(test.DecodeError(suite.T(), &r).Error, "parsing time")
}

func (suite *TestSuiteStandard) TestRecordsDescription() {
	m := suite.createTestMember("Rahim")

	r := suite.request(http.MethodPost, "/shopping-expenses", map[string]any{
		"memberId":    m.ID,
		"date":        "2024-05-03",
		"quantity":    "420.50",
		"description": "Rice, lentils",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.RecordResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("Rice, lentils", response.Data.Description)

	// Meals have no description
	r = suite.request(http.MethodPost, "/meals", map[string]any{
		"memberId":    m.ID,
		"date":        "2024-05-03",
		"quantity":    "2",
		"description": "Lunch",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Empty(response.Data.Description)
}

func (suite *TestSuiteStandard) TestRecordsGetUpdateDelete() {
	m := suite.createTestMember("Rahim")
	record := suite.saveRecord(models.KindUtility, m, "2024-05-02", "300")
	path := fmt.Sprintf("/utilities/%s", record.ID)

	r := suite.request(http.MethodGet, path, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	// Only the quantity changes
	r = suite.request(http.MethodPatch, path, `{"quantity": "350"}`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.RecordResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("350", response.Data.Quantity.String())
	suite.Assert().Equal("2024-05-02", response.Data.Date.String())

	r = suite.request(http.MethodPatch, path, `{"quantity": "0"}`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(http.MethodDelete, path, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = suite.request(http.MethodGet, path, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = suite.request(http.MethodDelete, path, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestRecordsUpdateConflict() {
	m := suite.createTestMember("Rahim")
	suite.saveRecord(models.KindMeal, m, "2024-05-01", "2")
	other := suite.saveRecord(models.KindMeal, m, "2024-05-02", "1")

	r := suite.request(http.MethodPatch, fmt.Sprintf("/meals/%s", other.ID), `{"date": "2024-05-01"}`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
	suite.Assert().Contains(test.DecodeError(suite.T(), &r).Error, models.ErrRecordNotUnique.Error())
}

func (suite *TestSuiteStandard) TestRecordsPivot() {
	rahim := suite.createTestMember("Rahim")
	karim := suite.createTestMember("Karim")

	suite.saveRecord(models.KindDeposit, rahim, "2024-02-03", "500")
	suite.saveRecord(models.KindDeposit, karim, "2024-02-29", "250")

	r := suite.request(http.MethodGet, "/deposits/pivot?month=2024-02", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response struct {
		Data struct {
			Kind       string              `json:"kind"`
			Month      string              `json:"month"`
			Members    []string            `json:"members"`
			Rows       []map[string]string `json:"rows"`
			Totals     map[string]string   `json:"totals"`
			GrandTotal string              `json:"grandTotal"`
		} `json:"data"`
	}
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Assert().Equal("deposits", response.Data.Kind)
	suite.Assert().Equal("2024-02", response.Data.Month)
	suite.Assert().Equal([]string{"Karim", "Rahim"}, response.Data.Members)
	suite.Require().Len(response.Data.Rows, 29)
	suite.Assert().Equal("2024-02-01", response.Data.Rows[0]["date"])

	// Deposits have blank cells for days without a deposit
	suite.Assert().Equal("", response.Data.Rows[0]["Rahim"])
	suite.Assert().Equal("500", response.Data.Rows[2]["Rahim"])
	suite.Assert().Equal("250", response.Data.Rows[28]["total"])
	suite.Assert().Equal("0", response.Data.Rows[0]["total"])

	suite.Assert().Equal(map[string]string{"Rahim": "500", "Karim": "250"}, response.Data.Totals)
	suite.Assert().Equal("750", response.Data.GrandTotal)
}

func (suite *TestSuiteStandard) TestRecordsExportCSV() {
	rahim := suite.createTestMember("Rahim")
	suite.saveRecord(models.KindMeal, rahim, "2024-04-01", "2")

	r := suite.request(http.MethodGet, "/meals/export?month=2024-04", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	suite.Assert().Equal("text/csv; charset=utf-8", r.Header().Get("Content-Type"))
	suite.Assert().Equal(`attachment; filename="meals-2024-04.csv"`, r.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(r.Body.String()), "\n")
	suite.Assert().Len(lines, 31)
	suite.Assert().Equal("Date,Rahim,Total", lines[0])
	suite.Assert().Equal("2024-04-01,2.0,2.0", lines[1])

	// Invalid months fall back to the current month
	r = suite.request(http.MethodGet, "/deposits/export?month=April", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	suite.Assert().Equal(`attachment; filename="deposits-2024-05.csv"`, r.Header().Get("Content-Disposition"))
}

func (suite *TestSuiteStandard) TestRecordsExportXLSX() {
	rahim := suite.createTestMember("Rahim")
	suite.saveRecord(models.KindShoppingExpense, rahim, "2024-05-10", "99.90")

	r := suite.request(http.MethodGet, "/shopping-expenses/export.xlsx?month=2024-05", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	suite.Assert().Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", r.Header().Get("Content-Type"))
	suite.Assert().Equal(`attachment; filename="shopping-expenses-2024-05.xlsx"`, r.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(r.Body.Bytes()))
	suite.Require().Nil(err)
	defer f.Close()

	suite.Assert().Equal([]string{"2024-05"}, f.GetSheetList())
}

func (suite *TestSuiteStandard) TestRecordsBulkMeals() {
	rahim := suite.createTestMember("Rahim")
	karim := suite.createTestMember("Karim")

	r := suite.request(http.MethodPost, "/meals/bulk", map[string]any{
		"date": "2024-05-05",
		"meals": map[string]string{
			rahim.ID.String(): "2.5",
			karim.ID.String(): "0",
		},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.BulkResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(1, response.Data.Imported)
	suite.Assert().Empty(response.Data.Errors)

	// One invalid count rejects the request
	r = suite.request(http.MethodPost, "/meals/bulk", map[string]any{
		"date": "2024-05-06",
		"meals": map[string]string{
			rahim.ID.String(): "2",
			karim.ID.String(): "11",
		},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
	suite.Assert().Contains(test.DecodeError(suite.T(), &r).Fields, "meals."+karim.ID.String())

	r = suite.request(http.MethodGet, "/meals?month=2024-05", "")
	var list v1.RecordListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Assert().Len(list.Data.Records, 1)

	// Only meals support bulk writes
	r = suite.request(http.MethodPost, "/deposits/bulk", `{}`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound, http.StatusMethodNotAllowed)
}

func (suite *TestSuiteStandard) TestRecordsImportDeposits() {
	rahim := suite.createTestMember("Rahim")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "deposits.csv")
	suite.Require().Nil(err)

	_, err = fmt.Fprintf(part, "user_id,date,amount\n%s,2024-05-01,500\n%s,2024-05-02,-5\n", rahim.ID, rahim.ID)
	suite.Require().Nil(err)
	suite.Require().Nil(writer.Close())

	r := suite.request(http.MethodPost, "/deposits/import", body, map[string]string{"Content-Type": writer.FormDataContentType()})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.BulkResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(1, response.Data.Imported)
	suite.Assert().Equal([]string{"Row 3: amount must be at least 0"}, response.Data.Errors)

	// No file
	r = suite.request(http.MethodPost, "/deposits/import", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestRecordsImportInvalidFile() {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "deposits.csv")
	suite.Require().Nil(err)

	_, err = part.Write([]byte("name,amount\nRahim,500\n"))
	suite.Require().Nil(err)
	suite.Require().Nil(writer.Close())

	r := suite.request(http.MethodPost, "/deposits/import", body, map[string]string{"Content-Type": writer.FormDataContentType()})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestRecordsImportTemplate() {
	rahim := suite.createTestMember("Rahim")

	r := suite.request(http.MethodGet, "/deposits/import/template", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	suite.Assert().Equal(`attachment; filename="deposits-template.csv"`, r.Header().Get("Content-Disposition"))
	suite.Assert().Equal(fmt.Sprintf("user_id,date,amount\n%s,2024-05-20,0.00\n", rahim.ID), r.Body.String())
}
