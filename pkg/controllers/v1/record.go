package v1

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mess-ledger/backend/pkg/httperrors"
	"github.com/mess-ledger/backend/pkg/httputil"
	"github.com/mess-ledger/backend/pkg/ledger"
	"github.com/mess-ledger/backend/pkg/models"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// recordController serves the routes of one record store.
type recordController struct {
	Controller
	kind models.Kind
}

// RegisterRecordRoutes registers the routes for the records of a store with
// the RouterGroup that is passed.
func (co Controller) RegisterRecordRoutes(r *gin.RouterGroup, kind models.Kind) {
	rc := recordController{Controller: co, kind: kind}

	// Root group
	{
		r.OPTIONS("", rc.OptionsRecordList)
		r.GET("", rc.GetRecords)
		r.POST("", rc.SaveRecord)
	}

	// Reports of the month
	{
		r.OPTIONS("/pivot", rc.OptionsGet)
		r.GET("/pivot", rc.GetPivot)
		r.OPTIONS("/export", rc.OptionsGet)
		r.GET("/export", rc.ExportCSV)
		r.OPTIONS("/export.xlsx", rc.OptionsGet)
		r.GET("/export.xlsx", rc.ExportXLSX)
	}

	switch kind {
	case models.KindMeal:
		r.OPTIONS("/bulk", rc.OptionsPost)
		r.POST("/bulk", rc.BulkMeals)
	case models.KindDeposit:
		r.OPTIONS("/import", rc.OptionsPost)
		r.POST("/import", rc.ImportDeposits)
		r.OPTIONS("/import/template", rc.OptionsGet)
		r.GET("/import/template", rc.ImportTemplate)
	}

	// Record with ID
	{
		r.OPTIONS("/:id", rc.OptionsRecordDetail)
		r.GET("/:id", rc.GetRecord)
		r.PATCH("/:id", rc.UpdateRecord)
		r.DELETE("/:id", rc.DeleteRecord)
	}
}

func (rc recordController) OptionsGet(c *gin.Context) {
	httputil.OptionsGet(c)
}

func (rc recordController) OptionsPost(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Records
// @Success		204
// @Param			kind	path	string	true	"Record store"	Enums(meals, deposits, shopping-expenses, utilities)
// @Router			/v1/{kind} [options]
func (rc recordController) OptionsRecordList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Records
// @Success		204
// @Failure		400		{object}	httperrors.HTTPError
// @Failure		404		{object}	httperrors.HTTPError
// @Failure		500		{object}	httperrors.HTTPError
// @Param			kind	path		string	true	"Record store"	Enums(meals, deposits, shopping-expenses, utilities)
// @Param			id		path		string	true	"ID formatted as string"
// @Router			/v1/{kind}/{id} [options]
func (rc recordController) OptionsRecordDetail(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	_, err := rc.Ledger.Record(c.Request.Context(), rc.kind, id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		List records
// @Description	Returns the records of the month, oldest first, with statistics. Invalid months fall back to the current month.
// @Tags			Records
// @Produce		json
// @Success		200		{object}	RecordListResponse
// @Failure		500		{object}	httperrors.HTTPError
// @Param			kind	path		string	true	"Record store"	Enums(meals, deposits, shopping-expenses, utilities)
// @Param			month	query		string	false	"Month in YYYY-MM format"
// @Router			/v1/{kind} [get]
func (rc recordController) GetRecords(c *gin.Context) {
	records, err := rc.Ledger.Records(c.Request.Context(), rc.kind, c.Query("month"))
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, RecordListResponse{Data: records})
}

// @Summary		Save record
// @Description	Saves the record of a member for a day. An existing record for the same member and day is overwritten.
// @Tags			Records
// @Accept			json
// @Produce		json
// @Success		200		{object}	RecordResponse
// @Failure		400		{object}	httperrors.HTTPError
// @Failure		404		{object}	httperrors.HTTPError
// @Failure		500		{object}	httperrors.HTTPError
// @Param			kind	path		string				true	"Record store"	Enums(meals, deposits, shopping-expenses, utilities)
// @Param			record	body		ledger.RecordInput	true	"Record"
// @Router			/v1/{kind} [post]
func (rc recordController) SaveRecord(c *gin.Context) {
	var input ledger.RecordInput
	if err := httputil.BindData(c, &input); err != nil {
		httperrors.Handler(c, err)
		return
	}

	record, err := rc.Ledger.Save(c.Request.Context(), rc.kind, input)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, RecordResponse{Data: record})
}

// @Summary		Get record
// @Description	Returns a specific record
// @Tags			Records
// @Produce		json
// @Success		200		{object}	RecordResponse
// @Failure		400		{object}	httperrors.HTTPError
// @Failure		404		{object}	httperrors.HTTPError
// @Failure		500		{object}	httperrors.HTTPError
// @Param			kind	path		string	true	"Record store"	Enums(meals, deposits, shopping-expenses, utilities)
// @Param			id		path		string	true	"ID formatted as string"
// @Router			/v1/{kind}/{id} [get]
func (rc recordController) GetRecord(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	record, err := rc.Ledger.Record(c.Request.Context(), rc.kind, id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, RecordResponse{Data: record})
}

// @Summary		Update record
// @Description	Updates a record. Only values to be updated need to be specified.
// @Tags			Records
// @Accept			json
// @Produce		json
// @Success		200		{object}	RecordResponse
// @Failure		400		{object}	httperrors.HTTPError
// @Failure		404		{object}	httperrors.HTTPError
// @Failure		500		{object}	httperrors.HTTPError
// @Param			kind	path		string				true	"Record store"	Enums(meals, deposits, shopping-expenses, utilities)
// @Param			id		path		string				true	"ID formatted as string"
// @Param			record	body		ledger.RecordInput	true	"Record"
// @Router			/v1/{kind}/{id} [patch]
func (rc recordController) UpdateRecord(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	fields, err := httputil.BodyFields(c)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	var input ledger.RecordInput
	if err := httputil.BindData(c, &input); err != nil {
		httperrors.Handler(c, err)
		return
	}

	record, err := rc.Ledger.Update(c.Request.Context(), rc.kind, id, input, fields)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, RecordResponse{Data: record})
}

// @Summary		Delete record
// @Description	Deletes a record
// @Tags			Records
// @Success		204
// @Failure		400		{object}	httperrors.HTTPError
// @Failure		404		{object}	httperrors.HTTPError
// @Failure		500		{object}	httperrors.HTTPError
// @Param			kind	path		string	true	"Record store"	Enums(meals, deposits, shopping-expenses, utilities)
// @Param			id		path		string	true	"ID formatted as string"
// @Router			/v1/{kind}/{id} [delete]
func (rc recordController) DeleteRecord(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	if err := rc.Ledger.Delete(c.Request.Context(), rc.kind, id); err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary		Get pivot
// @Description	Returns the day × member pivot of the month for all active members
// @Tags			Records
// @Produce		json
// @Success		200		{object}	PivotResponse
// @Failure		500		{object}	httperrors.HTTPError
// @Param			kind	path		string	true	"Record store"	Enums(meals, deposits, shopping-expenses, utilities)
// @Param			month	query		string	false	"Month in YYYY-MM format"
// @Router			/v1/{kind}/pivot [get]
func (rc recordController) GetPivot(c *gin.Context) {
	pivot, err := rc.Ledger.MonthlyPivot(c.Request.Context(), rc.kind, c.Query("month"))
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, PivotResponse{Data: newPivot(pivot)})
}

// @Summary		Export CSV
// @Description	Exports the records of the month as CSV. Meals are exported as pivot.
// @Tags			Records
// @Produce		text/csv
// @Success		200
// @Failure		500		{object}	httperrors.HTTPError
// @Param			kind	path		string	true	"Record store"	Enums(meals, deposits, shopping-expenses, utilities)
// @Param			month	query		string	false	"Month in YYYY-MM format"
// @Router			/v1/{kind}/export [get]
func (rc recordController) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	month, err := rc.Ledger.ExportCSV(c.Request.Context(), rc.kind, c.Query("month"), &buf)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	attachment(c, fmt.Sprintf("%s-%s.csv", rc.kind, month), "text/csv; charset=utf-8", buf.Bytes())
}

// @Summary		Export Excel
// @Description	Exports the pivot of the month as Excel workbook
// @Tags			Records
// @Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success		200
// @Failure		500		{object}	httperrors.HTTPError
// @Param			kind	path		string	true	"Record store"	Enums(meals, deposits, shopping-expenses, utilities)
// @Param			month	query		string	false	"Month in YYYY-MM format"
// @Router			/v1/{kind}/export.xlsx [get]
func (rc recordController) ExportXLSX(c *gin.Context) {
	var buf bytes.Buffer
	month, err := rc.Ledger.ExportXLSX(c.Request.Context(), rc.kind, c.Query("month"), &buf)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	attachment(c, fmt.Sprintf("%s-%s.xlsx", rc.kind, month), contentTypeXLSX, buf.Bytes())
}

// @Summary		Save meals of a day
// @Description	Saves the meal counts of many members for one day. The request is rejected as a whole if any count is invalid.
// @Tags			Records
// @Accept			json
// @Produce		json
// @Success		200		{object}	BulkResponse
// @Failure		400		{object}	httperrors.HTTPError
// @Failure		500		{object}	httperrors.HTTPError
// @Param			meals	body		ledger.BulkMealInput	true	"Meal counts by member ID"
// @Router			/v1/meals/bulk [post]
func (rc recordController) BulkMeals(c *gin.Context) {
	var input ledger.BulkMealInput
	if err := httputil.BindData(c, &input); err != nil {
		httperrors.Handler(c, err)
		return
	}

	result, err := rc.Ledger.BulkMeals(c.Request.Context(), input)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, BulkResponse{Data: result})
}

// @Summary		Import deposits
// @Description	Imports deposits from a CSV file with the columns user_id, date and amount. Valid rows are imported, invalid rows are reported.
// @Tags			Records
// @Accept			multipart/form-data
// @Produce		json
// @Success		200		{object}	BulkResponse
// @Failure		400		{object}	httperrors.HTTPError
// @Failure		500		{object}	httperrors.HTTPError
// @Param			file	formData	file	true	"CSV file"
// @Router			/v1/deposits/import [post]
func (rc recordController) ImportDeposits(c *gin.Context) {
	file, err := httputil.FormFile(c)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}
	defer file.Close()

	result, err := rc.Ledger.ImportDeposits(c.Request.Context(), file)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, BulkResponse{Data: result})
}

// @Summary		Import template
// @Description	Returns an import file with a zero deposit for every active member for today
// @Tags			Records
// @Produce		text/csv
// @Success		200
// @Failure		500	{object}	httperrors.HTTPError
// @Router			/v1/deposits/import/template [get]
func (rc recordController) ImportTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if err := rc.Ledger.ImportTemplate(c.Request.Context(), &buf); err != nil {
		httperrors.Handler(c, err)
		return
	}

	attachment(c, "deposits-template.csv", "text/csv; charset=utf-8", buf.Bytes())
}
