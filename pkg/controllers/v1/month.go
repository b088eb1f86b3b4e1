package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mess-ledger/backend/pkg/httperrors"
	"github.com/mess-ledger/backend/pkg/httputil"
	"github.com/mess-ledger/backend/pkg/ledger"
)

type DashboardResponse struct {
	Data ledger.Dashboard `json:"data"` // Dashboard of the month
}

type SummaryResponse struct {
	Data ledger.MonthlySummary `json:"data"` // Totals and balances of the month
}

type BalancesResponse struct {
	Data []ledger.UserSummary `json:"data"` // Balances of all active members
}

type StatisticsResponse struct {
	Data ledger.Statistics `json:"data"` // Key figures of the month
}

// RegisterMonthRoutes registers the routes for month reports with
// the RouterGroup that is passed.
func (co Controller) RegisterMonthRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsMonth)
	r.GET("", co.GetDashboard)
	r.OPTIONS("/summary", co.OptionsMonth)
	r.GET("/summary", co.GetSummary)
	r.OPTIONS("/balances", co.OptionsMonth)
	r.GET("/balances", co.GetBalances)
	r.OPTIONS("/statistics", co.OptionsMonth)
	r.GET("/statistics", co.GetStatistics)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Months
// @Success		204
// @Router			/v1/months [options]
func (co Controller) OptionsMonth(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get dashboard
// @Description	Returns summary, statistics and formatted key figures of a month. Invalid months fall back to the current month.
// @Tags			Months
// @Produce		json
// @Success		200		{object}	DashboardResponse
// @Failure		500		{object}	httperrors.HTTPError
// @Param			month	query		string	false	"Month in YYYY-MM format"
// @Router			/v1/months [get]
func (co Controller) GetDashboard(c *gin.Context) {
	dashboard, err := co.Ledger.Dashboard(c.Request.Context(), c.Query("month"))
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{Data: dashboard})
}

// @Summary		Get monthly summary
// @Description	Returns the totals, the meal rate and the balances of all active members for a month
// @Tags			Months
// @Produce		json
// @Success		200		{object}	SummaryResponse
// @Failure		500		{object}	httperrors.HTTPError
// @Param			month	query		string	false	"Month in YYYY-MM format"
// @Router			/v1/months/summary [get]
func (co Controller) GetSummary(c *gin.Context) {
	summary, err := co.Ledger.MonthlySummary(c.Request.Context(), c.Query("month"))
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{Data: summary})
}

// @Summary		Get balances
// @Description	Returns the balances of all active members for a month
// @Tags			Months
// @Produce		json
// @Success		200		{object}	BalancesResponse
// @Failure		500		{object}	httperrors.HTTPError
// @Param			month	query		string	false	"Month in YYYY-MM format"
// @Router			/v1/months/balances [get]
func (co Controller) GetBalances(c *gin.Context) {
	balances, err := co.Ledger.UserBalances(c.Request.Context(), c.Query("month"))
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, BalancesResponse{Data: balances})
}

// @Summary		Get statistics
// @Description	Returns key figures of a month
// @Tags			Months
// @Produce		json
// @Success		200		{object}	StatisticsResponse
// @Failure		500		{object}	httperrors.HTTPError
// @Param			month	query		string	false	"Month in YYYY-MM format"
// @Router			/v1/months/statistics [get]
func (co Controller) GetStatistics(c *gin.Context) {
	statistics, err := co.Ledger.Statistics(c.Request.Context(), c.Query("month"))
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, StatisticsResponse{Data: statistics})
}
