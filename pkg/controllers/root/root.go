// Package root serves the API entrypoint.
package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mess-ledger/backend/pkg/httputil"
)

type Response struct {
	Links Links `json:"links"`
}

type Links struct {
	Docs      string `json:"docs" example:"https://example.com/api/docs/index.html"` // Swagger API documentation
	Healthz   string `json:"healthz" example:"https://example.com/api/healthz"`      // Database ping, 204 when the ledger can be read
	Version   string `json:"version" example:"https://example.com/api/version"`      // Version of the running backend
	Metrics   string `json:"metrics" example:"https://example.com/api/metrics"`      // Request and report cache metrics for Prometheus
	V1        string `json:"v1" example:"https://example.com/api/v1"`                // Links to all record stores, members and monthly reports
	Members   string `json:"members" example:"https://example.com/api/v1/members"`   // The roster of the mess
	Dashboard string `json:"dashboard" example:"https://example.com/api/v1/months"`  // Totals, meal rate and balances of the current month
}

func RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", Get)
	r.OPTIONS("", Options)
}

// @Summary		API root
// @Description	Entrypoint for the API, listing the general endpoints and the most used ledger endpoints
// @Tags			General
// @Success		200	{object}	Response
// @Router			/ [get]
func Get(c *gin.Context) {
	url := httputil.URL(c)

	c.JSON(http.StatusOK, Response{
		Links: Links{
			Docs:      url + "/docs/index.html",
			Healthz:   url + "/healthz",
			Version:   url + "/version",
			Metrics:   url + "/metrics",
			V1:        url + "/v1",
			Members:   url + "/v1/members",
			Dashboard: url + "/v1/months",
		},
	})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			General
// @Success		204
// @Router			/ [options]
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}
