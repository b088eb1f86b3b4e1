// Package v1 implements the v1 HTTP API of the ledger.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mess-ledger/backend/pkg/httperrors"
	"github.com/mess-ledger/backend/pkg/httputil"
	"github.com/mess-ledger/backend/pkg/ledger"
	"github.com/mess-ledger/backend/pkg/models"
)

// Controller serves the v1 API.
type Controller struct {
	Ledger *ledger.Service
}

// RegisterRoutes registers all v1 routes with the RouterGroup that is passed.
func (co Controller) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", Get)
	r.OPTIONS("", Options)

	co.RegisterMemberRoutes(r.Group("/members"))
	co.RegisterMonthRoutes(r.Group("/months"))

	for _, kind := range models.Kinds {
		co.RegisterRecordRoutes(r.Group("/"+string(kind)), kind)
	}
}

type Response struct {
	Links Links `json:"links"` // Links for the v1 API
}

type Links struct {
	Members          string `json:"members" example:"https://example.com/api/v1/members"`                    // URL of Member collection endpoint
	Meals            string `json:"meals" example:"https://example.com/api/v1/meals"`                        // URL of Meal collection endpoint
	Deposits         string `json:"deposits" example:"https://example.com/api/v1/deposits"`                  // URL of Deposit collection endpoint
	ShoppingExpenses string `json:"shoppingExpenses" example:"https://example.com/api/v1/shopping-expenses"` // URL of Shopping Expense collection endpoint
	Utilities        string `json:"utilities" example:"https://example.com/api/v1/utilities"`                // URL of Utility collection endpoint
	Months           string `json:"months" example:"https://example.com/api/v1/months"`                      // URL of Month endpoint
}

// Get returns the link list for v1
//
//	@Summary		v1 API
//	@Description	Returns general information about the v1 API
//	@Tags			v1
//	@Success		200	{object}	Response
//	@Router			/v1 [get]
func Get(c *gin.Context) {
	url := httputil.URL(c)

	c.JSON(http.StatusOK, Response{
		Links: Links{
			Members:          url + "/v1/members",
			Meals:            url + "/v1/meals",
			Deposits:         url + "/v1/deposits",
			ShoppingExpenses: url + "/v1/shopping-expenses",
			Utilities:        url + "/v1/utilities",
			Months:           url + "/v1/months",
		},
	})
}

// Options returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			v1
//	@Success		204
//	@Router			/v1 [options]
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}

// uriID parses the id path parameter. It writes the error response if the ID is invalid.
func uriID(c *gin.Context) (uuid.UUID, bool) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		httperrors.Handler(c, err)
		return uuid.Nil, false
	}

	return id, true
}

// attachment sends a file download.
func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
