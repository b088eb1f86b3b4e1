// Package healthz reports if the backend can serve requests.
package healthz

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mess-ledger/backend/pkg/httperrors"
	"github.com/mess-ledger/backend/pkg/httputil"
	"github.com/mess-ledger/backend/pkg/models"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.RouterGroup, db *gorm.DB) {
	r.OPTIONS("", Options)
	r.GET("", Get(db))
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			General
// @Success		204
// @Router			/healthz [options]
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}

// Get returns the handler checking the database connection.
//
// @Summary		Get health
// @Description	Returns the application health and, if not healthy, an error
// @Tags			General
// @Produce		json
// @Success		204
// @Failure		500	{object}	httperrors.HTTPError
// @Router			/healthz [get]
func Get(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil {
			httperrors.Handler(c, fmt.Errorf("%w: %w", models.ErrGeneral, err))
			return
		}

		err = sqlDB.PingContext(c.Request.Context())
		if err != nil {
			httperrors.Handler(c, fmt.Errorf("%w: %w", models.ErrGeneral, err))
			return
		}

		c.Status(http.StatusNoContent)
	}
}
