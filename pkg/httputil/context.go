package httputil

import "github.com/gin-gonic/gin"

type ContextKey string

// ContextURL is the key the external base URL of the API is stored under in the request context.
const ContextURL ContextKey = "mess-ledger:url"

// URL returns the external base URL of the API.
func URL(c *gin.Context) string {
	return c.GetString(string(ContextURL))
}
