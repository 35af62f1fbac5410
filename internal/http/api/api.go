package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the uniform error envelope: an HTTP status, a machine-readable
// code the UI can branch on, and a human message.
type APIError struct {
	Code    int
	Kind    string
	Message string
}

// Errf builds an APIError in one line.
func Errf(code int, kind, message string) *APIError {
	return &APIError{Code: code, Kind: kind, Message: message}
}

// HandlerFunc is the shape every endpoint implements: return a payload or an
// APIError, never write to the response directly.
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

// ResolveEndpoint adapts a HandlerFunc to gin.
func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message, "code": apiErr.Kind})
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}

// Controller is the surface modules register their endpoints on.
type Controller struct {
	Group *gin.RouterGroup
}

func (c *Controller) GET(path string, h HandlerFunc)    { c.Group.GET(path, ResolveEndpoint(h)) }
func (c *Controller) POST(path string, h HandlerFunc)   { c.Group.POST(path, ResolveEndpoint(h)) }
func (c *Controller) PUT(path string, h HandlerFunc)    { c.Group.PUT(path, ResolveEndpoint(h)) }
func (c *Controller) PATCH(path string, h HandlerFunc)  { c.Group.PATCH(path, ResolveEndpoint(h)) }
func (c *Controller) DELETE(path string, h HandlerFunc) { c.Group.DELETE(path, ResolveEndpoint(h)) }
