package handlers

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/bhavapi/pkg/utils/response"
)

// IndexHandler serves the unauthenticated root and health routes
type IndexHandler struct {
	name    string
	version string
}

// NewIndexHandler creates a new IndexHandler
func NewIndexHandler(name, version string) *IndexHandler {
	return &IndexHandler{name: name, version: version}
}

// Index returns the API name and version
func (h *IndexHandler) Index(c echo.Context) error {
	return response.SuccessResponse(c, fmt.Sprintf("%s %s", h.name, h.version))
}

// Health reports that the server is up
func (h *IndexHandler) Health(c echo.Context) error {
	return response.SuccessResponse(c, map[string]string{"status": "healthy"})
}
