package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cyclome/internal/application/catalog"
	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/logging"
)

// MetaHandler serves GET /api/meta/:id.
type MetaHandler struct {
	svc    catalog.Service
	logger logging.Logger
}

func NewMetaHandler(svc catalog.Service, logger logging.Logger) *MetaHandler {
	return &MetaHandler{svc: svc, logger: logger}
}

func (h *MetaHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.Get)
}

// Get returns the metadata row verbatim.
func (h *MetaHandler) Get(c *gin.Context) {
	rec, err := h.svc.Metadata(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

//Personal.AI order the ending
