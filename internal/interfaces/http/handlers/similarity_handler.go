package handlers

import (
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cyclome/internal/application/catalog"
	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/logging"
)

const batchExample = "/api/similarity/batch/75?ids=1ahl,1akg,1wt8_A"

// SimilarityHandler serves the /api/similarity endpoints.
type SimilarityHandler struct {
	svc    catalog.Service
	logger logging.Logger
}

// NewSimilarityHandler creates a new SimilarityHandler.
func NewSimilarityHandler(svc catalog.Service, logger logging.Logger) *SimilarityHandler {
	return &SimilarityHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler under rg (normally /api/similarity).
func (h *SimilarityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/batch/:threshold", h.BatchGet)
	rg.POST("/batch/:threshold", h.BatchPost)
	rg.GET("/:id/:threshold", h.Get)
}

// Health handles GET /api/similarity/health.  The dataset is loaded on the
// first call if no lookup has loaded it yet.
func (h *SimilarityHandler) Health(c *gin.Context) {
	st := h.svc.SimilarityHealth(c.Request.Context())
	if !st.OK {
		c.JSON(http.StatusInternalServerError, st)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Get handles GET /api/similarity/:id/:threshold.
func (h *SimilarityHandler) Get(c *gin.Context) {
	res, err := h.svc.Similarity(c.Request.Context(), c.Param("id"), c.Param("threshold"))
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// BatchGet handles GET /api/similarity/batch/:threshold?ids=a,b,c.
func (h *SimilarityHandler) BatchGet(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("ids"))
	if raw == "" {
		writeBadRequest(c, "missing query param: ids", batchExample)
		return
	}
	h.batch(c, []string{raw})
}

// BatchPost handles POST /api/similarity/batch/:threshold with body {ids: [...]}.
func (h *SimilarityHandler) BatchPost(c *gin.Context) {
	var req IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		writeBadRequest(c, "invalid request body", err.Error())
		return
	}
	h.batch(c, req.values())
}

func (h *SimilarityHandler) batch(c *gin.Context, ids []string) {
	res, err := h.svc.SimilarityBatch(c.Request.Context(), ids, c.Param("threshold"))
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

//Personal.AI order the ending
