package handlers

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cyclome/internal/application/catalog"
	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/logging"
)

// StructureContentType is sent with every streamed structure file.
const StructureContentType = "chemical/x-pdb; charset=utf-8"

// StructureHandler serves the /api/pdb endpoints.
type StructureHandler struct {
	svc    catalog.Service
	logger logging.Logger
}

// NewStructureHandler creates a new StructureHandler.
func NewStructureHandler(svc catalog.Service, logger logging.Logger) *StructureHandler {
	return &StructureHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the handler under rg (normally /api/pdb).  Static
// segments take precedence over the :pdb parameter.
func (h *StructureHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.Stats)
	rg.GET("/search", h.Search)
	rg.GET("/sequence-search", h.SequenceSearch)
	rg.GET("/all", h.All)
	rg.GET("/seq-index", h.SequenceIndex)
	rg.POST("/sequences", h.Sequences)
	rg.GET("/file/:id", h.File)
	rg.GET("/:pdb/:chain", h.Chain)
	rg.GET("/:pdb", h.Base)
}

// Stats handles GET /api/pdb/stats.
func (h *StructureHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats(c.Request.Context()))
}

// Search handles GET /api/pdb/search?q=&limit=.
func (h *StructureHandler) Search(c *gin.Context) {
	results, err := h.svc.Search(c.Request.Context(), c.Query("q"), parseLimit(c))
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Results: results})
}

// SequenceSearch handles GET /api/pdb/sequence-search?q=&limit=.
func (h *StructureHandler) SequenceSearch(c *gin.Context) {
	results, err := h.svc.SequenceSearch(c.Request.Context(), c.Query("q"), parseLimit(c))
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Results: results})
}

// All handles GET /api/pdb/all.
func (h *StructureHandler) All(c *gin.Context) {
	c.JSON(http.StatusOK, ListResponse{Results: h.svc.All(c.Request.Context())})
}

// SequenceIndex handles GET /api/pdb/seq-index.
func (h *StructureHandler) SequenceIndex(c *gin.Context) {
	c.JSON(http.StatusOK, ListResponse{Results: h.svc.SequenceIndex(c.Request.Context())})
}

// IDsRequest is the body of the POST lookups.
type IDsRequest struct {
	IDs interface{} `json:"ids"`
}

// values returns the usable entries of ids.  Anything other than an array
// yields nothing; numbers are accepted in their decimal form.
func (r IDsRequest) values() []string {
	list, ok := r.IDs.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		switch x := v.(type) {
		case string:
			out = append(out, x)
		case float64:
			out = append(out, strconv.FormatFloat(x, 'f', -1, 64))
		case bool:
			out = append(out, fmt.Sprint(x))
		}
	}
	return out
}

// Sequences handles POST /api/pdb/sequences with body {ids: [...]}.  An
// empty body is treated as no ids.
func (h *StructureHandler) Sequences(c *gin.Context) {
	var req IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		writeBadRequest(c, "invalid request body", err.Error())
		return
	}
	c.JSON(http.StatusOK, ListResponse{Results: h.svc.BaseSequences(c.Request.Context(), req.values())})
}

// File handles GET /api/pdb/file/:id.
func (h *StructureHandler) File(c *gin.Context) {
	f, err := h.svc.OpenFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	h.stream(c, f)
}

// Chain handles GET /api/pdb/:pdb/:chain.
func (h *StructureHandler) Chain(c *gin.Context) {
	f, err := h.svc.OpenChain(c.Request.Context(), c.Param("pdb"), c.Param("chain"))
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	h.stream(c, f)
}

func (h *StructureHandler) stream(c *gin.Context, f *catalog.StructureFile) {
	defer f.Body.Close()
	c.DataFromReader(http.StatusOK, -1, StructureContentType, f.Body, nil)
}

// Base handles GET /api/pdb/:pdb.
func (h *StructureHandler) Base(c *gin.Context) {
	agg, err := h.svc.Base(c.Request.Context(), c.Param("pdb"))
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, agg)
}

//Personal.AI order the ending
