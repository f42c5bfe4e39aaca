package controllers

import (
	"io"
	"net/http"

	"github.com/aihub/rag-go/internal/di"
	"github.com/aihub/rag-go/internal/metrics"
	"github.com/aihub/rag-go/internal/services"
)

// IngestController handles document upload and indexing.
type IngestController struct {
	BaseController
	ingestService *services.IngestService
}

func (c *IngestController) Prepare() {
	if c.ingestService == nil {
		_ = di.Invoke(func(svc *services.IngestService) {
			c.ingestService = svc
		})
	}
}

// POST /api/ingest
//
// Multipart upload with a "file" part and an optional "tag" form value.
func (c *IngestController) Upload() {
	metrics.RequestsTotal.WithLabelValues("ingest").Inc()
	if c.ingestService == nil {
		c.JSONError(http.StatusServiceUnavailable, "ingestion service unavailable")
		return
	}

	file, header, err := c.GetFile("file")
	if err != nil {
		c.JSONError(http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSONError(http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	tag := c.GetString("tag")

	count, err := c.ingestService.Ingest(c.Ctx.Request.Context(), data, header.Filename, tag)
	if err != nil {
		c.JSONAppError("ingest", err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"filename":      header.Filename,
		"tag":           tag,
		"chunks_stored": count,
	})
}

// GET /api/ingest/supported-types
func (c *IngestController) SupportedTypes() {
	if c.ingestService == nil {
		c.JSONError(http.StatusServiceUnavailable, "ingestion service unavailable")
		return
	}
	c.JSONSuccess(map[string]interface{}{
		"extensions": c.ingestService.SupportedExtensions(),
	})
}
