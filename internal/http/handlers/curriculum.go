package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/curriculum-backend/internal/data/repos"
	"github.com/yungbote/curriculum-backend/internal/http/response"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/query"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
	"github.com/yungbote/curriculum-backend/internal/services"
)

const (
	DefaultFileField      = "file"
	DefaultMaxUploadBytes = 32 << 20
)

type CurriculumHandlerConfig struct {
	FileField      string
	MaxUploadBytes int64
}

type CurriculumHandler struct {
	log       *logger.Logger
	imports   services.ImportService
	catalog   services.CatalogService
	fileField string
	maxUpload int64
}

func NewCurriculumHandler(baseLog *logger.Logger, imports services.ImportService, catalog services.CatalogService, cfg CurriculumHandlerConfig) *CurriculumHandler {
	if strings.TrimSpace(cfg.FileField) == "" {
		cfg.FileField = DefaultFileField
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &CurriculumHandler{
		log:       baseLog.With("handler", "CurriculumHandler"),
		imports:   imports,
		catalog:   catalog,
		fileField: cfg.FileField,
		maxUpload: cfg.MaxUploadBytes,
	}
}

type importResponse struct {
	Success       bool   `json:"success"`
	ImportedCount int    `json:"imported_count"`
	FileName      string `json:"file_name"`
	FileType      string `json:"file_type"`
	ImportID      string `json:"import_id"`
	RejectedCount int    `json:"rejected_count"`
}

// POST /api/curriculum/import
func (h *CurriculumHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	fh, err := c.FormFile(h.fileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "upload_too_large", fmt.Errorf("upload exceeds %d bytes", h.maxUpload))
			return
		}
		response.RespondError(c, http.StatusBadRequest, "missing_file", fmt.Errorf("multipart field %q: %w", h.fileField, err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}

	res, err := h.imports.Import(c.Request.Context(), services.ImportInput{
		FileName: fh.Filename,
		MIMEType: fh.Header.Get("Content-Type"),
		Data:     data,
		Mode:     c.PostForm("mode"),
	})
	if err != nil {
		imported, batchNumber := 0, 0
		if res != nil {
			imported, batchNumber = res.ImportedCount, res.BatchNumber
		}
		response.RespondImportError(c, err, imported, batchNumber)
		return
	}
	response.RespondOK(c, importResponse{
		Success:       true,
		ImportedCount: res.ImportedCount,
		FileName:      res.FileName,
		FileType:      string(res.FileType),
		ImportID:      res.ImportID.String(),
		RejectedCount: res.Rejected,
	})
}

// GET /api/curriculum/outcomes
func (h *CurriculumHandler) ListOutcomes(c *gin.Context) {
	limit, ok := limitParam(c)
	if !ok {
		return
	}
	rows, err := h.catalog.Outcomes(c.Request.Context(), repos.OutcomeFilter{
		LearningArea: c.Query("learningAreaId"),
		Level:        c.Query("yearLevel"),
		Limit:        limit,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"outcomes": rows})
}

// GET /api/curriculum/shards
func (h *CurriculumHandler) ListShards(c *gin.Context) {
	limit, ok := limitParam(c)
	if !ok {
		return
	}
	view, err := h.catalog.Shards(c.Request.Context(), query.Filter{
		Subject: c.Query("subject"),
		Level:   c.Query("level"),
		Keyword: c.Query("keyword"),
		Limit:   limit,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/curriculum/shards/refresh
func (h *CurriculumHandler) RefreshShards(c *gin.Context) {
	view, err := h.catalog.RefreshShards(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// DELETE /api/curriculum/shards/cache
func (h *CurriculumHandler) ClearShards(c *gin.Context) {
	h.catalog.ClearShards(c.Request.Context())
	h.log.WithContext(c.Request.Context()).Info("Shard cache cleared", "client_ip", c.ClientIP())
	response.RespondOK(c, gin.H{"cleared": true})
}

func limitParam(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", fmt.Errorf("limit must be a non-negative integer, got %q", raw))
		return 0, false
	}
	return n, true
}
