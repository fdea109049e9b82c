package httpapi

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"papermill/internal/jobs"
	"papermill/internal/logging"
	"papermill/internal/staging"
)

type jobPayload struct {
	ID                int64   `json:"id"`
	OriginalFilename  string  `json:"original_filename"`
	ConvertedFilename string  `json:"converted_filename"`
	ConversionType    string  `json:"conversion_type"`
	Status            string  `json:"status"`
	CreatedAt         *string `json:"created_at"`
	CompletedAt       *string `json:"completed_at"`
	ErrorMessage      *string `json:"error_message"`
}

func toPayload(job *jobs.Job) jobPayload {
	payload := jobPayload{
		ID:                job.ID,
		OriginalFilename:  job.OriginalFilename,
		ConvertedFilename: job.ConvertedFilename,
		ConversionType:    string(job.Kind),
		Status:            string(job.Status),
	}
	if !job.CreatedAt.IsZero() {
		created := job.CreatedAt.UTC().Format(time.RFC3339)
		payload.CreatedAt = &created
	}
	if job.CompletedAt != nil {
		completed := job.CompletedAt.UTC().Format(time.RFC3339)
		payload.CompletedAt = &completed
	}
	if job.ErrorMessage != "" {
		payload.ErrorMessage = &job.ErrorMessage
	}
	return payload
}

func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	if strings.TrimSpace(file.Filename) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file selected"})
		return
	}

	kind, err := jobs.ParseKind(c.PostForm("conversion_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversion type"})
		return
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	if !extensionAllowed(ext, kind.AllowedExtensions()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": extensionErrorMessage(kind)})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}
	defer src.Close()

	stagedName, err := s.area.StageUpload(src, ext)
	if err != nil {
		if isBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		s.logger.Error("stage upload", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}
	convertedName := staging.ReserveOutputName(stagedName, kind.TargetFormat())

	job, err := s.submitter.Submit(c.Request.Context(), stagedName, convertedName, kind)
	if err != nil {
		s.logger.Error("submit job", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "File uploaded successfully",
		"conversion_id": job.ID,
		"status":        string(job.Status),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	job, ok := s.lookupJob(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toPayload(job))
}

func (s *Server) handleDownload(c *gin.Context) {
	job, ok := s.lookupJob(c)
	if !ok {
		return
	}
	if job.Status != jobs.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Conversion not completed"})
		return
	}
	path := s.area.OutputPath(job.ConvertedFilename)
	if !s.area.Exists(path) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Converted file not found"})
		return
	}
	c.FileAttachment(path, job.ConvertedFilename)
}

func (s *Server) handleList(c *gin.Context) {
	listed, err := s.store.ListRecent(c.Request.Context(), 50)
	if err != nil {
		s.logger.Error("list conversions", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversions"})
		return
	}
	payloads := make([]jobPayload, 0, len(listed))
	for _, job := range listed {
		payloads = append(payloads, toPayload(job))
	}
	c.JSON(http.StatusOK, payloads)
}

func (s *Server) handleHealthz(c *gin.Context) {
	health, err := s.store.Health(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"total":      health.Total,
		"pending":    health.Pending,
		"processing": health.Processing,
		"completed":  health.Completed,
		"failed":     health.Failed,
	})
}

func (s *Server) lookupJob(c *gin.Context) (*jobs.Job, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversion not found"})
		return nil, false
	}
	job, err := s.store.GetByID(c.Request.Context(), id)
	if err != nil {
		s.logger.Error("load job", logging.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Status check failed"})
		return nil, false
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversion not found"})
		return nil, false
	}
	return job, true
}

func extensionAllowed(ext string, allowed []string) bool {
	for _, candidate := range allowed {
		if ext == candidate {
			return true
		}
	}
	return false
}

func extensionErrorMessage(kind jobs.Kind) string {
	if kind == jobs.KindPDFToWord {
		return "Only PDF files are allowed for PDF to Word conversion"
	}
	return "Only DOCX/DOC files are allowed for Word to PDF conversion"
}

func isBodyTooLarge(err error) bool {
	if err == nil {
		return false
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large") ||
		strings.Contains(err.Error(), "multipart: message too large")
}
