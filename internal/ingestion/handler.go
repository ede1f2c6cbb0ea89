package ingestion

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	v1 "github.com/bluecover-lab/project-bluecover/internal/api/v1"
	httperr "github.com/bluecover-lab/project-bluecover/internal/core/errors"
	"github.com/bluecover-lab/project-bluecover/internal/core/stats"
	"github.com/bluecover-lab/project-bluecover/internal/core/storage"
	"github.com/gin-gonic/gin"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgPersistFailed  = "Failed to persist records"
)

// Service handles bulk upserts of stat records and locations.
type Service struct {
	store            storage.StatStore
	families         *stats.FamilyRegistry
	maxBodySizeBytes int
}

// NewService creates the ingestion service. maxBodySizeMB bounds request
// bodies; oversized imports are rejected before parsing.
func NewService(store storage.StatStore, families *stats.FamilyRegistry, maxBodySizeMB int) *Service {
	return &Service{
		store:            store,
		families:         families,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/stats/:family", s.HandleIngestStats)
	r.POST("/v1/locations", s.HandleIngestLocations)
}

// ingestionError carries the structured HTTP error shape from a helper back
// to the handler. Helpers return this instead of writing to gin.Context
// directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// HandleIngestStats handles POST /v1/stats/:family with a body of
// {"records": [...]}. The whole batch is upserted in one transaction; any
// malformed record rejects the batch.
func (s *Service) HandleIngestStats(c *gin.Context) {
	fam, ok := s.families.Get(c.Param("family"))
	if !ok {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpUnknownFamilyError,
			Message:   "Unknown stat family",
			Details:   c.Param("family"),
		})
		return
	}

	var body struct {
		Records []map[string]interface{} `json:"records" binding:"required"`
	}
	if err := s.bindBody(c, &body); err != nil {
		writeError(c, err)
		return
	}

	records := make([]*v1.StatRecord, 0, len(body.Records))
	for i, payload := range body.Records {
		rec, err := buildRecord(fam, payload)
		if err != nil {
			slog.Warn("Rejected stat record", "family", fam.Name, "index", i, "error", err)
			writeError(c, &ingestionError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidRecordError,
				message:    err.Error(),
				details:    map[string]interface{}{"index": i},
			})
			return
		}
		records = append(records, rec)
	}

	count, err := s.store.SaveStatRecords(c.Request.Context(), fam.Name, records)
	if err != nil {
		slog.Error("Failed to persist stat records", "family", fam.Name, "error", err)
		writeError(c, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
		})
		return
	}

	slog.Info("Upserted stat records", "family", fam.Name, "count", count)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "upserted": count})
}

// HandleIngestLocations handles POST /v1/locations with a body of
// {"locations": [...]}.
func (s *Service) HandleIngestLocations(c *gin.Context) {
	var body struct {
		Locations []*v1.Location `json:"locations" binding:"required"`
	}
	if err := s.bindBody(c, &body); err != nil {
		writeError(c, err)
		return
	}

	for i, loc := range body.Locations {
		if err := loc.Validate(); err != nil {
			writeError(c, &ingestionError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidRecordError,
				message:    err.Error(),
				details:    map[string]interface{}{"index": i},
			})
			return
		}
	}

	count, err := s.store.SaveLocations(c.Request.Context(), body.Locations)
	if err != nil {
		slog.Error("Failed to persist locations", "error", err)
		writeError(c, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
		})
		return
	}

	slog.Info("Upserted locations", "count", count)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "upserted": count})
}

// bindBody reads the request body under the configured size limit and binds
// it into out.
func (s *Service) bindBody(c *gin.Context, out interface{}) *ingestionError {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	if err := c.ShouldBindJSON(out); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}
	return nil
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
