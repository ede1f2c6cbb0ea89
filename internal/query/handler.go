package query

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	httperr "github.com/bluecover-lab/project-bluecover/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the aggregation query routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/stats/:family/aggregate", s.HandleAggregate)
	r.GET("/v1/summary", s.HandleSummary)
}

// HandleAggregate handles GET /v1/stats/:family/aggregate
// Query parameters: locations (comma-separated, required), year,
// environment, sub_field, locale.
func (s *Service) HandleAggregate(c *gin.Context) {
	locations, ok := parseLocations(c)
	if !ok {
		return
	}
	year, ok := parseYear(c)
	if !ok {
		return
	}

	q := AggregateQuery{
		Family:       c.Param("family"),
		Locations:    locations,
		Year:         year,
		Environment:  c.Query("environment"),
		SubFieldSlug: c.Query("sub_field"),
		Locale:       c.Query("locale"),
	}

	res, err := s.Aggregate(c.Request.Context(), q)
	if err != nil {
		writeAggregateError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(res))
}

// HandleSummary handles GET /v1/summary: every registered family
// aggregated for one location set.
func (s *Service) HandleSummary(c *gin.Context) {
	locations, ok := parseLocations(c)
	if !ok {
		return
	}
	year, ok := parseYear(c)
	if !ok {
		return
	}

	results, err := s.Summary(c.Request.Context(), SummaryQuery{
		Locations:   locations,
		Year:        year,
		Environment: c.Query("environment"),
		Locale:      c.Query("locale"),
	})
	if err != nil {
		writeAggregateError(c, err)
		return
	}

	families := make(map[string]AggregateResponse, len(results))
	for name, res := range results {
		families[name] = toResponse(res)
	}
	c.JSON(http.StatusOK, gin.H{"families": families})
}

// parseLocations splits the comma-separated locations parameter, dropping
// empty segments. A missing or empty parameter is rejected here, so the
// aggregation service is never invoked with an empty location set.
func parseLocations(c *gin.Context) ([]string, bool) {
	var locations []string
	for _, code := range strings.Split(c.Query("locations"), ",") {
		if code = strings.TrimSpace(code); code != "" {
			locations = append(locations, code)
		}
	}
	if len(locations) == 0 {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "locations query parameter is required",
		})
		return nil, false
	}
	return locations, true
}

func parseYear(c *gin.Context) (*int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return nil, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "year must be an integer",
			Details:   raw,
		})
		return nil, false
	}
	return &year, true
}

func writeAggregateError(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidQuery) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid aggregate query",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to aggregate stats",
		Details:   err.Error(),
	})
}
