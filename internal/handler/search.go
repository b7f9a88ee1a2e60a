package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/ecoflyer/internal/aggregator"
	"github.com/dharmasatrya/ecoflyer/internal/cache"
	"github.com/dharmasatrya/ecoflyer/internal/models"
)

type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*aggregator.Result, error)
}

type SearchHandler struct {
	searcher Searcher
	cache    cache.Cache
}

func NewSearchHandler(s Searcher, c cache.Cache) *SearchHandler {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &SearchHandler{
		searcher: s,
		cache:    c,
	}
}

// Search handles GET /api/emissions?lat=&long=&len=&out=&outEnd=&ret=&retEnd=&price=
// and responds with the ranked destinations.
func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := requestFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse query: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if body, found := h.cache.Get(ctx, req); found {
		c.Response().Header().Set("X-Cache", "HIT")
		return c.JSONBlob(http.StatusOK, body)
	}

	body, err := runSearch(ctx, h.searcher, req)
	if err != nil {
		status := StatusFor(err)
		log.Printf("Search failed (%d): %v", status, err)
		return c.JSON(status, models.ErrorResponse{
			Error:   errorCode(err),
			Message: aggregator.UserMessage(err),
			Code:    status,
		})
	}

	if err := h.cache.Set(ctx, req, body); err != nil {
		log.Printf("Cache write failed: %v", err)
	}
	c.Response().Header().Set("X-Cache", "MISS")
	return c.JSONBlob(http.StatusOK, body)
}

// runSearch runs the pipeline and serializes the ranked destinations.
func runSearch(ctx context.Context, s Searcher, req models.SearchRequest) ([]byte, error) {
	result, err := s.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	return json.Marshal(result.Destinations)
}

func requestFromQuery(c echo.Context) (models.SearchRequest, error) {
	req := models.SearchRequest{
		TripLength:           c.QueryParam("len"),
		OutboundDate:         c.QueryParam("out"),
		OutboundDateEndRange: c.QueryParam("outEnd"),
		ReturnDate:           c.QueryParam("ret"),
		ReturnDateEndRange:   c.QueryParam("retEnd"),
	}

	lat, err := parseNumber(c.QueryParam("lat"), "lat")
	if err != nil {
		return req, err
	}
	long, err := parseNumber(c.QueryParam("long"), "long")
	if err != nil {
		return req, err
	}
	req.LatLong = models.LatLong{Lat: lat, Long: long}

	if raw := strings.TrimSpace(c.QueryParam("price")); raw != "" {
		price, err := parseNumber(raw, "price")
		if err != nil {
			return req, err
		}
		req.Price = &price
	}
	return req, nil
}

func parseNumber(raw, name string) (models.Number, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New(name + " is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	return models.Number(v), nil
}

// StatusFor maps a search failure to an HTTP status.
func StatusFor(err error) int {
	var se *aggregator.StageError
	if !errors.As(err, &se) {
		return http.StatusInternalServerError
	}
	switch se.Stage {
	case aggregator.StageInput:
		return http.StatusBadRequest
	case aggregator.StageAirports, aggregator.StageNoFlights:
		return http.StatusNotFound
	case aggregator.StageFlights, aggregator.StageNormalize, aggregator.StageEmissions:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	var se *aggregator.StageError
	if errors.As(err, &se) {
		return string(se.Stage) + "_error"
	}
	return "search_error"
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// PingHandler lets the web client wake the service before submitting work.
func PingHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "I am awake!",
	})
}
