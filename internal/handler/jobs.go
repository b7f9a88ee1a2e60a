package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/ecoflyer/internal/aggregator"
	"github.com/dharmasatrya/ecoflyer/internal/jobstore"
	"github.com/dharmasatrya/ecoflyer/internal/models"
)

const (
	msgProcessed       = "Processing complete"
	msgRequestNotFound = "Server failed to retrieve request information"
)

// validJobID limits caller-chosen ids to characters safe in a Redis key and
// a URL path.
var validJobID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type JobStore interface {
	SaveRequest(ctx context.Context, id string, req models.SearchRequest) error
	LoadRequest(ctx context.Context, id string) (models.SearchRequest, error)
	SaveResponse(ctx context.Context, id string, body []byte) error
	SaveError(ctx context.Context, id string, message string) error
	Status(ctx context.Context, id string) (models.JobStatus, error)
}

type JobHandler struct {
	searcher Searcher
	store    JobStore
	newID    func() string
}

func NewJobHandler(s Searcher, store JobStore) *JobHandler {
	return &JobHandler{
		searcher: s,
		store:    store,
		newID:    uuid.NewString,
	}
}

// Submit parks a search request and returns its id. The id comes from the
// :id path parameter when present, otherwise a UUID is generated. The search
// runs when the client calls Process.
func (h *JobHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if id == "" {
		id = h.newID()
	} else if !validJobID.MatchString(id) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "id must be 1 to 64 letters, digits, '-' or '_'",
			Code:    http.StatusBadRequest,
		})
	} else if _, err := h.store.Status(ctx, id); !errors.Is(err, jobstore.ErrNotFound) {
		if err != nil {
			log.Printf("Job %s: reading status failed: %v", id, err)
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "store_error",
				Message: "Failed to read job status",
				Code:    http.StatusInternalServerError,
			})
		}
		return c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "conflict",
			Message: "A request with id " + id + " already exists",
			Code:    http.StatusConflict,
		})
	}

	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
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

	if err := h.store.SaveRequest(ctx, id, req); err != nil {
		log.Printf("Job %s: saving request failed: %v", id, err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "store_error",
			Message: "Failed to store request",
			Code:    http.StatusInternalServerError,
		})
	}

	return c.JSON(http.StatusAccepted, models.JobAccepted{ID: id})
}

// Process runs the search for a parked request and records either the result
// or a short failure message. The body is that message.
func (h *JobHandler) Process(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	req, err := h.store.LoadRequest(ctx, id)
	if err != nil {
		log.Printf("Job %s: loading request failed: %v", id, err)
		h.fail(ctx, id, msgRequestNotFound)
		status := http.StatusInternalServerError
		if errors.Is(err, jobstore.ErrNotFound) {
			status = http.StatusNotFound
		}
		return c.JSON(status, msgRequestNotFound)
	}

	body, err := runSearch(ctx, h.searcher, req)
	if err != nil {
		msg := aggregator.UserMessage(err)
		log.Printf("Job %s failed: %v", id, err)
		h.fail(ctx, id, msg)
		return c.JSON(StatusFor(err), msg)
	}

	if err := h.store.SaveResponse(ctx, id, body); err != nil {
		log.Printf("Job %s: saving response failed: %v", id, err)
		return c.JSON(http.StatusInternalServerError, "Failed to store response")
	}

	log.Printf("Job %s complete", id)
	return c.JSON(http.StatusOK, msgProcessed)
}

// Result reports a job's status and, once complete, its ranked destinations.
func (h *JobHandler) Result(c echo.Context) error {
	id := c.Param("id")

	status, err := h.store.Status(c.Request().Context(), id)
	if errors.Is(err, jobstore.ErrNotFound) {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "No request with id " + id,
			Code:    http.StatusNotFound,
		})
	}
	if err != nil {
		log.Printf("Job %s: reading status failed: %v", id, err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "store_error",
			Message: "Failed to read job status",
			Code:    http.StatusInternalServerError,
		})
	}

	return c.JSON(http.StatusOK, status)
}

func (h *JobHandler) fail(ctx context.Context, id, message string) {
	if err := h.store.SaveError(ctx, id, message); err != nil {
		log.Printf("Job %s: saving error failed: %v", id, err)
	}
}
