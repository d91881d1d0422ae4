package journal

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	v1 "github.com/aevon-lab/recall/internal/api/v1"
	httperr "github.com/aevon-lab/recall/internal/core/errors"
	"github.com/aevon-lab/recall/internal/core/lock"
	"github.com/aevon-lab/recall/internal/core/storage"
	"github.com/aevon-lab/recall/internal/engine"
	"github.com/gin-gonic/gin"
)

const (
	msgReadBodyFailed        = "Failed to read request body"
	msgInvalidJSON           = "Invalid JSON body"
	msgInvalidJournalID      = "Invalid journal id"
	msgInvalidLimit          = "limit must be a non-negative integer"
	msgJournalBusy           = "Another entry is being added to this journal"
	msgAnnotationUnavailable = "Linguistic annotation is unavailable"
	msgJournalNotFound       = "Journal has no events yet"
	msgInternal              = "Internal server error"

	maxJournalIDLength = 128
)

// journalError carries the structured HTTP error shape from a helper back to the handler.
type journalError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *journalError) Error() string {
	return e.message
}

// AnalyzeHandler runs the engine over a narrative without touching any journal.
func (s *Service) AnalyzeHandler(c *gin.Context) {
	req, jerr := s.parseRequest(c)
	if jerr != nil {
		writeError(c, jerr)
		return
	}

	analysis, err := s.engine.ExtractAndMerge(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, mapError(err, ""))
		return
	}

	c.JSON(http.StatusOK, v1.AnalyzeResponse{
		SentimentScore: analysis.Sentiment,
		Events:         nonNilEvents(analysis.Events),
	})
}

// AddEntryHandler analyses a narrative and records it as a new journal entry.
func (s *Service) AddEntryHandler(c *gin.Context) {
	journalID, jerr := journalIDParam(c)
	if jerr != nil {
		writeError(c, jerr)
		return
	}
	req, jerr := s.parseRequest(c)
	if jerr != nil {
		writeError(c, jerr)
		return
	}

	resp, err := s.AddEntry(c.Request.Context(), journalID, req.Text)
	if err != nil {
		writeError(c, mapError(err, journalID))
		return
	}
	resp.Entry.EventsTagged = nonNilEvents(resp.Entry.EventsTagged)

	c.JSON(http.StatusCreated, resp)
}

// TimelineHandler lists a journal's entries, newest first.
func (s *Service) TimelineHandler(c *gin.Context) {
	journalID, jerr := journalIDParam(c)
	if jerr != nil {
		writeError(c, jerr)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(c, &journalError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidRequestError,
				message:    msgInvalidLimit,
				details:    map[string]interface{}{"limit": raw},
			})
			return
		}
		limit = n
	}

	entries, err := s.Timeline(c.Request.Context(), journalID, limit)
	if err != nil {
		writeError(c, mapError(err, journalID))
		return
	}

	c.JSON(http.StatusOK, entries)
}

// EventsHandler returns the journal's event collection.
func (s *Service) EventsHandler(c *gin.Context) {
	journalID, jerr := journalIDParam(c)
	if jerr != nil {
		writeError(c, jerr)
		return
	}

	events, err := s.Events(c.Request.Context(), journalID)
	if err != nil {
		writeError(c, mapError(err, journalID))
		return
	}

	c.JSON(http.StatusOK, events)
}

// MainEventsHandler returns the events recurring across the journal's entries.
func (s *Service) MainEventsHandler(c *gin.Context) {
	journalID, jerr := journalIDParam(c)
	if jerr != nil {
		writeError(c, jerr)
		return
	}

	resp, err := s.MainEvents(c.Request.Context(), journalID)
	if err != nil {
		writeError(c, mapError(err, journalID))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// parseRequest reads the bounded request body and binds it into an AnalyzeRequest.
func (s *Service) parseRequest(c *gin.Context) (*v1.AnalyzeRequest, *journalError) {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, &journalError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, &journalError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var req v1.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, &journalError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}

	if err := req.Validate(); err != nil {
		return nil, &journalError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    err.Error(),
		}
	}

	return &req, nil
}

func journalIDParam(c *gin.Context) (string, *journalError) {
	id := strings.TrimSpace(c.Param("journal_id"))
	if id == "" || len(id) > maxJournalIDLength {
		return "", &journalError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidRequestError,
			message:    msgInvalidJournalID,
			details:    map[string]interface{}{"max_length": maxJournalIDLength},
		}
	}
	return id, nil
}

// mapError translates service errors into the HTTP error shape.
func mapError(err error, journalID string) *journalError {
	switch {
	case errors.Is(err, lock.ErrLocked):
		slog.Info("[Journal] Writer lock busy", "journal_id", journalID)
		return &journalError{
			statusCode: http.StatusConflict,
			errorType:  httperr.HttpJournalBusyError,
			message:    msgJournalBusy,
		}
	case errors.Is(err, engine.ErrAnnotatorUnavailable):
		slog.Error("[Journal] Annotation failed", "journal_id", journalID, "error", err)
		return &journalError{
			statusCode: http.StatusBadGateway,
			errorType:  httperr.HttpAnnotationUnavailableError,
			message:    msgAnnotationUnavailable,
		}
	case errors.Is(err, storage.ErrNotFound):
		return &journalError{
			statusCode: http.StatusNotFound,
			errorType:  httperr.HttpNotFoundError,
			message:    msgJournalNotFound,
			details:    map[string]interface{}{"journal_id": journalID},
		}
	default:
		slog.Error("[Journal] Request failed", "journal_id", journalID, "error", err)
		return &journalError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgInternal,
		}
	}
}

func nonNilEvents(events []v1.Event) []v1.Event {
	if events == nil {
		return []v1.Event{}
	}
	return events
}

// writeError serializes a journalError as the JSON HTTP response.
func writeError(c *gin.Context, err *journalError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
