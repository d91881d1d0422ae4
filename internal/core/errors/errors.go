package errors

const (
	HttpInternalError              = "internal_error"
	HttpInvalidJsonError           = "invalid_json"
	HttpInvalidRequestError        = "invalid_request"
	HttpNotFoundError              = "not_found"
	HttpJournalBusyError           = "journal_busy"
	HttpAnnotationUnavailableError = "annotation_unavailable"
)

// ErrorResponse is the error response body for journal API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
