package httperr

const (
	InternalError         = "internal_error"
	InvalidJSONError      = "invalid_json"
	TemplateNotFoundError = "template_not_found"
	MissingParamsError    = "missing_parameters"
	EventNotFoundError    = "event_not_found"
	TaxonomyNotLoaded     = "taxonomy_not_loaded"
	InvalidDocumentError  = "invalid_document"
)

// ErrorResponse is the error response body for API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
