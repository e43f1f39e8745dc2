package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeExtraction    = "EXTRACTION_ERROR"
	ErrCodeRemoteService = "REMOTE_SERVICE_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuestion        = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrDocumentNotFound  = NewDomainError(ErrCodeNotFound, "document not found")
	ErrUploadJobNotFound = NewDomainError(ErrCodeNotFound, "upload job not found")
)

// Configuration errors are fatal and never retried.
var (
	ErrEmbeddingDimensionMismatch = NewDomainError(ErrCodeConfiguration, "embedding dimension does not match configured dimension")
	ErrMissingAPIKey              = NewDomainError(ErrCodeConfiguration, "OpenAI API key is not configured")
	ErrArchiveNotConfigured       = NewDomainError(ErrCodeConfiguration, "document archival is not configured")
)

// Extraction errors fail the owning upload job.
var (
	ErrEmptyDocument       = NewDomainError(ErrCodeExtraction, "document contains no extractable text")
	ErrUnsupportedDocument = NewDomainError(ErrCodeExtraction, "unsupported document type")
)
