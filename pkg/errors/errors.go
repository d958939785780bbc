package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeDriverConfiguration means no usable browser binary could be resolved
	ErrorTypeDriverConfiguration ErrorType = "driver_configuration"
	// ErrorTypeSessionAcquisition means a browser session could not be started for one source
	ErrorTypeSessionAcquisition ErrorType = "session_acquisition"
	// ErrorTypeSourceTimeout means the listing markup never appeared within the wait window
	ErrorTypeSourceTimeout ErrorType = "source_timeout"
	// ErrorTypeNavigation represents navigation and page interaction errors
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeNodeExtraction means one listing node could not be turned into a record
	ErrorTypeNodeExtraction ErrorType = "node_extraction"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
)

// ScrapeError represents a scraper-specific error
type ScrapeError struct {
	Type    ErrorType
	Source  string
	Message string
	URL     string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	prefix := fmt.Sprintf("[%s]", e.Type)
	if e.Source != "" {
		prefix += " " + e.Source + ":"
	}
	msg := prefix + " " + e.Message
	if e.URL != "" {
		msg += " (" + e.URL + ")"
	}
	if e.Err != nil {
		msg += " - " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error aborts the whole aggregate.
// Everything other than a driver misconfiguration is scoped to a node or a source.
func (e *ScrapeError) IsFatal() bool {
	return e.Type == ErrorTypeDriverConfiguration
}

// WithURL returns the error annotated with the page it concerns
func (e *ScrapeError) WithURL(url string) *ScrapeError {
	e.URL = url
	return e
}

// New creates a new ScrapeError
func New(errType ErrorType, source, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewDriverConfiguration creates a new driver configuration error
func NewDriverConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeDriverConfiguration, "", message, err)
}

// NewSessionAcquisition creates a new session acquisition error
func NewSessionAcquisition(source, message string, err error) *ScrapeError {
	return New(ErrorTypeSessionAcquisition, source, message, err)
}

// NewSourceTimeout creates a new listing wait timeout error
func NewSourceTimeout(source string, waited time.Duration, err error) *ScrapeError {
	return New(ErrorTypeSourceTimeout, source, fmt.Sprintf("listings did not appear within %v", waited), err)
}

// NewNavigation creates a new navigation error
func NewNavigation(source, message string, err error) *ScrapeError {
	return New(ErrorTypeNavigation, source, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewNodeExtraction creates a new node extraction error
func NewNodeExtraction(source, message string, err error) *ScrapeError {
	return New(ErrorTypeNodeExtraction, source, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, source, message, err)
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *ScrapeError {
	return New(ErrorTypeValidation, source, message, nil)
}

// TypeOf returns the ErrorType of the first ScrapeError in err's chain, or "" when there is none
func TypeOf(err error) ErrorType {
	var scrapeErr *ScrapeError
	if stderrors.As(err, &scrapeErr) {
		return scrapeErr.Type
	}
	return ""
}

// Is reports whether err carries a ScrapeError of the given type
func Is(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}
