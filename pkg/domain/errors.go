package domain

import "errors"

// Common domain errors
var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrRecommendationFailed  = errors.New("recommendation failed")
	ErrInvalidRecommendation = errors.New("invalid recommendation")
	ErrInvalidProblem        = errors.New("invalid problem description")
	ErrConfigInvalid         = errors.New("invalid configuration")
	ErrUnknownPriority       = errors.New("unknown prompt priority")
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeRecommendationFailed = "RECOMMENDATION_FAILED"
	CodeSessionNotFound      = "SESSION_NOT_FOUND"
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeInternal             = "INTERNAL"
	CodeRateLimited          = "RATE_LIMITED"
)

// RecommendationRetryMessage is the only failure text shown to users when the
// recommendation source fails, whatever the cause.
const RecommendationRetryMessage = "Failed to generate recommendations. Please try again."

// DomainError wraps errors with additional context.
//
//nolint:revive // Name is intentionally verbose to distinguish domain-layer errors
type DomainError struct {
	Err     error
	Code    string
	Message string
	Details map[string]any
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewRecommendationError hides cause behind the generic retry message while
// keeping it reachable through errors.Is and errors.As.
func NewRecommendationError(cause error) *DomainError {
	return &DomainError{
		Err:     errors.Join(ErrRecommendationFailed, cause),
		Code:    CodeRecommendationFailed,
		Message: RecommendationRetryMessage,
	}
}

// ErrorResponse is the JSON error body returned by the HTTP API. Message is
// safe to show to users; TraceID carries the OpenTelemetry trace id when one is
// active.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}
