package formatenforcer

import (
	"fmt"
	"strings"

	"github.com/kaptinlin/go-i18n"
)

// EvaluationError represents a schema-construction usage error (spec §7):
// a problem with the declared format itself, reported to the caller rather
// than discovered mid-generation.
type EvaluationError struct {
	Keyword string         `json:"keyword"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params"`

	// cause is the package-level sentinel this error represents, so
	// callers that only care "was this an ErrReferenceResolution" can
	// still use errors.Is/errors.As against the richer, localizable value.
	cause error
}

// NewEvaluationError creates a new evaluation error with the specified details.
func NewEvaluationError(keyword, code, message string, params ...map[string]any) *EvaluationError {
	e := &EvaluationError{Keyword: keyword, Code: code, Message: message}
	if len(params) > 0 {
		e.Params = params[0]
	}
	return e
}

// newSentinelEvaluationError is like NewEvaluationError but also records
// cause as the error errors.Is/errors.As unwraps to.
func newSentinelEvaluationError(cause error, keyword, code, message string, params map[string]any) *EvaluationError {
	e := NewEvaluationError(keyword, code, message, params)
	e.cause = cause
	return e
}

func (e *EvaluationError) Error() string {
	return replace(e.Message, e.Params)
}

// Unwrap lets errors.Is/errors.As see through to the sentinel this
// EvaluationError was constructed from, when there is one.
func (e *EvaluationError) Unwrap() error {
	return e.cause
}

// Localize returns a localized error message using the provided localizer,
// falling back to the English template when localizer is nil.
func (e *EvaluationError) Localize(localizer *i18n.Localizer) string {
	if localizer != nil {
		return localizer.Get(e.Code, i18n.Vars(e.Params))
	}
	return e.Error()
}

// replace substitutes {key} placeholders in a template string with params.
func replace(template string, params map[string]any) string {
	for key, value := range params {
		placeholder := "{" + key + "}"
		template = strings.ReplaceAll(template, placeholder, fmt.Sprint(value))
	}
	return template
}
