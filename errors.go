package folioapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorKind classifies where in the pipeline a request failed. Every stage
// fails with its own kind so that, for example, a malformed stats field is
// never reported as a store failure.
type ErrorKind int

const (
	// KindBadRequest covers missing or invalid fields, malformed
	// identifiers, and malformed structured fields.
	KindBadRequest ErrorKind = iota
	// KindNotFound means a well-formed identifier matched nothing.
	KindNotFound
	// KindStore is a store-level constraint violation on write.
	KindStore
	// KindUpstream is a failure of an external collaborator (asset host).
	KindUpstream
	// KindInternal is everything else; detail is logged, never returned.
	KindInternal
)

// Error is the single result type returned by every pipeline stage.
// Details, when present, enumerate each offending field so a caller can
// fix all of them in one round trip.
type Error struct {
	Kind    ErrorKind
	Message string
	Details []string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func (k ErrorKind) status() int {
	switch k {
	case KindBadRequest, KindStore:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(msg string, details ...string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg, Details: details}
}

func notFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func storeError(details []string) *Error {
	return &Error{Kind: KindStore, Message: "Validation failed", Details: details}
}

func upstream(msg string, cause error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, cause: cause}
}

func internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", cause: cause}
}

// httpErrorHandler maps pipeline errors to JSON responses. Client-caused
// failures carry their enumerated details; 5xx detail stays in the log.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Kind.status() >= 500 {
			c.Logger().Errorf("%v", apiErr)
		}
		body := map[string]any{"error": apiErr.Message}
		if len(apiErr.Details) > 0 {
			body["details"] = apiErr.Details
		}
		_ = c.JSON(apiErr.Kind.status(), body)
		return
	}
	if he, ok := err.(*echo.HTTPError); ok {
		msg := fmt.Sprintf("%v", he.Message)
		if he.Code == http.StatusNotFound {
			msg = "Route not found"
		}
		if he.Code >= 500 {
			c.Logger().Errorf("server error: %v", err)
		}
		_ = c.JSON(he.Code, map[string]any{"error": msg})
		return
	}
	c.Logger().Errorf("unhandled error: %v", err)
	_ = c.JSON(http.StatusInternalServerError, map[string]any{"error": "Internal server error"})
}
