// Package apperr defines the application error taxonomy shared by the
// analysis services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
)

// Kind classifies an error so the HTTP layer can map it to a status code
// without inspecting messages.
type Kind string

const (
	KindInvalidParams     Kind = "invalid_params"
	KindNoData            Kind = "no_data"
	KindExternalService   Kind = "external_service"
	KindMalformedResponse Kind = "malformed_response"
	KindInternal          Kind = "internal"
)

// Error wraps errbuilder with the kind and HTTP status the transport layer
// needs to build a response.
type Error struct {
	*errbuilder.ErrBuilder
	Kind       Kind
	HTTPStatus int
	Timestamp  time.Time
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.ErrBuilder.Msg)
}

func (e *Error) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

func newError(builder *errbuilder.ErrBuilder, kind Kind, status int) *Error {
	return &Error{
		ErrBuilder: builder,
		Kind:       kind,
		HTTPStatus: status,
		Timestamp:  time.Now(),
	}
}

// InvalidParams reports a request the caller can fix. Details keys end up in
// the errbuilder detail map.
func InvalidParams(msg string, details map[string]string) *Error {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
	if len(details) > 0 {
		errorMap := errbuilder.ErrorMap{}
		for field, reason := range details {
			errorMap.Set(field, errors.New(reason))
		}
		builder = builder.WithDetails(errbuilder.NewErrDetails(errorMap))
	}
	return newError(builder, KindInvalidParams, http.StatusBadRequest)
}

// NoData reports a lookup that matched nothing.
func NoData(resource, id string) *Error {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("resource", errors.New(resource))
	builder := errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("%s not found: %s", resource, id)).
		WithDetails(errbuilder.NewErrDetails(errorMap))
	return newError(builder, KindNoData, http.StatusNotFound)
}

// ExternalService reports an upstream dependency that failed or refused.
func ExternalService(service string, cause error) *Error {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("service", errors.New(service))
	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(fmt.Sprintf("%s unavailable", service)).
		WithDetails(errbuilder.NewErrDetails(errorMap))
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newError(builder, KindExternalService, http.StatusBadGateway)
}

// MalformedResponse reports an upstream that answered with data we could not
// decode into the expected shape.
func MalformedResponse(service string, cause error) *Error {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("service", errors.New(service))
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("%s returned an unreadable response", service)).
		WithDetails(errbuilder.NewErrDetails(errorMap))
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newError(builder, KindMalformedResponse, http.StatusBadGateway)
}

// Internal reports a broken invariant inside this process.
func Internal(msg string, cause error) *Error {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(msg)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newError(builder, KindInternal, http.StatusInternalServerError)
}

// KindOf extracts the Kind from any error in the chain, defaulting to
// KindInternal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusOf maps an error to the HTTP status the handler should emit.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the human-readable message without the kind prefix, for
// rendering in API responses.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.ErrBuilder.Msg
	}
	return err.Error()
}
