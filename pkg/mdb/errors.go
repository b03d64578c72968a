package mdb

import (
	"errors"
	"fmt"
	"net/http"
)

// RequestError is returned for any non-2xx response. The parsed JSON error
// body is kept when the server sent one, the raw text otherwise.
type RequestError struct {
	URI        string
	StatusCode int
	Body       any // parsed JSON error body, or raw string
	Payload    any // request payload for POST/PUT, nil for GET/DELETE
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("mdb: http %d for %s: %v", e.StatusCode, e.URI, e.Body)
}

// RelationNotFoundError is returned when a resource's links section does not
// contain the requested relation. No network request has been issued.
type RelationNotFoundError struct {
	Rel   string
	ResID string
}

func (e *RelationNotFoundError) Error() string {
	return fmt.Sprintf("mdb: relation %q not found in %s", e.Rel, e.ResID)
}

// DecodeError is returned when a response body cannot be interpreted as the
// JSON shape the caller asked for.
type DecodeError struct {
	URI         string
	ContentType string
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("mdb: decoding %s response from %s: %v", e.ContentType, e.URI, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MultipleMatchesError is returned by lookups that expect at most one hit.
type MultipleMatchesError struct {
	What string
}

func (e *MultipleMatchesError) Error() string {
	return fmt.Sprintf("mdb: multiple elements match %s", e.What)
}

func statusIs(err error, status int) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == status
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return statusIs(err, http.StatusNotFound)
}

// IsBadRequest reports whether err is a 400 response.
func IsBadRequest(err error) bool {
	return statusIs(err, http.StatusBadRequest)
}

// IsConflict reports whether err is a 409 response.
func IsConflict(err error) bool {
	return statusIs(err, http.StatusConflict)
}

// IsGone reports whether err is a 410 response, meaning the aggregate has
// been deleted on the server.
func IsGone(err error) bool {
	return statusIs(err, http.StatusGone)
}

// IsRelationNotFound reports whether err means a relation lookup failed
// before any request was issued.
func IsRelationNotFound(err error) bool {
	var relErr *RelationNotFoundError
	return errors.As(err, &relErr)
}
