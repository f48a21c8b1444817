// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by handlers.
var (
	ErrNotFound    = errors.New("resource not found")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("service unavailable")
)

// Mapping routes errors matching Err to a problem status.
type Mapping struct {
	Err    error
	Status int
	Title  string
}

var baseMappings = []Mapping{
	{Err: ErrNotFound, Status: http.StatusNotFound, Title: "Not Found"},
	{Err: ErrValidation, Status: http.StatusBadRequest, Title: "Validation Failed"},
	{Err: ErrUnavailable, Status: http.StatusServiceUnavailable, Title: "Service Unavailable"},
}

// RespondError maps err to an RFC7807 response. Caller mappings are checked
// before the package sentinels; anything unmatched is a 500 without detail.
func RespondError(w http.ResponseWriter, err error, mappings ...Mapping) {
	if m, ok := match(err, mappings); ok {
		Problem(w, m.Status, m.Title, err.Error())
		return
	}
	if m, ok := match(err, baseMappings); ok {
		Problem(w, m.Status, m.Title, err.Error())
		return
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

// StatusFor reports the status RespondError would use.
func StatusFor(err error, mappings ...Mapping) int {
	if m, ok := match(err, mappings); ok {
		return m.Status
	}
	if m, ok := match(err, baseMappings); ok {
		return m.Status
	}
	return http.StatusInternalServerError
}

func match(err error, mappings []Mapping) (Mapping, bool) {
	for _, m := range mappings {
		if m.Err != nil && errors.Is(err, m.Err) {
			return m, true
		}
	}
	return Mapping{}, false
}
