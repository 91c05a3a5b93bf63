package error

import "net/http"

// ConflictError signals a retryable write conflict (e.g. a concurrent
// session update). Providers treat the 409 as a redelivery hint.
type ConflictError string

func (err ConflictError) Error() string {
	return string(err)
}

func (err ConflictError) ErrCode() string {
	return "CONFLICT_ERROR"
}

func (err ConflictError) StatusCode() int {
	return http.StatusConflict
}
