package classifier

import (
	"context"
	"errors"
	"net/http"
)

// countsAgainstBreaker ignores caller cancellations and 4xx replies, which
// say nothing about the health of the service.
func countsAgainstBreaker(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError || statusErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}
