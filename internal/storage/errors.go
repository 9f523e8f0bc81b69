package storage

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

// TransportError reports a non-success response or a network failure.
type TransportError struct {
	Op         string
	Path       string
	StatusCode int    // 0 for network failures
	Body       string // First bytes of the response body
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("storage: %s %s: status %d: %s", e.Op, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

const maxErrorBody = 256

func statusError(op, path string, resp *resty.Response) *TransportError {
	body := resp.String()
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &TransportError{Op: op, Path: path, StatusCode: resp.StatusCode(), Body: body}
}
