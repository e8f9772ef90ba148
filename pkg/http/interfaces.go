//go:generate mockgen -destination=mocks/http.go . Transport
package http

import (
	"context"
	"io"
)

// Response is the part of an HTTP response the fetchers consume.
// The caller must close Body.
type Response struct {
	StatusCode int
	Body       io.ReadCloser
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport is the "GET url → status and byte stream" capability used by the
// manifest store and the download orchestrator.
type Transport interface {
	// Get issues a GET request. A non-2xx status is not an error at this
	// level; the response is returned for the caller to classify.
	Get(ctx context.Context, url string) (*Response, error)
}
