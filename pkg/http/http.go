// Package http provides the HTTP transport used to fetch manifests and files.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/glorpus-work/blockfetch/pkg/errors"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "blockfetch/1.0"

// Client is the net/http implementation of Transport.
type Client struct {
	client    *http.Client
	userAgent string
}

// NewClient creates a Client. timeout bounds connection setup and the wait
// for response headers; body transfer is bounded by the request context so
// large files are not cut off mid-stream.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if timeout > 0 {
		tr.ResponseHeaderTimeout = timeout
		tr.TLSHandshakeTimeout = timeout
	}
	return &Client{
		client:    &http.Client{Transport: tr},
		userAgent: userAgent,
	}
}

// Get implements Transport.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", url)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}, nil
}

var _ Transport = (*Client)(nil)
