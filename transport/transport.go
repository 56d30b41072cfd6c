// Package transport defines the seam between the request service and the
// network. The default implementation lives in internal/httpx; tests and
// callers may inject their own.
package transport

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
)

// HTTPClient executes a single HTTP exchange.
type HTTPClient interface {
	// Do executes req. Implementations must honour ctx cancellation and
	// return the context error (possibly wrapped) when it fires.
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Request is the client's lightweight representation of an HTTP request.
type Request struct {
	Method  string
	FullURL string
	Headers http.Header
	Body    io.Reader

	// OnHeaders, when set, is called once as soon as the response status
	// and headers are available, before the body is read.
	OnHeaders func()
}

// Response is the fully-buffered result of an HTTP request.
type Response struct {
	Body       []byte
	StatusCode int
	Status     string
	Headers    http.Header
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsJSON reports whether the declared content type is JSON
// (application/json or any +json suffix type).
func (r *Response) IsJSON() bool {
	ct := r.Headers.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.Contains(strings.ToLower(ct), "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
