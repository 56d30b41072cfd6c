package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/IvanTurko/carsite-client-go/transport"
	"github.com/stretchr/testify/require"
)

func ExtractQuery(t *testing.T, fullURL string) url.Values {
	t.Helper()
	parsed, err := url.Parse(fullURL)
	require.NoError(t, err)
	return parsed.Query()
}

// ReadBody drains req.Body, returning "" when there is none.
func ReadBody(t *testing.T, req *transport.Request) string {
	t.Helper()
	if req.Body == nil {
		return ""
	}
	b, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	return string(b)
}

// FakeHTTPClient delegates to DoFunc and records every request it sees.
type FakeHTTPClient struct {
	DoFunc func(ctx context.Context, req *transport.Request) (*transport.Response, error)

	mu       sync.Mutex
	requests []*transport.Request
}

func (f *FakeHTTPClient) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.DoFunc(ctx, req)
}

// Requests returns a snapshot of the recorded requests.
func (f *FakeHTTPClient) Requests() []*transport.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*transport.Request(nil), f.requests...)
}

// Calls returns how many requests were issued.
func (f *FakeHTTPClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// JSONResponse builds a response with a JSON content type. v is marshalled
// unless it is already a string.
func JSONResponse(t *testing.T, status int, v any) *transport.Response {
	t.Helper()
	var body []byte
	switch b := v.(type) {
	case string:
		body = []byte(b)
	case nil:
	default:
		var err error
		body, err = json.Marshal(v)
		require.NoError(t, err)
	}
	return &transport.Response{
		StatusCode: status,
		Status:     statusLine(status),
		Headers:    http.Header{"Content-Type": []string{"application/json; charset=utf-8"}},
		Body:       body,
	}
}

// TextResponse builds a text/plain response.
func TextResponse(status int, body string) *transport.Response {
	return &transport.Response{
		StatusCode: status,
		Status:     statusLine(status),
		Headers:    http.Header{"Content-Type": []string{"text/plain; charset=utf-8"}},
		Body:       []byte(body),
	}
}

// BlockUntilDone returns a DoFunc that never answers and reports ctx's error,
// the way a real transport behaves when its request is aborted.
func BlockUntilDone() func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	return func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		<-ctx.Done()
		return nil, &url.Error{Op: req.Method, URL: req.FullURL, Err: ctx.Err()}
	}
}

// statusLine formats status the way net/http reports Response.Status.
func statusLine(status int) string {
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}
