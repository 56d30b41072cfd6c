package httpx

import (
	"context"
	"io"
	"net/http"

	"github.com/IvanTurko/carsite-client-go/transport"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultHTTPClient adapts a net/http client to transport.HTTPClient.
type DefaultHTTPClient struct {
	client httpDoer
}

// NewDefaultHTTPClient wraps c. A nil c uses a fresh http.Client without a
// client-level timeout: deadlines are owned by the request service.
func NewDefaultHTTPClient(c *http.Client) *DefaultHTTPClient {
	if c == nil {
		c = &http.Client{}
	}
	return &DefaultHTTPClient{client: c}
}

func (d *DefaultHTTPClient) Do(ctx context.Context, r *transport.Request) (*transport.Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, r.FullURL, r.Body)
	if err != nil {
		return nil, err
	}

	for k, vs := range r.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if r.OnHeaders != nil {
		r.OnHeaders()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &transport.Response{
		Body:       body,
		Headers:    resp.Header,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}, nil
}

var _ transport.HTTPClient = (*DefaultHTTPClient)(nil)
