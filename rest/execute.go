package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/IvanTurko/carsite-client-go/internal/httpx"
	"github.com/IvanTurko/carsite-client-go/sdkerr"
	"github.com/IvanTurko/carsite-client-go/transport"
	"github.com/google/uuid"
)

// errTimedOut is the cancellation cause set by the request timer.
var errTimedOut = errors.New("request timer fired")

// Requester is what the bindings need from a Service. It lets tests and
// wrappers stand in for the real client.
type Requester interface {
	Do(ctx context.Context, call Call) (*Result, error)
}

var _ Requester = (*Service)(nil)

// Call describes one request.
type Call struct {
	// Method defaults to GET.
	Method string
	// Path is resolved against the base URL unless it is absolute.
	Path   string
	Params Params
	// Body is ignored for GET. Strings, []byte and json.RawMessage are sent
	// as-is; anything else is JSON-encoded.
	Body    any
	Headers http.Header
}

// Result is a successful response.
type Result struct {
	Status int
	Header http.Header
	Raw    []byte
	// Parsed is the decoded JSON value for JSON responses, the body text
	// otherwise. It is nil when a JSON body is empty or malformed.
	Parsed any
	JSON   bool
}

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// Do executes call.
//
// Failures are reported as follows:
//   - non-2xx response: *sdkerr.APIError with the status and parsed body
//   - no response before the timeout: *sdkerr.APIError with Status 0 and
//     Message "Request timed out"
//   - ctx cancelled by the caller: the transport's error, unchanged
//   - any other transport failure: *sdkerr.APIError with Status 0
//   - invalid input (method, params, body): *sdkerr.SDKError of kind ErrValidation
func (s *Service) Do(ctx context.Context, call Call) (*Result, error) {
	const op = "Service.Do"

	method := strings.ToUpper(call.Method)
	if method == "" {
		method = http.MethodGet
	}
	if _, ok := allowedMethods[method]; !ok {
		return nil, sdkerr.New(subsys, op, sdkerr.ErrValidation).
			WithMessagef("unsupported method %q", call.Method)
	}

	body, err := encodeBody(method, call.Body)
	if err != nil {
		return nil, sdkerr.New(subsys, op, sdkerr.ErrValidation).
			WithMessage("request body is not JSON-encodable").
			WithCause(err)
	}

	req, err := httpx.NewRequestBuilder(s.baseURL).
		WithMethod(method).
		WithPath(call.Path).
		WithParams(call.Params).
		WithHeaders(s.composeHeaders(call.Headers)).
		WithBody(body).
		Build()
	if err != nil {
		return nil, sdkerr.New(subsys, op, sdkerr.ErrValidation).
			WithMessage("cannot build request url").
			WithCause(err)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			return nil, sdkerr.New(subsys, op, sdkerr.ErrRequestFailed).
				WithMessage("rate limiter refused request").
				WithCause(err)
		}
	}

	resp, err := s.send(ctx, req)
	if err != nil {
		return nil, err
	}

	parsed := parseBody(resp)
	if !resp.OK() {
		apiErr := sdkerr.NewHTTPError(method, req.FullURL, resp.StatusCode, resp.Status, parsed)
		s.errorf("%s %s failed: %d %s", method, req.FullURL, apiErr.Status, apiErr.Message)
		return nil, apiErr
	}

	return &Result{
		Status: resp.StatusCode,
		Header: resp.Headers,
		Raw:    resp.Body,
		Parsed: parsed,
		JSON:   resp.IsJSON(),
	}, nil
}

// send runs the exchange under the request timer. The timer is stopped as
// soon as headers arrive, so it never fires during body reads.
func (s *Service) send(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	reqCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	timer := time.AfterFunc(s.timeout, func() { cancel(errTimedOut) })
	req.OnHeaders = func() { timer.Stop() }

	start := time.Now()
	resp, err := s.client.Do(reqCtx, req)
	timer.Stop()

	if err != nil {
		switch {
		case errors.Is(context.Cause(reqCtx), errTimedOut):
			s.errorf("%s %s timed out after %s", req.Method, req.FullURL, s.timeout)
			return nil, sdkerr.NewTimeoutError(req.Method, req.FullURL)
		case ctx.Err() != nil:
			s.debugf("%s %s cancelled by caller: %v", req.Method, req.FullURL, err)
			return nil, err
		default:
			s.errorf("%s %s transport failure: %v", req.Method, req.FullURL, err)
			return nil, sdkerr.NewTransportError(req.Method, req.FullURL, err)
		}
	}

	s.debugf("%s %s => %d (%s)", req.Method, req.FullURL, resp.StatusCode, time.Since(start))
	return resp, nil
}

func encodeBody(method string, body any) (io.Reader, error) {
	if body == nil || method == http.MethodGet {
		return nil, nil
	}
	switch b := body.(type) {
	case string:
		return strings.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// parseBody decodes JSON responses and returns text otherwise. A JSON body
// that fails to parse is treated as absent.
func parseBody(resp *transport.Response) any {
	if resp.IsJSON() {
		if len(bytes.TrimSpace(resp.Body)) == 0 {
			return nil
		}
		var v any
		if err := json.Unmarshal(resp.Body, &v); err != nil {
			return nil
		}
		return v
	}
	return string(resp.Body)
}

func newRequestID() string {
	return uuid.NewString()
}
