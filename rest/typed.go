package rest

import (
	"context"
	"encoding"
	"encoding/json"
	"net/http"

	"github.com/IvanTurko/carsite-client-go/sdkerr"
)

// Send executes call and decodes the response body into T.
//
// JSON bodies are unmarshalled into T; a mismatch is an ErrDecodeError.
// Text bodies are assigned when T is string, []byte, any or implements
// encoding.TextUnmarshaler, and left as the zero value otherwise. An absent
// or malformed body yields the zero value without error.
func Send[T any](ctx context.Context, r Requester, call Call) (T, error) {
	var zero T
	res, err := r.Do(ctx, call)
	if err != nil {
		return zero, err
	}
	return Decode[T](res)
}

// SendOptional is Send for callers that must tell an absent body apart from
// a zero value. It returns nil when the response carried no usable body
// (empty or malformed JSON).
func SendOptional[T any](ctx context.Context, r Requester, call Call) (*T, error) {
	res, err := r.Do(ctx, call)
	if err != nil {
		return nil, err
	}
	if res == nil || res.Parsed == nil {
		return nil, nil
	}
	v, err := Decode[T](res)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Get issues a GET. Body is never sent.
func Get[T any](ctx context.Context, r Requester, path string, params Params, headers http.Header) (T, error) {
	return Send[T](ctx, r, Call{Method: http.MethodGet, Path: path, Params: params, Headers: headers})
}

// Post issues a POST with body.
func Post[T any](ctx context.Context, r Requester, path string, body any, headers http.Header) (T, error) {
	return Send[T](ctx, r, Call{Method: http.MethodPost, Path: path, Body: body, Headers: headers})
}

// Put issues a PUT with body.
func Put[T any](ctx context.Context, r Requester, path string, body any, headers http.Header) (T, error) {
	return Send[T](ctx, r, Call{Method: http.MethodPut, Path: path, Body: body, Headers: headers})
}

// Patch issues a PATCH with body.
func Patch[T any](ctx context.Context, r Requester, path string, body any, headers http.Header) (T, error) {
	return Send[T](ctx, r, Call{Method: http.MethodPatch, Path: path, Body: body, Headers: headers})
}

// Delete issues a DELETE carrying only query parameters.
func Delete[T any](ctx context.Context, r Requester, path string, params Params, headers http.Header) (T, error) {
	return Send[T](ctx, r, Call{Method: http.MethodDelete, Path: path, Params: params, Headers: headers})
}

// Decode converts a Result into T using the rules documented on Send.
func Decode[T any](res *Result) (T, error) {
	var out, zero T
	if res == nil || res.Parsed == nil {
		return out, nil
	}

	if res.JSON {
		if err := json.Unmarshal(res.Raw, &out); err != nil {
			return zero, sdkerr.New(subsys, "Decode", sdkerr.ErrDecodeError).
				WithMessagef("cannot decode response into %T", out).
				WithCause(err)
		}
		return out, nil
	}

	text, _ := res.Parsed.(string)
	switch p := any(&out).(type) {
	case *string:
		*p = text
	case *[]byte:
		*p = []byte(text)
	case *any:
		*p = text
	case encoding.TextUnmarshaler:
		if err := p.UnmarshalText([]byte(text)); err != nil {
			return zero, sdkerr.New(subsys, "Decode", sdkerr.ErrDecodeError).
				WithMessagef("cannot decode text response into %T", out).
				WithCause(err)
		}
	}
	return out, nil
}
