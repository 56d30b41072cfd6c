package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/IvanTurko/carsite-client-go/transport"
)

// Param is a single query parameter. A nil Value (or nil pointer) is omitted
// from the built URL.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered query mapping. Order is preserved in the output.
type Params []Param

// P is shorthand for Param{Key: key, Value: value}.
func P(key string, value any) Param {
	return Param{Key: key, Value: value}
}

// Add appends a parameter and returns the extended slice.
func (p Params) Add(key string, value any) Params {
	return append(p, Param{Key: key, Value: value})
}

// ParamsFromMap converts m to Params with keys sorted, so the result is deterministic.
func ParamsFromMap(m map[string]any) Params {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(Params, 0, len(keys))
	for _, k := range keys {
		out = append(out, Param{Key: k, Value: m[k]})
	}
	return out
}

// Values returns the non-nil parameters stringified, keeping their order.
func (p Params) Values() ([]Param, error) {
	out := make([]Param, 0, len(p))
	for _, param := range p {
		s, ok, err := stringify(param.Value)
		if err != nil {
			return nil, fmt.Errorf("query param %q: %w", param.Key, err)
		}
		if !ok {
			continue
		}
		out = append(out, Param{Key: param.Key, Value: s})
	}
	return out, nil
}

var errNotScalar = errors.New("value is not a scalar")

// stringify formats scalar values. ok is false for nil values.
func stringify(v any) (s string, ok bool, err error) {
	if v == nil {
		return "", false, nil
	}
	switch t := v.(type) {
	case string:
		return t, true, nil
	case bool:
		return strconv.FormatBool(t), true, nil
	case fmt.Stringer:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "", false, nil
		}
		return t.String(), true, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true, nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true, nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true, nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true, nil
	case reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return "", false, nil
		}
	}
	return "", false, fmt.Errorf("%w: %T", errNotScalar, v)
}

// BuildURL resolves path against baseURL and appends params.
//
// An absolute path (with scheme and host) is used as-is. A relative path is
// joined onto the base URL's path, so a base of https://h/api and a path of
// /cars yield https://h/api/cars. Query parameters already present on path
// are kept; params are appended after them.
func BuildURL(baseURL, path string, params Params) (string, error) {
	target, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	if !target.IsAbs() {
		base, err := url.Parse(baseURL)
		if err != nil {
			return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
		}
		if base.Scheme == "" || base.Host == "" {
			return "", fmt.Errorf("base url %q must be absolute", baseURL)
		}
		joined := *base
		joined.Path = joinPath(base.Path, target.Path)
		joined.RawPath = ""
		joined.RawQuery = target.RawQuery
		joined.Fragment = target.Fragment
		target = &joined
	}

	values, err := params.Values()
	if err != nil {
		return "", err
	}
	if len(values) > 0 {
		var b strings.Builder
		b.WriteString(target.RawQuery)
		for _, v := range values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(v.Key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v.Value.(string)))
		}
		target.RawQuery = b.String()
	}

	return target.String(), nil
}

func joinPath(basePath, p string) string {
	switch {
	case p == "":
		if basePath == "" {
			return "/"
		}
		return basePath
	case basePath == "" || basePath == "/":
		if strings.HasPrefix(p, "/") {
			return p
		}
		return "/" + p
	default:
		return strings.TrimSuffix(basePath, "/") + "/" + strings.TrimPrefix(p, "/")
	}
}

// RequestBuilder assembles a transport.Request step by step.
type RequestBuilder struct {
	BaseURL string
	Path    string
	Method  string
	Params  Params
	Headers http.Header
	Body    io.Reader
}

func NewRequestBuilder(baseURL string) *RequestBuilder {
	return &RequestBuilder{
		BaseURL: baseURL,
		Headers: make(http.Header),
	}
}

func (b *RequestBuilder) WithPath(path string) *RequestBuilder {
	b.Path = path
	return b
}

func (b *RequestBuilder) WithMethod(method string) *RequestBuilder {
	b.Method = method
	return b
}

func (b *RequestBuilder) WithParams(params Params) *RequestBuilder {
	b.Params = params
	return b
}

func (b *RequestBuilder) WithHeaders(headers http.Header) *RequestBuilder {
	b.Headers = headers
	return b
}

func (b *RequestBuilder) WithBody(body io.Reader) *RequestBuilder {
	b.Body = body
	return b
}

func (b *RequestBuilder) Build() (*transport.Request, error) {
	fullURL, err := BuildURL(b.BaseURL, b.Path, b.Params)
	if err != nil {
		return nil, err
	}
	return &transport.Request{
		Method:  b.Method,
		FullURL: fullURL,
		Headers: b.Headers,
		Body:    b.Body,
	}, nil
}
