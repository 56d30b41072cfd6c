package httpx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/IvanTurko/carsite-client-go/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DefaultHTTPClient_Do(t *testing.T) {
	expectedBody := []byte(`{"ok": true}`)
	expectedStatus := 200
	expectedHeader := http.Header{"Content-Type": []string{"application/json"}}
	expectedMethod := http.MethodPost
	expectedURL := "https://fake.com/auth/login"
	expectedPayload := `{"email":"x"}`

	client := &fakeHttpDoer{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, expectedMethod, req.Method)
			assert.Equal(t, expectedURL, req.URL.String())
			assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))
			assert.Equal(t, []string{"a", "b"}, req.Header.Values("X-Multi"))

			got, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			assert.Equal(t, expectedPayload, string(got))

			return &http.Response{
				StatusCode: expectedStatus,
				Status:     "200 OK",
				Header:     expectedHeader,
				Body:       io.NopCloser(bytes.NewReader(expectedBody)),
			}, nil
		},
	}

	executor := DefaultHTTPClient{client: client}

	headersSeen := 0
	req := &transport.Request{
		Method:  expectedMethod,
		FullURL: expectedURL,
		Headers: http.Header{
			"Authorization": []string{"Bearer abc"},
			"X-Multi":       []string{"a", "b"},
		},
		Body:      strings.NewReader(expectedPayload),
		OnHeaders: func() { headersSeen++ },
	}

	resp, err := executor.Do(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, expectedBody, resp.Body)
	assert.Equal(t, expectedStatus, resp.StatusCode)
	assert.Equal(t, "200 OK", resp.Status)
	assert.Equal(t, expectedHeader, resp.Headers)
	assert.Equal(t, 1, headersSeen)
}

func Test_DefaultHTTPClient_Do_TransportError(t *testing.T) {
	errDial := errors.New("connection refused")
	executor := DefaultHTTPClient{client: &fakeHttpDoer{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errDial
		},
	}}

	called := false
	_, err := executor.Do(context.Background(), &transport.Request{
		Method:    http.MethodGet,
		FullURL:   "https://fake.com/x",
		OnHeaders: func() { called = true },
	})

	assert.ErrorIs(t, err, errDial)
	assert.False(t, called)
}

func Test_DefaultHTTPClient_Do_BadURL(t *testing.T) {
	executor := NewDefaultHTTPClient(nil)
	_, err := executor.Do(context.Background(), &transport.Request{Method: "GET", FullURL: "://bad"})
	assert.Error(t, err)
}

type fakeHttpDoer struct {
	DoFunc func(req *http.Request) (*http.Response, error)
}

func (f *fakeHttpDoer) Do(req *http.Request) (*http.Response, error) {
	return f.DoFunc(req)
}

var _ httpDoer = (*fakeHttpDoer)(nil)
