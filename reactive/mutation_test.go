package reactive

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/IvanTurko/carsite-client-go/internal/testutil"
	"github.com/IvanTurko/carsite-client-go/sdkerr"
	"github.com/IvanTurko/carsite-client-go/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reservation struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	CarModel  string `json:"carModel"`
	Confirmed bool   `json:"confirmed,omitempty"`
}

func TestNewMutation(t *testing.T) {
	svc := newService(t, &testutil.FakeHTTPClient{})

	m, err := NewMutation[reservation, reservation](svc, "/reservations", "")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, m.Method())
	assert.Equal(t, "/reservations", m.Path())

	m, err = NewMutation[reservation, reservation](svc, "/reservations/1", "patch")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, m.Method())

	for _, method := range []string{"GET", "HEAD", "TRACE"} {
		_, err := NewMutation[reservation, reservation](svc, "/reservations", method)
		assert.ErrorIs(t, err, sdkerr.ErrValidation, method)
	}
}

func TestMutation_Success(t *testing.T) {
	fake := &testutil.FakeHTTPClient{
		DoFunc: func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			return testutil.JSONResponse(t, http.StatusCreated, `{"fullName":"Dana","email":"d@example.com","carModel":"GT","confirmed":true}`), nil
		},
	}
	m, err := NewMutation[reservation, reservation](newService(t, fake), "/reservations", http.MethodPost)
	require.NoError(t, err)

	rec := &recorder[reservation]{}
	m.Subscribe(rec.listen)

	got, err := m.Mutate(context.Background(), reservation{FullName: "Dana", Email: "d@example.com", CarModel: "GT"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Confirmed)

	states := rec.all()
	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.Nil(t, states[0].Data)
	assert.False(t, states[1].Loading)
	require.NotNil(t, states[1].Data)
	assert.Equal(t, *got, *states[1].Data)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "https://api.example.com/reservations", reqs[0].FullURL)
	assert.JSONEq(t, `{"fullName":"Dana","email":"d@example.com","carModel":"GT"}`, testutil.ReadBody(t, reqs[0]))
}

func TestMutation_Failure(t *testing.T) {
	status := http.StatusOK
	fake := &testutil.FakeHTTPClient{
		DoFunc: func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			if status != http.StatusOK {
				return testutil.JSONResponse(t, status, map[string]string{"message": "Car model is required"}), nil
			}
			return testutil.JSONResponse(t, status, reservation{FullName: "Dana"}), nil
		},
	}
	m, err := NewMutation[reservation, reservation](newService(t, fake), "/reservations", http.MethodPut)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = m.Mutate(ctx, reservation{FullName: "Dana"})
	require.NoError(t, err)
	require.NotNil(t, m.State().Data)

	status = http.StatusUnprocessableEntity
	got, err := m.Mutate(ctx, reservation{})
	assert.Nil(t, got)
	apiErr, ok := sdkerr.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 422, apiErr.Status)
	assert.Equal(t, "Car model is required", apiErr.Message)

	s := m.State()
	assert.False(t, s.Loading)
	assert.Nil(t, s.Data)
	assert.Same(t, apiErr, s.Err)
}

func TestMutation_DeleteIgnoresBody(t *testing.T) {
	fake := &testutil.FakeHTTPClient{
		DoFunc: func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			return testutil.JSONResponse(t, http.StatusNoContent, nil), nil
		},
	}
	m, err := NewMutation[reservation, reservation](newService(t, fake), "/reservations/9", http.MethodDelete)
	require.NoError(t, err)

	got, err := m.Mutate(context.Background(), reservation{FullName: "ignored"})
	require.NoError(t, err)
	assert.Nil(t, got, "no body means no result")

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodDelete, reqs[0].Method)
	assert.Nil(t, reqs[0].Body)

	s := m.State()
	assert.False(t, s.Loading)
	assert.Nil(t, s.Err)
	assert.Nil(t, s.Data)
}

func TestMutation_EmptyBodyAfterData(t *testing.T) {
	empty := false
	fake := &testutil.FakeHTTPClient{
		DoFunc: func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			if empty {
				return testutil.JSONResponse(t, http.StatusOK, nil), nil
			}
			return testutil.JSONResponse(t, http.StatusOK, reservation{FullName: "Dana"}), nil
		},
	}
	m, err := NewMutation[reservation, reservation](newService(t, fake), "/reservations/1", http.MethodPatch)
	require.NoError(t, err)
	ctx := context.Background()

	got, err := m.Mutate(ctx, reservation{FullName: "Dana"})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, m.State().Data)

	empty = true
	got, err = m.Mutate(ctx, reservation{FullName: "Dana"})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Nil(t, m.State().Data)
	assert.Nil(t, m.State().Err)
}

func TestMutation_ListenerMayMutateAgain(t *testing.T) {
	fake := &testutil.FakeHTTPClient{
		DoFunc: func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			return testutil.JSONResponse(t, http.StatusCreated, reservation{FullName: "Dana"}), nil
		},
	}
	m, err := NewMutation[reservation, reservation](newService(t, fake), "/reservations", "")
	require.NoError(t, err)
	ctx := context.Background()

	var settled []bool
	again := true
	m.Subscribe(func(s State[reservation]) {
		settled = append(settled, !s.Loading)
		if !s.Loading && again {
			again = false
			_, err := m.Mutate(ctx, reservation{FullName: "Dana"})
			assert.NoError(t, err)
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := m.Mutate(ctx, reservation{FullName: "Dana"})
		assert.NoError(t, err)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("mutate from a listener did not return")
	}

	assert.Equal(t, 2, fake.Calls())
	assert.Equal(t, []bool{false, true, false, true}, settled)
	assert.False(t, m.State().Loading)
}

func TestMutation_CanceledContext(t *testing.T) {
	fake := &testutil.FakeHTTPClient{DoFunc: testutil.BlockUntilDone()}
	m, err := NewMutation[reservation, reservation](newService(t, fake), "/reservations", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.Mutate(ctx, reservation{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, m.State().Loading)
	assert.Equal(t, err, m.State().Err)
}
