package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFake = errors.New("fake error")

func TestPromise_Resolve(t *testing.T) {
	p := NewPromise[string]()
	v := "ok"

	go p.Resolve(&v)

	got, err := p.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", *got)

	// settled promises can be awaited again
	got, err = p.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", *got)
}

func TestPromise_SettlesOnce(t *testing.T) {
	p := NewPromise[int]()
	one := 1
	p.Resolve(&one)
	p.Reject(errFake)
	two := 2
	p.Resolve(&two)

	got, err := p.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, *got)
}

func TestPromise_Reject(t *testing.T) {
	p := Rejected[int](errFake)

	_, err := p.Await(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errFake)

	var pe *PromiseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, FromSettlement, pe.Source)
	assert.Equal(t, "promise failed [settlement]: fake error", pe.Error())
}

func TestPromise_AwaitContext(t *testing.T) {
	p := NewPromise[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Await(ctx)

	var pe *PromiseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, FromContext, pe.Source)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-p.Done():
		t.Fatal("promise must still be pending")
	default:
	}
}

func TestResolved(t *testing.T) {
	p := Resolved[int](nil)
	<-p.Done()
	got, err := p.Await(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestPromiseErrSource_String(t *testing.T) {
	assert.Equal(t, "settlement", FromSettlement.String())
	assert.Equal(t, "context", FromContext.String())
	assert.Equal(t, "unknown", FromUnknown.String())
}
