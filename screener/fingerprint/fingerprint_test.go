package fingerprint

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDeterministic(t *testing.T) {
	assert := assert.New(t)

	fp1 := Compute([]byte("some image bytes"))
	fp2 := Compute([]byte("some image bytes"))
	assert.Equal(fp1, fp2)
	assert.Len(fp1, 32)
	assert.Equal(strings.ToLower(fp1), fp1)

	assert.NotEqual(fp1, Compute([]byte("other bytes")))

	// known value for empty input
	assert.Equal("d41d8cd98f00b204e9800998ecf8427e", Compute(nil))
}

func TestFetcherSoftFail(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	f := NewFetcher(slog.Default(), 16)

	// absent URL
	assert.Equal("", f.Fetch(ctx, ""))

	// non-success response
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	assert.Equal("", f.Fetch(ctx, srv.URL+"/missing.png"))
}

func TestFetcherCaches(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("fake png bytes"))
	}))
	defer srv.Close()

	f := NewFetcher(slog.Default(), 16)
	fp1 := f.Fetch(ctx, srv.URL+"/avatar.png")
	fp2 := f.Fetch(ctx, srv.URL+"/avatar.png")

	assert.Equal(Compute([]byte("fake png bytes")), fp1)
	assert.Equal(fp1, fp2)
	assert.Equal(int64(1), hits.Load())
}
