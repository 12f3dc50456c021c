package ports

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunGeneratorContract runs a suite of tests to verify that a Generator
// talking HTTP honours the generation service contract. newGenerator must
// return a Generator targeting the given base URL.
func RunGeneratorContract(t *testing.T, newGenerator func(baseURL string) Generator) {
	ctx := context.Background()

	serve := func(t *testing.T, status int, body string) (Generator, *atomic.Value) {
		t.Helper()
		var query atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/generate" || r.Method != http.MethodGet {
				http.NotFound(w, r)
				return
			}
			query.Store(r.URL.Query().Get("url"))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		t.Cleanup(srv.Close)
		return newGenerator(srv.URL), &query
	}

	t.Run("Success", func(t *testing.T) {
		gen, query := serve(t, http.StatusOK, `{"trip_title":"Tokyo in 3 Days","summary":"...","days":[{"day_number":1,"theme":"Arrival","activities":[{"time":"9:00","activity":"Land","description":"..."}]}]}`)

		it, err := gen.Generate(ctx, "https://youtu.be/abc?t=1&x=a b")
		require.NoError(t, err)
		assert.Equal(t, "https://youtu.be/abc?t=1&x=a b", query.Load(), "url must round-trip verbatim")
		assert.Equal(t, "Tokyo in 3 Days", it.TripTitle)
		require.Len(t, it.Days, 1)
		assert.False(t, it.Days[0].HasImage())
		require.Len(t, it.Days[0].Activities, 1)
	})

	t.Run("Empty itinerary", func(t *testing.T) {
		gen, _ := serve(t, http.StatusOK, `{"trip_title":"X","summary":"","days":[]}`)
		it, err := gen.Generate(ctx, "https://youtu.be/abc")
		require.NoError(t, err)
		assert.Equal(t, "X", it.TripTitle)
		assert.Empty(t, it.Days)
	})

	t.Run("Status with detail", func(t *testing.T) {
		gen, _ := serve(t, http.StatusInternalServerError, `{"detail":"invalid video"}`)
		_, err := gen.Generate(ctx, "https://youtu.be/abc")
		var statusErr *domain.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
		assert.Equal(t, "invalid video", domain.Message(err))
	})

	t.Run("Status without detail", func(t *testing.T) {
		gen, _ := serve(t, http.StatusBadGateway, `<html>bad gateway</html>`)
		_, err := gen.Generate(ctx, "https://youtu.be/abc")
		assert.Equal(t, domain.KindStatus, domain.KindOf(err))
		assert.Equal(t, domain.GenericFailureMessage, domain.Message(err))
	})

	t.Run("Embedded error", func(t *testing.T) {
		gen, _ := serve(t, http.StatusOK, `{"error":"no transcript available"}`)
		it, err := gen.Generate(ctx, "https://youtu.be/abc")
		assert.Nil(t, it)
		assert.Equal(t, domain.KindEmbedded, domain.KindOf(err))
		assert.Equal(t, "no transcript available", domain.Message(err))
	})

	t.Run("Malformed success body", func(t *testing.T) {
		gen, _ := serve(t, http.StatusOK, `not json`)
		_, err := gen.Generate(ctx, "https://youtu.be/abc")
		assert.Equal(t, domain.KindDecode, domain.KindOf(err))
		assert.NotEmpty(t, domain.Message(err))
	})

	t.Run("Success body of the wrong shape", func(t *testing.T) {
		for _, body := range []string{`[]`, `"hello"`, `42`, `null`, `{"days":"soon"}`} {
			gen, _ := serve(t, http.StatusOK, body)
			it, err := gen.Generate(ctx, "https://youtu.be/abc")
			require.NoError(t, err, body)
			require.NotNil(t, it, body)
			assert.Empty(t, it.Days, body)
		}
	})

	t.Run("Transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()

		_, err := newGenerator(base).Generate(ctx, "https://youtu.be/abc")
		assert.Equal(t, domain.KindTransport, domain.KindOf(err))
		assert.NotEmpty(t, domain.Message(err))
	})

	t.Run("No memoization", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte(`{"trip_title":"X","days":[]}`))
		}))
		t.Cleanup(srv.Close)

		gen := newGenerator(srv.URL)
		_, err := gen.Generate(ctx, "https://youtu.be/abc")
		require.NoError(t, err)
		_, err = gen.Generate(ctx, "https://youtu.be/abc")
		require.NoError(t, err)
		assert.Equal(t, int32(2), hits.Load())
	})
}
