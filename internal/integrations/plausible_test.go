package integrations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPlausibleClient(baseURL string) *PlausibleClient {
	return &PlausibleClient{
		BaseURL:    baseURL,
		HTTPClient: http.DefaultClient,
		Logger:     zap.NewNop(),
	}
}

func TestPlausibleClient_FetchSiteStats(t *testing.T) {
	ctx := context.Background()

	t.Run("returns aggregate and breakdown", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch {
			case strings.Contains(r.URL.Path, "/aggregate"):
				assert.Equal(t, "example.com", r.URL.Query().Get("site_id"))
				assert.Equal(t, "7d", r.URL.Query().Get("period"))
				w.Write([]byte(`{"results":{"pageviews":{"value":8400},"visitors":{"value":2100}}}`))
			case strings.Contains(r.URL.Path, "/breakdown"):
				assert.Equal(t, "visit:source", r.URL.Query().Get("property"))
				w.Write([]byte(`{"results":[{"source":"Google","visitors":900},{"source":"Twitter","visitors":400}]}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		stats, err := newPlausibleClient(srv.URL).FetchSiteStats(ctx, "key", "example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(8400), stats.Pageviews)
		assert.Equal(t, int64(2100), stats.Visitors)
		require.Len(t, stats.TopSources, 2)
		assert.Equal(t, "Google", stats.TopSources[0].Source)
	})

	t.Run("breakdown failure degrades to empty sources", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, "/aggregate") {
				w.Write([]byte(`{"results":{"pageviews":{"value":100},"visitors":{"value":40}}}`))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		stats, err := newPlausibleClient(srv.URL).FetchSiteStats(ctx, "key", "example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(100), stats.Pageviews)
		assert.Empty(t, stats.TopSources)
		assert.NotNil(t, stats.TopSources)
	})

	t.Run("aggregate failure fails the fetch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := newPlausibleClient(srv.URL).FetchSiteStats(ctx, "badkey", "example.com")
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, http.StatusUnauthorized, perr.StatusCode)
	})

	t.Run("missing credentials fails before any request", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
		}))
		defer srv.Close()

		_, err := newPlausibleClient(srv.URL).FetchSiteStats(ctx, "key", "")
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, ProviderPlausible, cerr.Provider)
		assert.Zero(t, calls)
	})
}
