package integrations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTwitterClient(baseURL string) *TwitterClient {
	return &TwitterClient{
		BaseURL:    baseURL,
		HTTPClient: http.DefaultClient,
		Logger:     zap.NewNop(),
	}
}

func TestTwitterClient_FetchUserMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("returns public metrics", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":{"public_metrics":{"followers_count":1200,"following_count":300,"tweet_count":4500,"listed_count":12}}}`))
		}))
		defer srv.Close()

		um, err := newTwitterClient(srv.URL).FetchUserMetrics(ctx, "token", "builder")
		require.NoError(t, err)
		assert.Equal(t, "/2/users/by/username/builder", gotPath)
		assert.Equal(t, "builder", um.Handle)
		assert.Equal(t, int64(1200), um.Followers)
		assert.Equal(t, int64(4500), um.Tweets)
		assert.Equal(t, int64(12), um.Listed)
	})

	t.Run("strips leading at sign", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(`{"data":{"public_metrics":{"followers_count":1}}}`))
		}))
		defer srv.Close()

		um, err := newTwitterClient(srv.URL).FetchUserMetrics(ctx, "token", "@builder")
		require.NoError(t, err)
		assert.Equal(t, "/2/users/by/username/builder", gotPath)
		assert.Equal(t, "builder", um.Handle)
	})

	t.Run("missing credentials fails before any request", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
		}))
		defer srv.Close()

		_, err := newTwitterClient(srv.URL).FetchUserMetrics(ctx, "", "builder")
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, ProviderTwitter, cerr.Provider)
		assert.Zero(t, calls)
	})

	t.Run("missing public_metrics is a provider error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{}}`))
		}))
		defer srv.Close()

		_, err := newTwitterClient(srv.URL).FetchUserMetrics(ctx, "token", "builder")
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Reason, "public_metrics")
	})

	t.Run("rate limit carries status code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := newTwitterClient(srv.URL).FetchUserMetrics(ctx, "token", "builder")
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
	})
}
