package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedwatch/sourcegrid/pkg/cache"
	apperr "github.com/feedwatch/sourcegrid/pkg/errors"
)

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithRetry(3, time.Millisecond)}, opts...)
	c, err := New(srv.URL+"/", opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew(t *testing.T) {
	c, err := New("http://api.local:8000///")
	require.NoError(t, err)
	assert.Equal(t, "http://api.local:8000", c.BaseURL())

	for _, bad := range []string{"", "ftp://api.local", "localhost:8000", "http://"} {
		_, err := New(bad)
		assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidURL), "New(%q) error = %v", bad, err)
	}
}

func TestSourceQueryPath(t *testing.T) {
	tests := []struct {
		name string
		q    SourceQuery
		want string
	}{
		{"defaults", SourceQuery{}, "/sources/?limit=50&offset=0"},
		{"paged", SourceQuery{Limit: 20, Offset: 40}, "/sources/?limit=20&offset=40"},
		{"feed", SourceQuery{FeedID: 3}, "/sources/feeds/3?limit=50&offset=0"},
		{"company", SourceQuery{CompanyID: 9}, "/sources/companies/9?limit=50&offset=0"},
		{"feed wins", SourceQuery{FeedID: 3, CompanyID: 9}, "/sources/feeds/3?limit=50&offset=0"},
		{"negative offset", SourceQuery{Offset: -5}, "/sources/?limit=50&offset=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.path())
		})
	}
}

func TestListSources(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/sources/companies/4", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "20", r.URL.Query().Get("offset"))
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{
				{"id": 1, "title": "a", "url": "https://a", "image_url": "https://img/a.jpg", "company_names": []string{"AFP"}},
				{"id": 2, "title": "b", "url": "https://b", "image_url": nil},
			},
			"total": 42, "limit": 10, "offset": 20,
		})
	}))

	page, err := c.ListSources(context.Background(), SourceQuery{CompanyID: 4, Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 42, page.Total)
	assert.True(t, page.Items[0].HasBanner())
	assert.False(t, page.Items[1].HasBanner())
	assert.Equal(t, "AFP", page.Items[0].Companies())
}

func TestListSourcesNullItems(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":null,"total":0,"limit":50,"offset":0}`)
	}))

	page, err := c.ListSources(context.Background(), SourceQuery{})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		status      int
		body        string
		wantMsg     string
		wantCode    apperr.Code
	}{
		{"message field", "application/json", 400, `{"message":"bad limit","detail":"ignored"}`, "bad limit", apperr.ErrCodeInvalidInput},
		{"detail field", "application/json", 404, `{"detail":"Source not found"}`, "Source not found", apperr.ErrCodeNotFound},
		{"non-string detail", "application/json", 422, `{"detail":[{"loc":["query","limit"]}]}`, "Request failed with status 422", apperr.ErrCodeInvalidInput},
		{"plain text", "text/plain", 403, "nope", "nope", apperr.ErrCodeForbidden},
		{"empty body", "text/plain", 401, "", "Request failed with status 401", apperr.ErrCodeUnauthorized},
		{"malformed json", "application/json", 429, "{", "Request failed with status 429", apperr.ErrCodeRateLimited},
		{"teapot", "application/json", 418, `{}`, "Request failed with status 418", apperr.ErrCodeUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))

			_, err := c.ListFeeds(context.Background(), true)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.GetCode(err))
			assert.Equal(t, tt.wantMsg, apperr.UserMessage(err))

			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.status, StatusCode(err))
		})
	}
}

func TestPlainTextPayload(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "boom")
	}))

	_, err := c.SyncFeeds(context.Background())
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"message": "boom"}, apiErr.Payload)
}

func TestGetSourceNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sources/9", r.URL.Path)
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Source not found"})
	}))

	_, err := c.GetSource(context.Background(), 9, false)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrCodeSourceNotFound))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Equal(t, http.StatusNotFound, apperr.HTTPStatus(err))
}

func TestGetSourceInvalidID(t *testing.T) {
	c, err := New("http://api.local")
	require.NoError(t, err)
	_, err = c.GetSource(context.Background(), 0, false)
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput))
}

func TestGetSource(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 5, "title": "t", "url": "https://x", "feed_sections": []string{"world", "tech"},
		})
	}))

	d, err := c.GetSource(context.Background(), 5, false)
	require.NoError(t, err)
	assert.Equal(t, int64(5), d.ID)
	assert.Equal(t, []string{"world", "tech"}, d.FeedSections)
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "warming up"})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "url": "https://f"}})
	}))

	feeds, err := c.ListFeeds(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, feeds, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadGateway, map[string]string{"detail": "db down"})
	}))

	_, err := c.ListFeeds(context.Background(), true)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, apperr.ErrCodeUpstream, apperr.GetCode(err))
	assert.Equal(t, "db down", apperr.UserMessage(err))
}

func TestMutationsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "ingest crashed"})
	}))

	_, err := c.IngestSources(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIngestSourcesBody(t *testing.T) {
	tests := []struct {
		name     string
		ids      []int64
		wantBody string
		wantCT   string
	}{
		{"all feeds", nil, "", ""},
		{"selected feeds", []int64{3, 7}, `{"feed_ids":[3,7]}`, "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/sources/ingest", r.URL.Path)
				body, _ := io.ReadAll(r.Body)
				assert.Equal(t, tt.wantBody, string(body))
				assert.Equal(t, tt.wantCT, r.Header.Get("Content-Type"))
				writeJSON(w, http.StatusOK, map[string]any{
					"status": "completed", "feeds_processed": 2, "sources_created": 5,
					"errors": []map[string]any{}, "duration_ms": 120,
				})
			}))

			res, err := c.IngestSources(context.Background(), tt.ids...)
			require.NoError(t, err)
			assert.Equal(t, "completed", res.Status)
			assert.Equal(t, 5, res.SourcesCreated)
			assert.Equal(t, int64(120), res.DurationMS)
		})
	}
}

func TestCheckFeeds(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rss/feeds/check", r.URL.Path)
		assert.Equal(t, []string{"1", "2"}, r.URL.Query()["feed_ids"])
		writeJSON(w, http.StatusOK, []map[string]any{
			{"feed_id": 2, "url": "https://f/2", "error": "timeout", "fetchprotection": 1},
		})
	}))

	res, err := c.CheckFeeds(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.NotNil(t, res[0].FetchProtection)
	assert.Equal(t, 1, *res[0].FetchProtection)
}

func TestCheckAllFeeds(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, []any{})
	}))

	res, err := c.CheckFeeds(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSetFeedEnabled(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/rss/feeds/12/enabled", r.URL.Path)
		var body map[string]bool
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]bool{"enabled": false}, body)
		writeJSON(w, http.StatusOK, map[string]any{"feed_id": 12, "enabled": false})
	}))

	res, err := c.SetFeedEnabled(context.Background(), 12, false)
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.FeedID)
	assert.False(t, res.Enabled)
}

func TestSetFeedEnabledNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Feed not found"})
	}))

	_, err := c.SetFeedEnabled(context.Background(), 12, true)
	assert.True(t, apperr.Is(err, apperr.ErrCodeFeedNotFound))
}

func TestSetCompanyEnabled(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rss/companies/3/enabled", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"company_id": 3, "enabled": true})
	}))

	res, err := c.SetCompanyEnabled(context.Background(), 3, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.CompanyID)
	assert.True(t, res.Enabled)
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health/", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
	}))

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
}

func TestCachedReads(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "url": "https://f"}})
	}), WithCache(fc, time.Minute))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		feeds, err := c.ListFeeds(ctx, false)
		require.NoError(t, err)
		assert.Len(t, feeds, 1)
	}
	assert.Equal(t, int32(1), calls.Load())

	_, err = c.ListFeeds(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHeaders(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sourcegrid-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}), WithHeaders(map[string]string{"User-Agent": "sourcegrid-test"}))

	_, err := c.Health(context.Background())
	require.NoError(t, err)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, WithRetry(2, time.Millisecond))
	require.NoError(t, err)

	_, err = c.ListFeeds(context.Background(), true)
	require.Error(t, err)
	assert.Equal(t, apperr.ErrCodeNetwork, apperr.GetCode(err))
	_, isAPI := AsAPIError(err)
	assert.False(t, isAPI)
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListFeeds(ctx, true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIconURL(t *testing.T) {
	c, err := New("https://api.example.com/")
	require.NoError(t, err)

	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"lemonde/logo.png", "https://api.example.com/rss/img/lemonde/logo.png"},
		{"/le monde//logo v2.png", "https://api.example.com/rss/img/le%20monde/logo%20v2.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.IconURL(tt.path), "IconURL(%q)", tt.path)
	}
}
