package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/feedwatch/sourcegrid/pkg/board"
	"github.com/feedwatch/sourcegrid/pkg/buildinfo"
	apperr "github.com/feedwatch/sourcegrid/pkg/errors"
	"github.com/feedwatch/sourcegrid/pkg/pipeline"
	"github.com/feedwatch/sourcegrid/pkg/rss"
)

// maxBodyBytes bounds request bodies; every body the API accepts is tiny.
const maxBodyBytes = 1 << 20

// errorBody is the JSON form of every error response.
type errorBody struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

// ingestResponse is the ingest result together with its one-line summary.
type ingestResponse struct {
	*rss.IngestResult
	Summary string `json:"summary"`
}

type ingestRequest struct {
	FeedIDs []int64 `json:"feed_ids"`
}

type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// =============================================================================
// Rows
// =============================================================================

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	opts, err := s.rowsOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.CacheInfo.RowsHit {
		w.Header().Set("X-Rows-Cache", "hit")
	} else {
		w.Header().Set("X-Rows-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[pipeline.FormatJSON])
}

// rowsOptions reads the pipeline options of a rows request. Missing paging
// and geometry parameters fall back to the server configuration.
func (s *Server) rowsOptions(r *http.Request) (pipeline.Options, error) {
	q := newQuery(r)
	opts := pipeline.Options{
		FeedID:    q.int64Val("feed_id", 0),
		CompanyID: q.int64Val("company_id", 0),
		Limit:     q.intVal("limit", s.cfg.PageSize),
		Offset:    q.intVal("offset", 0),
		Columns:   q.intVal("columns", 0),
		Width:     q.floatVal("width", s.cfg.Width),
		Gap:       q.floatVal("gap", s.cfg.Grid.Gap),
		TileWidth: q.floatVal("tile_width", s.cfg.Grid.MinTileWidth),
		Refresh:   q.boolVal("refresh"),
		Formats:   []string{pipeline.FormatJSON},
	}
	if q.err != nil {
		return opts, q.err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

// =============================================================================
// Sources
// =============================================================================

func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "source")
	if err != nil {
		writeError(w, err)
		return
	}
	q := newQuery(r)
	refresh := q.boolVal("refresh")
	if q.err != nil {
		writeError(w, q.err)
		return
	}
	detail, err := s.backend.GetSource(r.Context(), id, refresh)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, err)
		return
	}
	for _, id := range req.FeedIDs {
		if err := apperr.ValidateID("feed", id); err != nil {
			writeError(w, err)
			return
		}
	}

	result, err := s.backend.IngestSources(r.Context(), req.FeedIDs...)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("ingest finished",
		"feeds", len(req.FeedIDs),
		"created", result.SourcesCreated,
		"updated", result.SourcesUpdated,
		"errors", len(result.Errors))
	writeJSON(w, http.StatusOK, ingestResponse{IngestResult: result, Summary: board.IngestSummary(*result)})
}

// =============================================================================
// Feeds
// =============================================================================

func (s *Server) handleFeedGroups(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	enabled, ok := board.ParseEnabledFilter(q.get("enabled"))
	if !ok {
		writeError(w, apperr.New(apperr.ErrCodeInvalidInput, "invalid enabled filter %q (must be one of: all, enabled, disabled)", q.get("enabled")))
		return
	}
	mode, ok := board.ParseSortMode(q.get("sort"))
	if !ok {
		writeError(w, apperr.New(apperr.ErrCodeInvalidInput, "invalid sort mode %q", q.get("sort")))
		return
	}

	refresh := q.boolVal("refresh")
	if q.err != nil {
		writeError(w, q.err)
		return
	}
	feeds, err := s.backend.ListFeeds(r.Context(), refresh)
	if err != nil {
		writeError(w, err)
		return
	}

	filtered := board.FilterFeeds(feeds, board.FeedFilter{Query: q.get("query"), Enabled: enabled})
	groups := board.GroupByCompany(filtered)
	for i := range groups {
		groups[i].Feeds = board.SortFeeds(groups[i].Feeds, mode)
	}
	if groups == nil {
		groups = []board.CompanyGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleSyncFeeds(w http.ResponseWriter, r *http.Request) {
	result, err := s.backend.SyncFeeds(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFeedEnabled(w http.ResponseWriter, r *http.Request) {
	id, enabled, err := toggleRequest(r, "feed")
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.backend.SetFeedEnabled(r.Context(), id, enabled)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCompanyEnabled(w http.ResponseWriter, r *http.Request) {
	id, enabled, err := toggleRequest(r, "company")
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.backend.SetCompanyEnabled(r.Context(), id, enabled)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// toggleRequest reads the {id} path parameter and the {"enabled": bool} body.
func toggleRequest(r *http.Request, kind string) (int64, bool, error) {
	id, err := pathID(r, kind)
	if err != nil {
		return 0, false, err
	}
	var req enabledRequest
	if err := decodeBody(r, &req, false); err != nil {
		return 0, false, err
	}
	if req.Enabled == nil {
		return 0, false, apperr.New(apperr.ErrCodeInvalidInput, "body must set \"enabled\"")
	}
	return id, *req.Enabled, nil
}

// =============================================================================
// Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorStatus(w, apperr.HTTPStatus(err), err)
}

func writeErrorStatus(w http.ResponseWriter, status int, err error) {
	code := apperr.GetCode(err)
	if code == "" {
		code = apperr.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Code: code, Message: apperr.UserMessage(err)})
}

func pathID(r *http.Request, kind string) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.ErrCodeInvalidInput, "invalid %s id %q", kind, raw)
	}
	if err := apperr.ValidateID(kind, id); err != nil {
		return 0, err
	}
	return id, nil
}

// decodeBody decodes a JSON request body into v. An empty body is accepted
// only when optional is set.
func decodeBody(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && optional:
		return nil
	case errors.Is(err, io.EOF):
		return apperr.New(apperr.ErrCodeInvalidInput, "request body is required")
	default:
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
}

// query parses typed query parameters, keeping the first error.
type query struct {
	values url.Values
	err    error
}

func newQuery(r *http.Request) *query {
	return &query{values: r.URL.Query()}
}

func (q *query) get(key string) string {
	return q.values.Get(key)
}

func (q *query) fail(key, raw string) {
	if q.err == nil {
		q.err = apperr.New(apperr.ErrCodeInvalidInput, "invalid %s %q", key, raw)
	}
}

func (q *query) intVal(key string, def int) int {
	raw := q.get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(key, raw)
		return def
	}
	return n
}

func (q *query) int64Val(key string, def int64) int64 {
	raw := q.get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		q.fail(key, raw)
		return def
	}
	return n
}

func (q *query) floatVal(key string, def float64) float64 {
	raw := q.get(key)
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.fail(key, raw)
		return def
	}
	return f
}

func (q *query) boolVal(key string) bool {
	raw := q.get(key)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		q.fail(key, raw)
		return false
	}
	return b
}
