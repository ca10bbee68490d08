package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jonwraymond/creatorcontext/profile"
)

type handlers struct {
	builder ContextBuilder
}

// StatsResponse is the body of GET /v1/cache/stats. Cached text is never
// exposed; only whether an entry holds a fallback.
type StatsResponse struct {
	Size    int             `json:"size"`
	TTLMs   int64           `json:"ttl_ms"`
	Entries []EntryResponse `json:"entries"`
}

// EntryResponse describes one cache entry.
type EntryResponse struct {
	Key       string    `json:"key"`
	WrittenAt time.Time `json:"written_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Expired   bool      `json:"expired"`
	Fallback  bool      `json:"fallback"`
	Bytes     int       `json:"bytes"`
}

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *handlers) creatorContext(w http.ResponseWriter, r *http.Request) {
	text := h.builder.BuildCreatorProfileContext(r.Context(), r.URL.Query().Get("target_id"))
	writeText(w, text)
}

func (h *handlers) instagramContext(w http.ResponseWriter, r *http.Request) {
	text := h.builder.BuildInstagramCreatorIntelligenceContext(r.Context(), r.URL.Query().Get("username"))
	writeText(w, text)
}

func (h *handlers) cacheStats(w http.ResponseWriter, _ *http.Request) {
	stats := h.builder.CacheStats()
	resp := StatsResponse{
		Size:    stats.Size,
		TTLMs:   stats.TTL.Milliseconds(),
		Entries: make([]EntryResponse, 0, len(stats.Entries)),
	}
	for _, e := range stats.Entries {
		resp.Entries = append(resp.Entries, EntryResponse{
			Key:       e.Key,
			WrittenAt: e.WrittenAt.UTC(),
			ExpiresAt: e.ExpiresAt.UTC(),
			Expired:   e.Expired,
			Fallback:  profile.IsFallback(e.Value),
			Bytes:     len(e.Value),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// invalidateCache drops every ?key= given, or the whole cache when no key
// parameter is present. A key parameter with only blank values is rejected
// rather than read as "clear everything".
func (h *handlers) invalidateCache(w http.ResponseWriter, r *http.Request) {
	raw, present := r.URL.Query()["key"]
	var keys []string
	for _, k := range raw {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if present && len(keys) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_key", "key must not be blank")
		return
	}
	h.builder.InvalidateCreatorProfileCache(keys...)
	w.WriteHeader(http.StatusNoContent)
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, kind, msg string) {
	writeJSON(w, code, ErrorResponse{Error: kind, Message: msg})
}
