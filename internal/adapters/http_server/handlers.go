package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Aadit-17/RevEase/internal/app"
	"github.com/Aadit-17/RevEase/internal/domain"
)

// sessionHeader carries the tenancy key on every review endpoint.
const sessionHeader = "X-Session-Id"

type Handlers struct {
	Q *app.QueryService
	R *app.ReviewService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/ingest", h.ingest)
	s.mux.Get("/v1/reviews", h.listReviews)
	s.mux.Get("/v1/reviews/{id}", h.getReview)
	s.mux.Post("/v1/reviews/{id}/suggest-reply", h.suggestReply)
	s.mux.Get("/v1/analytics", h.analytics)
	s.mux.Get("/v1/search", h.search)
}

// ---- wire types ----

type reviewCreateIn struct {
	SessionID string    `json:"session_id"`
	Location  string    `json:"location"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	Date      time.Time `json:"date"`
	Topic     *string   `json:"topic,omitempty"`
}

type reviewOut struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Location  string    `json:"location"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	Date      time.Time `json:"date"`
	Topic     *string   `json:"topic,omitempty"`
	Sentiment *string   `json:"sentiment,omitempty"`
	Reply     *string   `json:"reply,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type listOut struct {
	Reviews    []reviewOut `json:"reviews"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

type replyOut struct {
	Reply        string `json:"reply"`
	ReasoningLog string `json:"reasoning_log"`
}

type sentimentBucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type topicBucket struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type analyticsOut struct {
	SentimentDistribution []sentimentBucket `json:"sentiment_distribution"`
	TopicDistribution     []topicBucket     `json:"topic_distribution"`
}

func toReviewOut(rv domain.Review) reviewOut {
	return reviewOut{
		ID:        rv.ID,
		SessionID: rv.SessionID.String(),
		Location:  rv.Location,
		Rating:    rv.Rating,
		Text:      rv.Text,
		Date:      rv.Date,
		Topic:     rv.Topic,
		Sentiment: rv.Sentiment,
		Reply:     rv.Reply,
		CreatedAt: rv.CreatedAt,
	}
}

// ---- handlers ----

func (h *Handlers) ingest(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var in []reviewCreateIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "body must be a JSON array of reviews")
		return
	}
	reqs := make([]domain.ReviewCreate, 0, len(in))
	for _, rc := range in {
		sid, err := uuid.Parse(rc.SessionID)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Bad Request", "Invalid session ID format")
			return
		}
		if rc.Rating < 1 || rc.Rating > 5 {
			writeProblem(w, http.StatusBadRequest, "Bad Request", "rating must be between 1 and 5")
			return
		}
		reqs = append(reqs, domain.ReviewCreate{
			SessionID: sid,
			Location:  rc.Location,
			Rating:    rc.Rating,
			Text:      rc.Text,
			Date:      rc.Date,
			Topic:     rc.Topic,
		})
	}

	created, err := h.R.Ingest(r.Context(), session, reqs)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]reviewOut, 0, len(created))
	for _, rv := range created {
		out = append(out, toReviewOut(rv))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := domain.ReviewFilter{
		Location:  optParam(q.Get("location")),
		Sentiment: optParam(q.Get("sentiment")),
		Topic:     optParam(q.Get("topic")),
		Text:      optParam(q.Get("q")),
	}
	page := intParam(q.Get("page"), 1)
	pageSize := intParam(q.Get("page_size"), 10)

	pg, err := h.Q.List(r.Context(), session, filter, page, pageSize)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := listOut{
		Reviews:    make([]reviewOut, 0, len(pg.Items)),
		Total:      pg.Total,
		Page:       pg.Page,
		PageSize:   pg.PageSize,
		TotalPages: pg.TotalPages,
	}
	for _, rv := range pg.Items {
		out.Reviews = append(out.Reviews, toReviewOut(rv))
	}
	writeCachedJSON(w, r, out)
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	rv, err := h.Q.Get(r.Context(), id, session)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeCachedJSON(w, r, toReviewOut(rv))
}

func (h *Handlers) suggestReply(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	suggestion, err := h.R.SuggestReply(r.Context(), session, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, replyOut{Reply: suggestion.Reply, ReasoningLog: suggestion.Reasoning})
}

func (h *Handlers) analytics(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	sentiment, topic, err := h.Q.Analytics(r.Context(), session)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := analyticsOut{
		SentimentDistribution: make([]sentimentBucket, 0, len(sentiment)),
		TopicDistribution:     make([]topicBucket, 0, len(topic)),
	}
	for _, d := range sentiment {
		out.SentimentDistribution = append(out.SentimentDistribution, sentimentBucket{Name: d.Label, Value: d.Count})
	}
	for _, d := range topic {
		out.TopicDistribution = append(out.TopicDistribution, topicBucket{Topic: d.Label, Count: d.Count})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "q is required")
		return
	}
	results, err := h.Q.Search(r.Context(), session, query)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]reviewOut, 0, len(results))
	for _, rv := range results {
		out = append(out, toReviewOut(rv))
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- helpers ----

func sessionFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sid, err := uuid.Parse(r.Header.Get(sessionHeader))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "Invalid session ID format")
		return uuid.UUID{}, false
	}
	return sid, true
}

func optParam(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func intParam(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
	case errors.Is(err, domain.ErrSessionMismatch):
		writeProblem(w, http.StatusBadRequest, "Bad Request", "Session ID mismatch")
	case errors.Is(err, domain.ErrInvalidSession):
		writeProblem(w, http.StatusBadRequest, "Bad Request", "Invalid session ID format")
	default:
		// store initialization or call failure; degraded, not fatal
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "persistence backend unavailable")
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeCachedJSON marshals once, hashes once, and honors If-None-Match.
func writeCachedJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response for ETag")
		writeJSON(w, http.StatusOK, v)
		return
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}
