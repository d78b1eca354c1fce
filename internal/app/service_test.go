package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Aadit-17/RevEase/internal/domain"
)

// fakeRepo is an in-memory ReviewRepository. Background tasks hit it
// concurrently, so all state is mutex-guarded.
type fakeRepo struct {
	mu        sync.Mutex
	nextID    int64
	reviews   map[int64]domain.Review
	insertErr error
	updateErr error
	listCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, reviews: map[int64]domain.Review{}}
}

func (r *fakeRepo) Insert(_ context.Context, rc domain.ReviewCreate) (domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return domain.Review{}, r.insertErr
	}
	rv := domain.Review{
		ID:        r.nextID,
		SessionID: rc.SessionID,
		Location:  rc.Location,
		Rating:    rc.Rating,
		Text:      rc.Text,
		Date:      rc.Date,
		Topic:     rc.Topic,
		CreatedAt: time.Now().UTC(),
	}
	r.nextID++
	r.reviews[rv.ID] = rv
	return rv, nil
}

func (r *fakeRepo) Update(_ context.Context, id int64, fields map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	rv, ok := r.reviews[id]
	if !ok {
		return domain.ErrNotFound
	}
	for col, val := range fields {
		v := val
		switch col {
		case "sentiment":
			rv.Sentiment = &v
		case "reply":
			rv.Reply = &v
		case "topic":
			rv.Topic = &v
		}
	}
	r.reviews[id] = rv
	return nil
}

func (r *fakeRepo) Get(_ context.Context, id int64, session uuid.UUID) (domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[id]
	if !ok || rv.SessionID != session {
		return domain.Review{}, domain.ErrNotFound
	}
	return rv, nil
}

func (r *fakeRepo) List(_ context.Context, session uuid.UUID, _ domain.ReviewFilter, page, pageSize int) (domain.ReviewPage, error) {
	all, _ := r.ListAll(context.Background(), session)
	return domain.ReviewPage{Items: all, Total: len(all), Page: page, PageSize: pageSize, TotalPages: 1}, nil
}

func (r *fakeRepo) ListAll(_ context.Context, session uuid.UUID) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	out := []domain.Review{}
	for id := int64(1); id < r.nextID; id++ {
		if rv, ok := r.reviews[id]; ok && rv.SessionID == session {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *fakeRepo) get(id int64) domain.Review {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reviews[id]
}

// fakeCache mirrors the redis adapter: values stored as JSON.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	dels []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) Set(_ context.Context, key string, v any, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.dels = append(c.dels, key)
	return nil
}

func makeCreate(session uuid.UUID, rating int, text string) domain.ReviewCreate {
	return domain.ReviewCreate{
		SessionID: session,
		Location:  "Berlin",
		Rating:    rating,
		Text:      text,
		Date:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestIngest_SessionMismatchWritesNothing(t *testing.T) {
	repo := newFakeRepo()
	svc := NewReviewService(repo, nil, NewAnalyzer(nil), 2)
	session := uuid.New()

	reqs := []domain.ReviewCreate{
		makeCreate(session, 5, "great"),
		makeCreate(uuid.New(), 5, "wrong session"),
	}
	_, err := svc.Ingest(context.Background(), session, reqs)
	if !errors.Is(err, domain.ErrSessionMismatch) {
		t.Fatalf("err = %v, want ErrSessionMismatch", err)
	}
	svc.Wait()
	if len(repo.reviews) != 0 {
		t.Fatalf("store has %d rows, want 0", len(repo.reviews))
	}
}

func TestIngest_RedactsBeforeInsert(t *testing.T) {
	repo := newFakeRepo()
	svc := NewReviewService(repo, nil, NewAnalyzer(nil), 2)
	session := uuid.New()

	created, err := svc.Ingest(context.Background(), session, []domain.ReviewCreate{
		makeCreate(session, 3, "contact me at jane@example.com or 555-123-4567"),
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	svc.Wait()
	if got := created[0].Text; strings.Contains(got, "@") || strings.Contains(got, "555") {
		t.Fatalf("PII survived ingest: %q", got)
	}
	if got := repo.get(created[0].ID).Text; !strings.Contains(got, "[EMAIL REDACTED]") || !strings.Contains(got, "[PHONE REDACTED]") {
		t.Fatalf("stored text not redacted: %q", got)
	}
}

func TestIngest_SentimentLandsAfterWait(t *testing.T) {
	repo := newFakeRepo()
	svc := NewReviewService(repo, nil, NewAnalyzer(nil), 2)
	session := uuid.New()

	created, err := svc.Ingest(context.Background(), session, []domain.ReviewCreate{
		makeCreate(session, 5, "wonderful stay"),
		makeCreate(session, 1, "never again"),
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	svc.Wait()

	want := map[int64]string{created[0].ID: "positive", created[1].ID: "negative"}
	for id, label := range want {
		rv := repo.get(id)
		if rv.Sentiment == nil || *rv.Sentiment != label {
			t.Fatalf("review %d sentiment = %v, want %q", id, rv.Sentiment, label)
		}
	}
}

func TestIngest_BackgroundFailureIsSwallowed(t *testing.T) {
	repo := newFakeRepo()
	svc := NewReviewService(repo, nil, NewAnalyzer(nil), 2)
	session := uuid.New()
	repo.updateErr = errors.New("store down")

	if _, err := svc.Ingest(context.Background(), session, []domain.ReviewCreate{
		makeCreate(session, 5, "fine"),
	}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	svc.Wait()
	if rv := repo.get(1); rv.Sentiment != nil {
		t.Fatalf("sentiment should not have persisted, got %q", *rv.Sentiment)
	}
}

func TestIngest_NilRepoUnavailable(t *testing.T) {
	svc := NewReviewService(nil, nil, NewAnalyzer(nil), 2)
	_, err := svc.Ingest(context.Background(), uuid.New(), nil)
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestSuggestReply_PersistsInBackground(t *testing.T) {
	repo := newFakeRepo()
	svc := NewReviewService(repo, nil, NewAnalyzer(nil), 2)
	session := uuid.New()

	created, err := svc.Ingest(context.Background(), session, []domain.ReviewCreate{
		makeCreate(session, 2, "room was cold"),
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	svc.Wait()

	suggestion, err := svc.SuggestReply(context.Background(), session, created[0].ID)
	if err != nil {
		t.Fatalf("SuggestReply: %v", err)
	}
	if suggestion.Reply == "" {
		t.Fatal("empty reply")
	}
	svc.Wait()
	rv := repo.get(created[0].ID)
	if rv.Reply == nil || *rv.Reply != suggestion.Reply {
		t.Fatalf("persisted reply = %v, want %q", rv.Reply, suggestion.Reply)
	}
}

func TestSuggestReply_WrongSessionNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := NewReviewService(repo, nil, NewAnalyzer(nil), 2)
	session := uuid.New()

	created, _ := svc.Ingest(context.Background(), session, []domain.ReviewCreate{
		makeCreate(session, 4, "nice"),
	})
	svc.Wait()

	_, err := svc.SuggestReply(context.Background(), uuid.New(), created[0].ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestIngest_InvalidatesCorpusCache(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := NewReviewService(repo, cache, NewAnalyzer(nil), 2)
	session := uuid.New()

	key := corpusKey(session)
	_ = cache.Set(context.Background(), key, []domain.Review{}, 60)

	if _, err := svc.Ingest(context.Background(), session, []domain.ReviewCreate{
		makeCreate(session, 4, "good spot"),
	}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	svc.Wait()

	if _, ok := cache.data[key]; ok {
		t.Fatal("corpus key still cached after ingest")
	}
}

func TestQueries_CorpusCacheAside(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	session := uuid.New()
	_, _ = repo.Insert(context.Background(), makeCreate(session, 5, "spotless rooms and friendly staff"))

	qs := NewQueryService(repo, cache, time.Minute)

	if _, _, err := qs.Analytics(context.Background(), session); err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if _, _, err := qs.Analytics(context.Background(), session); err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	repo.mu.Lock()
	calls := repo.listCalls
	repo.mu.Unlock()
	if calls != 1 {
		t.Fatalf("store hit %d times, want 1 (second read from cache)", calls)
	}
}

func TestQueries_SearchRanksCorpus(t *testing.T) {
	repo := newFakeRepo()
	session := uuid.New()
	_, _ = repo.Insert(context.Background(), makeCreate(session, 5, "breakfast buffet was excellent"))
	_, _ = repo.Insert(context.Background(), makeCreate(session, 2, "wifi connection kept dropping"))

	qs := NewQueryService(repo, nil, time.Minute)
	got, err := qs.Search(context.Background(), session, "wifi dropping")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || !strings.Contains(got[0].Text, "wifi") {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestQueries_NilRepoUnavailable(t *testing.T) {
	qs := NewQueryService(nil, nil, time.Minute)
	if _, err := qs.List(context.Background(), uuid.New(), domain.ReviewFilter{}, 1, 10); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("List err = %v, want ErrUnavailable", err)
	}
	if _, err := qs.Search(context.Background(), uuid.New(), "q"); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("Search err = %v, want ErrUnavailable", err)
	}
}
