package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/Aadit-17/RevEase/internal/adapters/observability"
	"github.com/Aadit-17/RevEase/internal/domain"
)

// backgroundTimeout bounds the detached context a background task runs
// under; it covers the model call plus the follow-up update.
const backgroundTimeout = 30 * time.Second

// ReviewService owns the write paths: ingestion and reply suggestion. The
// sentiment classification after ingest and the reply persistence after
// generation are fire-and-forget: the response returns before they complete
// and their failures are logged, never surfaced. Fan-out is bounded by a
// weighted semaphore.
type ReviewService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	analyzer *Analyzer
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
}

func NewReviewService(repo domain.ReviewRepository, cache domain.Cache, analyzer *Analyzer, workers int) *ReviewService {
	if workers <= 0 {
		workers = 8
	}
	return &ReviewService{
		repo:     repo,
		cache:    cache,
		analyzer: analyzer,
		sem:      semaphore.NewWeighted(int64(workers)),
	}
}

// Ingest validates, redacts, and stores a batch of reviews for the declared
// session, then schedules sentiment classification for each created row.
// The whole batch is checked against the declared session before the first
// write, so a mismatch anywhere rejects the request with no side effects.
func (s *ReviewService) Ingest(ctx context.Context, session uuid.UUID, reqs []domain.ReviewCreate) ([]domain.Review, error) {
	if s.repo == nil {
		return nil, domain.ErrUnavailable
	}
	for _, rc := range reqs {
		if rc.SessionID != session {
			return nil, domain.ErrSessionMismatch
		}
	}

	created := make([]domain.Review, 0, len(reqs))
	for _, rc := range reqs {
		rc.Text = Redact(rc.Text)
		rv, err := s.repo.Insert(ctx, rc)
		if err != nil {
			return nil, err
		}
		created = append(created, rv)
		s.scheduleAnalysis(rv)
	}
	s.invalidateCorpus(ctx, session)
	return created, nil
}

// SuggestReply generates a reply for an existing review and returns it to
// the caller; persistence of the reply field happens afterwards in the
// background.
func (s *ReviewService) SuggestReply(ctx context.Context, session uuid.UUID, id int64) (domain.ReplySuggestion, error) {
	if s.repo == nil {
		return domain.ReplySuggestion{}, domain.ErrUnavailable
	}
	rv, err := s.repo.Get(ctx, id, session)
	if err != nil {
		return domain.ReplySuggestion{}, err
	}

	suggestion := s.analyzer.SuggestReply(ctx, rv)

	s.spawn(func(ctx context.Context) {
		err := s.repo.Update(ctx, rv.ID, map[string]string{"reply": suggestion.Reply})
		observability.ObserveTask("reply_persist", err)
		if err != nil {
			log.Warn().Int64("id", rv.ID).Err(err).Msg("background reply update failed")
			return
		}
		s.invalidateCorpus(ctx, rv.SessionID)
	})
	return suggestion, nil
}

// Wait blocks until every scheduled background task has finished. Tests use
// it to assert eventual state deterministically.
func (s *ReviewService) Wait() { s.wg.Wait() }

func (s *ReviewService) scheduleAnalysis(rv domain.Review) {
	s.spawn(func(ctx context.Context) {
		res := s.analyzer.Classify(ctx, rv)
		err := s.repo.Update(ctx, rv.ID, map[string]string{"sentiment": res.Sentiment})
		observability.ObserveTask("sentiment_persist", err)
		if err != nil {
			log.Warn().Int64("id", rv.ID).Err(err).Msg("background sentiment update failed")
			return
		}
		s.invalidateCorpus(ctx, rv.SessionID)
	})
}

// spawn runs fn on a detached context under the worker semaphore. The
// caller's request context is deliberately not used: the response must not
// wait for, or be able to cancel, this work.
func (s *ReviewService) spawn(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		if err := s.sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("background worker slot acquire failed")
			return
		}
		defer s.sem.Release(1)
		fn(ctx)
	}()
}

func (s *ReviewService) invalidateCorpus(ctx context.Context, session uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, corpusKey(session))
	}
}

func corpusKey(session uuid.UUID) string { return "corpus:" + session.String() }
