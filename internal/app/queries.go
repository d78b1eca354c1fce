package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Aadit-17/RevEase/internal/domain"
)

// QueryService owns the read paths: list, get, search, analytics. Search and
// analytics both load the full session corpus, which is served cache-aside
// with a TTL; every write path deletes the key.
type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(repo domain.ReviewRepository, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: repo, cache: cache, cacheTTL: ttl}
}

func (s *QueryService) List(ctx context.Context, session uuid.UUID, f domain.ReviewFilter, page, pageSize int) (domain.ReviewPage, error) {
	if s.repo == nil {
		return domain.ReviewPage{}, domain.ErrUnavailable
	}
	return s.repo.List(ctx, session, f, page, pageSize)
}

func (s *QueryService) Get(ctx context.Context, id int64, session uuid.UUID) (domain.Review, error) {
	if s.repo == nil {
		return domain.Review{}, domain.ErrUnavailable
	}
	return s.repo.Get(ctx, id, session)
}

// Search ranks the session's reviews against a free-text query by TF-IDF
// cosine similarity. At most five results, all with similarity above the
// noise floor, ordered best first.
func (s *QueryService) Search(ctx context.Context, session uuid.UUID, query string) ([]domain.Review, error) {
	reviews, err := s.corpus(ctx, session)
	if err != nil {
		return nil, err
	}
	return rankBySimilarity(reviews, query), nil
}

// Analytics returns the sentiment and topic count distributions for a
// session. Reviews whose background analysis has not landed yet count under
// the "unknown" bucket, so both distributions always sum to the session
// total.
func (s *QueryService) Analytics(ctx context.Context, session uuid.UUID) (sentiment, topic []domain.Distribution, err error) {
	reviews, err := s.corpus(ctx, session)
	if err != nil {
		return nil, nil, err
	}
	sentiment, topic = aggregate(reviews)
	return sentiment, topic, nil
}

// corpus loads every review for the session, through the cache when one is
// wired.
func (s *QueryService) corpus(ctx context.Context, session uuid.UUID) ([]domain.Review, error) {
	if s.repo == nil {
		return nil, domain.ErrUnavailable
	}
	key := corpusKey(session)
	if s.cache != nil {
		var cached []domain.Review
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}
	reviews, err := s.repo.ListAll(ctx, session)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, reviews, int(s.cacheTTL.Seconds()))
	}
	return reviews, nil
}
