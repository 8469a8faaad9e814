package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"studysphere/internal/cache"
	"studysphere/internal/domain"
	"studysphere/internal/dto"
	"studysphere/internal/logger"

	"go.uber.org/zap"
)

const defaultResponseTTL = 24 * time.Hour

// StudyCacheService caches completed summarize and quiz responses per
// document so repeated calls skip the upstream cascade. Degraded responses
// are never cached.
type StudyCacheService interface {
	GetSummary(ctx context.Context, documentID string) (*dto.SummarizeResponse, error)
	PutSummary(ctx context.Context, documentID string, resp *dto.SummarizeResponse) error
	GetQuiz(ctx context.Context, documentID string, count int) (*dto.QuizResponse, error)
	PutQuiz(ctx context.Context, documentID string, count int, resp *dto.QuizResponse) error
}

type studyCacheServiceImpl struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewStudyCacheService wraps a domain.Cache. A nil cache disables caching:
// every Get is a miss and every Put is a no-op.
func NewStudyCacheService(c domain.Cache, ttl time.Duration) StudyCacheService {
	if ttl <= 0 {
		ttl = defaultResponseTTL
	}
	return &studyCacheServiceImpl{cache: c, ttl: ttl}
}

func (s *studyCacheServiceImpl) GetSummary(ctx context.Context, documentID string) (*dto.SummarizeResponse, error) {
	if s.cache == nil {
		return nil, nil
	}
	key := cache.GenerateCacheKey("study", "summary", documentID)
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if err == domain.ErrCacheMiss {
			return nil, nil
		}
		return nil, err
	}
	var resp dto.SummarizeResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		logger.Get().Warn("Discarding unreadable cached summary",
			zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	return &resp, nil
}

func (s *studyCacheServiceImpl) PutSummary(ctx context.Context, documentID string, resp *dto.SummarizeResponse) error {
	if s.cache == nil {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	key := cache.GenerateCacheKey("study", "summary", documentID)
	return s.cache.Set(ctx, key, string(raw), s.ttl)
}

func (s *studyCacheServiceImpl) GetQuiz(ctx context.Context, documentID string, count int) (*dto.QuizResponse, error) {
	if s.cache == nil {
		return nil, nil
	}
	key := cache.GenerateCacheKey("study", "quiz", documentID, strconv.Itoa(count))
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if err == domain.ErrCacheMiss {
			return nil, nil
		}
		return nil, err
	}
	var resp dto.QuizResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		logger.Get().Warn("Discarding unreadable cached quiz",
			zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	return &resp, nil
}

func (s *studyCacheServiceImpl) PutQuiz(ctx context.Context, documentID string, count int, resp *dto.QuizResponse) error {
	if s.cache == nil {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	key := cache.GenerateCacheKey("study", "quiz", documentID, strconv.Itoa(count))
	return s.cache.Set(ctx, key, string(raw), s.ttl)
}
