package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jiwonMe/work-mma-sdk/internal/domain"
	"github.com/jiwonMe/work-mma-sdk/pkg/logger"
)

// Scoring: every search adds a fixed base score plus a small time weight,
// so between two keywords with equal counts the more recently searched
// one ranks higher.
const (
	baseScore        = 1.0
	timeWeightFactor = 0.001
)

// MaxKeywordLength bounds recorded keywords.
const MaxKeywordLength = 100

// Limit bounds for ranked reads.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

const (
	cacheTTL         = 60 * time.Second
	snapshotInterval = 5 * time.Minute
	snapshotTimeout  = 10 * time.Second
)

// ErrInvalidKeyword rejects empty or over-length keywords.
var ErrInvalidKeyword = errors.New("keyword must be 1-100 characters")

// ErrStoreUnavailable wraps store failures on the write path so callers
// can distinguish them from bad input.
var ErrStoreUnavailable = errors.New("ranking store unavailable")

// Service maintains the popular-search ranking.
type Service struct {
	store  Store
	logger logger.Logger
	now    func() time.Time
}

// NewService creates a ranking Service.
func NewService(store Store, log logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log,
		now:    time.Now,
	}
}

// Record registers one search of keyword. The keyword is trimmed; empty
// or over-length keywords return ErrInvalidKeyword, store failures return
// ErrStoreUnavailable.
func (s *Service) Record(ctx context.Context, keyword string) (string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || len([]rune(keyword)) > MaxKeywordLength {
		return "", ErrInvalidKeyword
	}

	score := baseScore + float64(s.now().UnixMilli())*timeWeightFactor
	if err := s.store.IncrementScore(ctx, keyRank, keyword, score); err != nil {
		s.logger.Error("Failed to record search keyword",
			logger.Error(err),
			logger.String("keyword", keyword),
		)
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return keyword, nil
}

// Top returns the limit highest-ranked keywords with movement deltas
// against the last snapshot. Responses are cached briefly; a read also
// kicks off a snapshot refresh in the background so deltas keep moving
// without a scheduler. Store failures degrade to an empty ranking.
func (s *Service) Top(ctx context.Context, limit int) *domain.RankingResponse {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if cached := s.cachedResponse(ctx, limit); cached != nil {
		return cached
	}

	response := &domain.RankingResponse{
		Success:   true,
		Rankings:  []domain.RankItem{},
		UpdatedAt: s.now().UTC(),
	}

	members, err := s.store.TopMembers(ctx, keyRank, int64(limit))
	if err != nil {
		s.logger.Error("Failed to read ranking", logger.Error(err))
		return response
	}

	response.Rankings = s.withDeltas(ctx, members)

	s.cacheResponse(ctx, limit, response)
	go s.refreshSnapshot(members)

	return response
}

// withDeltas annotates the current ordering with movement against the
// previous snapshot. A snapshot read failure marks everything unchanged
// rather than failing the read.
func (s *Service) withDeltas(ctx context.Context, members []string) []domain.RankItem {
	items := make([]domain.RankItem, len(members))
	for i, keyword := range members {
		items[i] = domain.RankItem{
			Rank:    i + 1,
			Keyword: keyword,
			Change:  domain.RankSame,
		}
	}

	prev, err := s.store.TopMembers(ctx, keyRankPrev, -1)
	if err != nil {
		s.logger.Warn("Failed to read previous snapshot", logger.Error(err))
		return items
	}

	prevRank := make(map[string]int, len(prev))
	for i, keyword := range prev {
		prevRank[keyword] = i + 1
	}

	for i := range items {
		before, ok := prevRank[items[i].Keyword]
		switch {
		case !ok:
			items[i].Change = domain.RankNew
		case before > items[i].Rank:
			items[i].Change = domain.RankUp
			items[i].ChangeAmount = before - items[i].Rank
		case before < items[i].Rank:
			items[i].Change = domain.RankDown
			items[i].ChangeAmount = items[i].Rank - before
		}
	}
	return items
}

// refreshSnapshot copies the just-served top ordering into the prev set
// when the last snapshot is old enough. Deltas are always computed
// against a top list, so the snapshot is scoped to one too: a keyword
// climbing in from below the cut reads as new, not up. An empty list
// never clears an existing snapshot. Runs on its own context: the
// triggering request has already been answered. The read-compare-write
// on the timestamp can race between concurrent requests; a doubled
// refresh is harmless.
func (s *Service) refreshSnapshot(members []string) {
	if len(members) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	stamp, err := s.store.GetValue(ctx, keyRankPrevStamp)
	if err != nil {
		s.logger.Warn("Failed to read snapshot timestamp", logger.Error(err))
		return
	}
	if stamp != "" {
		if millis, err := strconv.ParseInt(stamp, 10, 64); err == nil {
			if s.now().Sub(time.UnixMilli(millis)) < snapshotInterval {
				return
			}
		}
	}

	if err := s.store.ReplaceRanks(ctx, keyRankPrev, members); err != nil {
		s.logger.Warn("Failed to write snapshot", logger.Error(err))
		return
	}
	if err := s.store.SetValue(ctx, keyRankPrevStamp, strconv.FormatInt(s.now().UnixMilli(), 10), 0); err != nil {
		s.logger.Warn("Failed to write snapshot timestamp", logger.Error(err))
		return
	}

	s.logger.Debug("Refreshed ranking snapshot", logger.Int("keywords", len(members)))
}

// cacheKey separates cached responses per limit so a truncated list is
// never served for a larger request.
func cacheKey(limit int) string {
	return keyRankCache + ":" + strconv.Itoa(limit)
}

func (s *Service) cachedResponse(ctx context.Context, limit int) *domain.RankingResponse {
	raw, err := s.store.GetValue(ctx, cacheKey(limit))
	if err != nil || raw == "" {
		return nil
	}
	var response domain.RankingResponse
	if err := json.Unmarshal([]byte(raw), &response); err != nil {
		return nil
	}
	return &response
}

func (s *Service) cacheResponse(ctx context.Context, limit int, response *domain.RankingResponse) {
	encoded, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.store.SetValue(ctx, cacheKey(limit), string(encoded), cacheTTL); err != nil {
		s.logger.Warn("Failed to cache ranking response", logger.Error(err))
	}
}
