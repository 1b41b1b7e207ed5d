package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"camerpulse-feed/internal/domain"
	"camerpulse-feed/internal/infra/metrics"
)

const fetchAttempts = 3

// Config holds feed pipeline tunables. Zero values fall back to defaults.
type Config struct {
	DefaultPageSize      int
	MaxPageSize          int
	CandidateLimit       int
	RecencyWindow        time.Duration
	SeenTTL              time.Duration
	RetryInitialInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = 20
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = 50
	}
	if c.CandidateLimit <= 0 {
		c.CandidateLimit = 200
	}
	if c.RecencyWindow <= 0 {
		c.RecencyWindow = 168 * time.Hour
	}
	if c.SeenTTL <= 0 {
		c.SeenTTL = 30 * time.Minute
	}
	if c.RetryInitialInterval <= 0 {
		c.RetryInitialInterval = 500 * time.Millisecond
	}
	return c
}

// Service runs the feed pipeline: fetch candidates, score them, assemble
// one page. Stateless between calls; safe for concurrent sessions.
type Service struct {
	prefs      domain.PreferenceRepo
	candidates domain.CandidateRepo
	session    domain.SessionStore
	scorer     domain.Scorer
	cfg        Config
	log        zerolog.Logger
	now        func() time.Time
}

// NewService creates the feed service.
func NewService(prefs domain.PreferenceRepo, candidates domain.CandidateRepo, session domain.SessionStore, scorer domain.Scorer, cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		prefs:      prefs,
		candidates: candidates,
		session:    session,
		scorer:     scorer,
		cfg:        cfg.withDefaults(),
		log:        logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetPage builds one feed page for the user. An empty cursor starts a new
// generation cycle; within a cycle each content ID is delivered at most once.
func (s *Service) GetPage(ctx context.Context, userID, cursorToken string, pageSize int) (domain.FeedPage, error) {
	metrics.FeedRequestsTotal.Inc()
	start := time.Now()
	defer func() { metrics.FeedBuildSeconds.Observe(time.Since(start).Seconds()) }()

	if pageSize <= 0 {
		pageSize = s.cfg.DefaultPageSize
	}
	if pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}

	cur, err := decodeCursor(cursorToken)
	if err != nil {
		return domain.FeedPage{}, err
	}
	if cur.Generation == "" {
		cur = cursor{Generation: uuid.NewString()}
	}

	prefs, err := s.prefs.GetPreferences(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		prefs = domain.DefaultPreferences(userID)
	} else if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("feed: preference load failed")
		return domain.FeedPage{}, fmt.Errorf("load preferences: %w", domain.ErrUpstreamUnavailable)
	}

	delivered, err := s.session.DeliveredIDs(ctx, userID, cur.Generation)
	if err != nil {
		// Dedup degrades to cursor-offset only; the feed stays up.
		s.log.Warn().Err(err).Str("user_id", userID).Msg("feed: delivered set unavailable")
		delivered = nil
	}

	candidates, err := s.fetchWithRetry(ctx, delivered)
	if err != nil {
		metrics.CandidateFetchErrors.Inc()
		s.log.Error().Err(err).Str("user_id", userID).Msg("feed: candidate fetch failed")
		return domain.FeedPage{}, fmt.Errorf("fetch candidates: %w", domain.ErrUpstreamUnavailable)
	}

	now := s.now()
	urgency, err := s.session.CivicUrgencyActive(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("feed: civic urgency flag unavailable")
		urgency = false
	}
	for i := range candidates {
		candidates[i].Score = s.scorer.Score(candidates[i], prefs, now, urgency)
	}

	// Delivered items are already excluded from the candidate set, so the
	// consumed count has to be discounted before slicing.
	offset := cur.Offset - len(delivered)
	if offset < 0 {
		offset = 0
	}
	page := AssemblePage(candidates, pageSize, offset)

	if ids := contentIDs(page.Items); len(ids) > 0 {
		if err := s.session.MarkDelivered(ctx, userID, cur.Generation, ids, s.cfg.SeenTTL); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("feed: mark delivered failed")
		}
	}

	page.Cursor = encodeCursor(cursor{Generation: cur.Generation, Offset: cur.Offset + len(page.Items)})
	return page, nil
}

func (s *Service) fetchWithRetry(ctx context.Context, exclude []string) ([]domain.FeedItem, error) {
	since := s.now().Add(-s.cfg.RecencyWindow)

	var items []domain.FeedItem
	op := func() error {
		var err error
		items, err = s.candidates.ListCandidates(ctx, exclude, since, s.cfg.CandidateLimit)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.cfg.RetryInitialInterval
	b := backoff.WithContext(backoff.WithMaxRetries(policy, fetchAttempts-1), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return items, nil
}

func contentIDs(items []domain.FeedItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ContentID)
	}
	return ids
}
