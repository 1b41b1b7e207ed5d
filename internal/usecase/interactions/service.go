package interactions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"camerpulse-feed/internal/domain"
	"camerpulse-feed/internal/infra/metrics"
)

// Service appends interaction events and forwards them to analytics.
// A lost event is acceptable; nothing here may block the caller's render
// path, so failures are reported but never retried.
type Service struct {
	repo      domain.InteractionRepo
	publisher domain.EventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewService creates the tracker. publisher may be nil when analytics is
// not wired.
func NewService(repo domain.InteractionRepo, publisher domain.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Track records exactly one immutable InteractionEvent. Dwell-time gating
// for view events is the caller's responsibility; whatever arrives here is
// recorded as given.
func (s *Service) Track(ctx context.Context, event domain.InteractionEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	if event.DwellTimeSeconds < 0 {
		event.DwellTimeSeconds = 0
	}

	if err := s.repo.AppendInteraction(ctx, event); err != nil {
		metrics.InteractionWriteErrors.Inc()
		s.log.Error().Err(err).
			Str("user_id", event.UserID).
			Str("content_id", event.ContentID).
			Str("interaction_type", string(event.InteractionType)).
			Msg("interactions: append failed")
		return fmt.Errorf("append interaction: %w", domain.ErrWriteFailed)
	}
	metrics.IncInteraction(string(event.InteractionType))

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			// Analytics is best-effort; the durable row already exists.
			s.log.Warn().Err(err).Str("event_id", event.ID).Msg("interactions: publish failed")
		}
	}
	return nil
}
