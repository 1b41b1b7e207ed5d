package interactions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"camerpulse-feed/internal/domain"
)

type stubInteractionRepo struct {
	events []domain.InteractionEvent
	err    error
}

func (s *stubInteractionRepo) AppendInteraction(_ context.Context, event domain.InteractionEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type stubPublisher struct {
	published []domain.InteractionEvent
	err       error
}

func (s *stubPublisher) Publish(_ context.Context, event domain.InteractionEvent) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, event)
	return nil
}

func TestTrackRecordsExactlyOneEvent(t *testing.T) {
	repo := &stubInteractionRepo{}
	pub := &stubPublisher{}
	svc := NewService(repo, pub, zerolog.Nop())

	err := svc.Track(context.Background(), domain.InteractionEvent{
		UserID:          "u1",
		ContentID:       "pulse-1",
		ContentType:     domain.ContentTypePulse,
		InteractionType: domain.InteractionLike,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected 1 appended event, got %d", len(repo.events))
	}
	event := repo.events[0]
	if event.InteractionType != domain.InteractionLike {
		t.Fatalf("expected like, got %s", event.InteractionType)
	}
	if event.ID == "" {
		t.Fatalf("expected an assigned event ID")
	}
	if event.OccurredAt.IsZero() {
		t.Fatalf("expected an assigned timestamp")
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected the event forwarded to analytics")
	}
}

func TestTrackClampsNegativeDwell(t *testing.T) {
	repo := &stubInteractionRepo{}
	svc := NewService(repo, nil, zerolog.Nop())

	if err := svc.Track(context.Background(), domain.InteractionEvent{
		UserID:           "u1",
		ContentID:        "pulse-1",
		ContentType:      domain.ContentTypePulse,
		InteractionType:  domain.InteractionView,
		DwellTimeSeconds: -5,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.events[0].DwellTimeSeconds != 0 {
		t.Fatalf("expected dwell clamped to 0, got %d", repo.events[0].DwellTimeSeconds)
	}
}

func TestTrackAppendFailureReturnsWriteFailed(t *testing.T) {
	repo := &stubInteractionRepo{err: errors.New("disk full")}
	pub := &stubPublisher{}
	svc := NewService(repo, pub, zerolog.Nop())

	err := svc.Track(context.Background(), domain.InteractionEvent{
		UserID:          "u1",
		ContentID:       "pulse-1",
		ContentType:     domain.ContentTypePulse,
		InteractionType: domain.InteractionLike,
	})
	if !errors.Is(err, domain.ErrWriteFailed) {
		t.Fatalf("expected ErrWriteFailed, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatalf("expected no publish after a failed append")
	}
}

func TestTrackPublishFailureIsNonFatal(t *testing.T) {
	repo := &stubInteractionRepo{}
	pub := &stubPublisher{err: errors.New("broker gone")}
	svc := NewService(repo, pub, zerolog.Nop())

	if err := svc.Track(context.Background(), domain.InteractionEvent{
		UserID:          "u1",
		ContentID:       "pulse-1",
		ContentType:     domain.ContentTypePulse,
		InteractionType: domain.InteractionShare,
	}); err != nil {
		t.Fatalf("expected publish failure to stay silent, got %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected the durable append to survive")
	}
}

func TestTrackKeepsSuppliedTimestamp(t *testing.T) {
	repo := &stubInteractionRepo{}
	svc := NewService(repo, nil, zerolog.Nop())
	occurred := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

	if err := svc.Track(context.Background(), domain.InteractionEvent{
		UserID:          "u1",
		ContentID:       "job-1",
		ContentType:     domain.ContentTypeJob,
		InteractionType: domain.InteractionClick,
		OccurredAt:      occurred,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.events[0].OccurredAt.Equal(occurred) {
		t.Fatalf("expected supplied timestamp kept, got %v", repo.events[0].OccurredAt)
	}
}
