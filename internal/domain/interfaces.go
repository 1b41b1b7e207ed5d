package domain

import (
	"context"
	"time"
)

// PreferenceRepo stores per-user feed preferences.
type PreferenceRepo interface {
	GetPreferences(ctx context.Context, userID string) (UserPreferences, error)
	UpsertPreferences(ctx context.Context, userID string, patch PreferencesPatch) (UserPreferences, error)
}

// CandidateRepo reads feed candidates from the backing store.
type CandidateRepo interface {
	ListCandidates(ctx context.Context, excludeContentIDs []string, since time.Time, limit int) ([]FeedItem, error)
}

// InteractionRepo appends interaction events. Events are write-once.
type InteractionRepo interface {
	AppendInteraction(ctx context.Context, event InteractionEvent) error
}

// Scorer ranks a single candidate against the user's preferences.
type Scorer interface {
	Score(item FeedItem, prefs UserPreferences, now time.Time, civicUrgency bool) float64
}

// SessionStore tracks which content IDs were delivered within one feed
// generation and exposes the platform's civic-urgency flag.
type SessionStore interface {
	DeliveredIDs(ctx context.Context, userID, generation string) ([]string, error)
	MarkDelivered(ctx context.Context, userID, generation string, contentIDs []string, ttl time.Duration) error
	CivicUrgencyActive(ctx context.Context) (bool, error)
}

// Cache guards against repeated execution of the same keyed action.
type Cache interface {
	Once(ctx context.Context, key string, ttl time.Duration, fn func() error) error
}

// EventPublisher forwards interaction events to the analytics pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, event InteractionEvent) error
}
