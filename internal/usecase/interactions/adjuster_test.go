package interactions

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"camerpulse-feed/internal/domain"
	"camerpulse-feed/internal/usecase/prefs"
)

type memPrefsRepo struct {
	stored map[string]domain.UserPreferences
}

func newMemPrefsRepo() *memPrefsRepo {
	return &memPrefsRepo{stored: make(map[string]domain.UserPreferences)}
}

func (m *memPrefsRepo) GetPreferences(_ context.Context, userID string) (domain.UserPreferences, error) {
	current, ok := m.stored[userID]
	if !ok {
		return domain.UserPreferences{}, domain.ErrNotFound
	}
	return current, nil
}

func (m *memPrefsRepo) UpsertPreferences(_ context.Context, userID string, patch domain.PreferencesPatch) (domain.UserPreferences, error) {
	current, ok := m.stored[userID]
	if !ok {
		current = domain.DefaultPreferences(userID)
	}
	if patch.CivicContentWeight != nil {
		current.CivicContentWeight = *patch.CivicContentWeight
	}
	if patch.JobContentWeight != nil {
		current.JobContentWeight = *patch.JobContentWeight
	}
	if patch.ArtistContentWeight != nil {
		current.ArtistContentWeight = *patch.ArtistContentWeight
	}
	m.stored[userID] = current
	return current, nil
}

type memCache struct {
	keys map[string]struct{}
}

func newMemCache() *memCache {
	return &memCache{keys: make(map[string]struct{})}
}

func (m *memCache) Once(_ context.Context, key string, _ time.Duration, fn func() error) error {
	if _, ok := m.keys[key]; ok {
		return nil
	}
	if err := fn(); err != nil {
		return err
	}
	m.keys[key] = struct{}{}
	return nil
}

func newTestAdjuster(repo *memPrefsRepo, cache *memCache) *Adjuster {
	return NewAdjuster(prefs.NewService(repo, zerolog.Nop()), cache, zerolog.Nop())
}

func TestLikeNudgesMatchingWeight(t *testing.T) {
	repo := newMemPrefsRepo()
	adjuster := newTestAdjuster(repo, newMemCache())

	err := adjuster.Apply(context.Background(), domain.InteractionEvent{
		ID:              "evt-1",
		UserID:          "u1",
		ContentID:       "job-1",
		ContentType:     domain.ContentTypeJob,
		InteractionType: domain.InteractionLike,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.stored["u1"].JobContentWeight; got != 0.52 {
		t.Fatalf("expected job weight nudged to 0.52, got %v", got)
	}
	if got := repo.stored["u1"].CivicContentWeight; got != 0.5 {
		t.Fatalf("expected civic weight untouched, got %v", got)
	}
}

func TestViewDoesNotNudge(t *testing.T) {
	repo := newMemPrefsRepo()
	adjuster := newTestAdjuster(repo, newMemCache())

	if err := adjuster.Apply(context.Background(), domain.InteractionEvent{
		ID:              "evt-1",
		UserID:          "u1",
		ContentType:     domain.ContentTypePulse,
		InteractionType: domain.InteractionView,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.stored) != 0 {
		t.Fatalf("expected no preference write for a view")
	}
}

func TestRedeliveredEventIsAppliedOnce(t *testing.T) {
	repo := newMemPrefsRepo()
	adjuster := newTestAdjuster(repo, newMemCache())

	event := domain.InteractionEvent{
		ID:              "evt-1",
		UserID:          "u1",
		ContentType:     domain.ContentTypeArtistContent,
		InteractionType: domain.InteractionShare,
	}
	for i := 0; i < 3; i++ {
		if err := adjuster.Apply(context.Background(), event); err != nil {
			t.Fatalf("round %d: unexpected error: %v", i+1, err)
		}
	}
	if got := repo.stored["u1"].ArtistContentWeight; got != 0.52 {
		t.Fatalf("expected a single nudge to 0.52, got %v", got)
	}
}

func TestNudgeIsClampedAtOne(t *testing.T) {
	repo := newMemPrefsRepo()
	repo.stored["u1"] = domain.UserPreferences{UserID: "u1", CivicContentWeight: 0.99}
	adjuster := newTestAdjuster(repo, newMemCache())

	if err := adjuster.Apply(context.Background(), domain.InteractionEvent{
		ID:              "evt-1",
		UserID:          "u1",
		ContentType:     domain.ContentTypePoliticalUpdate,
		InteractionType: domain.InteractionComment,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.stored["u1"].CivicContentWeight; got != 1.0 {
		t.Fatalf("expected civic weight clamped at 1.0, got %v", got)
	}
}
