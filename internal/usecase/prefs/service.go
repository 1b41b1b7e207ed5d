package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"camerpulse-feed/internal/domain"
	"camerpulse-feed/internal/infra/metrics"
)

// Service manages per-user feed preferences.
type Service struct {
	repo domain.PreferenceRepo
	log  zerolog.Logger
}

// NewService creates the service.
func NewService(repo domain.PreferenceRepo, logger zerolog.Logger) *Service {
	return &Service{repo: repo, log: logger}
}

// Get returns the user's preferences, or the system defaults when the user
// has never initialized them.
func (s *Service) Get(ctx context.Context, userID string) (domain.UserPreferences, error) {
	prefs, err := s.repo.GetPreferences(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultPreferences(userID), nil
	}
	if err != nil {
		return domain.UserPreferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return prefs, nil
}

// Update merges the supplied fields into the stored preferences. Weights
// outside [0,1] are silently clamped, so repeated out-of-range updates are
// idempotent. origin labels the update for metrics ("explicit" from the
// settings UI, "implicit" from the analytics worker).
func (s *Service) Update(ctx context.Context, userID string, patch domain.PreferencesPatch, origin string) (domain.UserPreferences, error) {
	clampPatch(&patch)
	updated, err := s.repo.UpsertPreferences(ctx, userID, patch)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("prefs: upsert failed")
		return domain.UserPreferences{}, fmt.Errorf("update preferences: %w", domain.ErrWriteFailed)
	}
	metrics.IncPreferenceUpdate(origin)
	return updated, nil
}

func clampPatch(patch *domain.PreferencesPatch) {
	clampField(patch.CivicContentWeight)
	clampField(patch.JobContentWeight)
	clampField(patch.ArtistContentWeight)
	clampField(patch.LocalContentPreference)
}

func clampField(v *float64) {
	if v == nil {
		return
	}
	if *v < 0 {
		*v = 0
	}
	if *v > 1 {
		*v = 1
	}
}
