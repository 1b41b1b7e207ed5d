package interactions

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"camerpulse-feed/internal/domain"
	"camerpulse-feed/internal/usecase/prefs"
)

// nudgeStep is how far one strong signal moves the matching weight.
const nudgeStep = 0.02

// appliedTTL guards against re-applying the same event when the queue
// delivers it more than once.
const appliedTTL = 24 * time.Hour

// Adjuster turns strong interaction signals into implicit preference
// nudges. It runs in the analytics worker, never on the request path.
type Adjuster struct {
	prefs *prefs.Service
	cache domain.Cache
	log   zerolog.Logger
}

// NewAdjuster creates the adjuster.
func NewAdjuster(prefsService *prefs.Service, cache domain.Cache, logger zerolog.Logger) *Adjuster {
	return &Adjuster{prefs: prefsService, cache: cache, log: logger}
}

// Apply nudges the weight matching the event's content type. Views and
// clicks are recorded signals but do not move weights.
func (a *Adjuster) Apply(ctx context.Context, event domain.InteractionEvent) error {
	if !strongSignal(event.InteractionType) {
		return nil
	}
	if event.UserID == "" || !event.ContentType.Valid() {
		return nil
	}
	return a.cache.Once(ctx, "interaction:applied:"+event.ID, appliedTTL, func() error {
		current, err := a.prefs.Get(ctx, event.UserID)
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		patch := nudgePatch(event.ContentType, current)
		if patch == (domain.PreferencesPatch{}) {
			return nil
		}
		if _, err := a.prefs.Update(ctx, event.UserID, patch, "implicit"); err != nil {
			return err
		}
		a.log.Debug().
			Str("user_id", event.UserID).
			Str("content_type", string(event.ContentType)).
			Msg("adjuster: weight nudged")
		return nil
	})
}

func strongSignal(t domain.InteractionType) bool {
	switch t {
	case domain.InteractionLike, domain.InteractionShare, domain.InteractionComment:
		return true
	}
	return false
}

func nudgePatch(contentType domain.ContentType, current domain.UserPreferences) domain.PreferencesPatch {
	var patch domain.PreferencesPatch
	switch contentType {
	case domain.ContentTypePulse, domain.ContentTypePoliticalUpdate:
		v := current.CivicContentWeight + nudgeStep
		patch.CivicContentWeight = &v
	case domain.ContentTypeJob:
		v := current.JobContentWeight + nudgeStep
		patch.JobContentWeight = &v
	case domain.ContentTypeArtistContent:
		v := current.ArtistContentWeight + nudgeStep
		patch.ArtistContentWeight = &v
	}
	return patch
}
