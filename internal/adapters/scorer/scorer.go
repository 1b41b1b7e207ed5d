package scorer

import (
	"time"

	"camerpulse-feed/internal/domain"
)

// Factor weights of the blend. Kept in one place so the blend always sums
// to 1 before the urgency boost.
const (
	baseShare    = 0.5
	recencyShare = 0.3
	regionShare  = 0.2
)

// WeightedScorer blends preference weight, recency and regional affinity
// into a single score in [0,1].
type WeightedScorer struct {
	RecencyWindowHours float64
	UrgencyBoost       float64
}

var _ domain.Scorer = (*WeightedScorer)(nil)

// NewWeighted creates the scorer. recencyWindowHours is the window over
// which recency decays linearly to zero; urgencyBoost multiplies civic
// content when the civic-urgency flag is raised (1.0 disables it).
func NewWeighted(recencyWindowHours, urgencyBoost float64) *WeightedScorer {
	if recencyWindowHours <= 0 {
		recencyWindowHours = 168
	}
	if urgencyBoost <= 0 {
		urgencyBoost = 1.0
	}
	return &WeightedScorer{RecencyWindowHours: recencyWindowHours, UrgencyBoost: urgencyBoost}
}

// Score is a pure function over the item, preferences and the caller's
// frozen "now". Items without a region are never penalized: their region
// factor is neutral.
func (s *WeightedScorer) Score(item domain.FeedItem, prefs domain.UserPreferences, now time.Time, civicUrgency bool) float64 {
	base := baseWeight(item.ContentType, prefs)

	age := now.Sub(item.CreatedAt).Hours()
	recency := clamp(1-age/s.RecencyWindowHours, 0, 1)

	region := 1.0
	if item.Region != "" && item.Region == prefs.Region {
		region = prefs.LocalContentPreference
	}

	score := clamp(baseShare*base+recencyShare*recency+regionShare*region, 0, 1)
	if civicUrgency && item.ContentType.IsCivic() {
		score = clamp(score*s.UrgencyBoost, 0, 1)
	}
	return score
}

func baseWeight(contentType domain.ContentType, prefs domain.UserPreferences) float64 {
	switch contentType {
	case domain.ContentTypePulse:
		return prefs.CivicContentWeight
	case domain.ContentTypeJob:
		return prefs.JobContentWeight
	case domain.ContentTypeArtistContent:
		return prefs.ArtistContentWeight
	default:
		// political_update has no dedicated weight knob.
		return 0.5
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
