package scorer

import (
	"math"
	"testing"
	"time"

	"camerpulse-feed/internal/domain"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreIsDeterministic(t *testing.T) {
	s := NewWeighted(168, 1.15)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	item := domain.FeedItem{ContentType: domain.ContentTypePulse, CreatedAt: now.Add(-3 * time.Hour), Region: "Littoral"}
	prefs := domain.DefaultPreferences("u1")
	prefs.Region = "Littoral"

	first := s.Score(item, prefs, now, false)
	second := s.Score(item, prefs, now, false)
	if first != second {
		t.Fatalf("expected identical scores, got %v and %v", first, second)
	}
}

func TestScoreStaysInRange(t *testing.T) {
	s := NewWeighted(168, 1.15)
	now := time.Now().UTC()
	ages := []time.Duration{0, time.Hour, 168 * time.Hour, 400 * time.Hour, -time.Hour}
	weights := []float64{0, 0.25, 0.5, 1}
	for _, age := range ages {
		for _, w := range weights {
			item := domain.FeedItem{ContentType: domain.ContentTypeJob, CreatedAt: now.Add(-age)}
			prefs := domain.DefaultPreferences("u1")
			prefs.JobContentWeight = w
			got := s.Score(item, prefs, now, true)
			if got < 0 || got > 1 {
				t.Fatalf("score %v out of range for age %v weight %v", got, age, w)
			}
		}
	}
}

func TestRecencyDecayBoundaries(t *testing.T) {
	s := NewWeighted(168, 1)
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	prefs := domain.DefaultPreferences("u1")

	fresh := domain.FeedItem{ContentType: domain.ContentTypePulse, CreatedAt: now}
	// base 0.5*0.5 + recency 0.3*1 + region 0.2*1
	if got := s.Score(fresh, prefs, now, false); !approxEqual(got, 0.75) {
		t.Fatalf("expected 0.75 for a fresh item, got %v", got)
	}

	stale := domain.FeedItem{ContentType: domain.ContentTypePulse, CreatedAt: now.Add(-168 * time.Hour)}
	// recency contributes exactly zero at the window edge
	if got := s.Score(stale, prefs, now, false); !approxEqual(got, 0.45) {
		t.Fatalf("expected 0.45 for a week-old item, got %v", got)
	}
}

func TestMissingRegionIsNeutral(t *testing.T) {
	s := NewWeighted(168, 1)
	now := time.Now().UTC()
	item := domain.FeedItem{ContentType: domain.ContentTypePulse, CreatedAt: now}

	home := domain.DefaultPreferences("u1")
	home.Region = "Centre"
	away := domain.DefaultPreferences("u1")
	away.Region = "Adamawa"

	if s.Score(item, home, now, false) != s.Score(item, away, now, false) {
		t.Fatalf("expected identical scores regardless of user region for items with no region")
	}
}

func TestRegionMatchUsesLocalPreference(t *testing.T) {
	s := NewWeighted(168, 1)
	now := time.Now().UTC()
	item := domain.FeedItem{ContentType: domain.ContentTypePulse, CreatedAt: now, Region: "Centre"}

	prefs := domain.DefaultPreferences("u1")
	prefs.Region = "Centre"
	prefs.LocalContentPreference = 1.0

	// base 0.25 + recency 0.3 + region 0.2*1.0
	if got := s.Score(item, prefs, now, false); !approxEqual(got, 0.75) {
		t.Fatalf("expected 0.75, got %v", got)
	}

	prefs.LocalContentPreference = 0.0
	if got := s.Score(item, prefs, now, false); !approxEqual(got, 0.55) {
		t.Fatalf("expected 0.55 with zero local preference, got %v", got)
	}
}

func TestPoliticalUpdateHasFixedBaseWeight(t *testing.T) {
	s := NewWeighted(168, 1)
	now := time.Now().UTC()
	item := domain.FeedItem{ContentType: domain.ContentTypePoliticalUpdate, CreatedAt: now}

	prefs := domain.DefaultPreferences("u1")
	prefs.CivicContentWeight = 1.0
	boosted := s.Score(item, prefs, now, false)

	prefs.CivicContentWeight = 0.0
	if got := s.Score(item, prefs, now, false); got != boosted {
		t.Fatalf("political updates must ignore the civic weight: %v vs %v", got, boosted)
	}
}

func TestCivicUrgencyBoostsOnlyCivicContent(t *testing.T) {
	s := NewWeighted(168, 1.15)
	now := time.Now().UTC()
	prefs := domain.DefaultPreferences("u1")

	pulse := domain.FeedItem{ContentType: domain.ContentTypePulse, CreatedAt: now}
	if s.Score(pulse, prefs, now, true) <= s.Score(pulse, prefs, now, false) {
		t.Fatalf("expected urgency to boost civic content")
	}

	job := domain.FeedItem{ContentType: domain.ContentTypeJob, CreatedAt: now}
	if s.Score(job, prefs, now, true) != s.Score(job, prefs, now, false) {
		t.Fatalf("expected urgency to leave jobs untouched")
	}
}
