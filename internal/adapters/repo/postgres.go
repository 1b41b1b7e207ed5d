package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"camerpulse-feed/internal/domain"
	"camerpulse-feed/internal/infra/metrics"
)

// Postgres implements the repositories over pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.PreferenceRepo  = (*Postgres)(nil)
	_ domain.CandidateRepo   = (*Postgres)(nil)
	_ domain.InteractionRepo = (*Postgres)(nil)
)

// NewPostgres creates the database adapter.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if _, ok := parent.Deadline(); ok {
		return parent, func() {}
	}
	return context.WithTimeout(parent, timeout)
}

// GetPreferences implements domain.PreferenceRepo.
func (p *Postgres) GetPreferences(ctx context.Context, userID string) (domain.UserPreferences, error) {
	ctx, cancel := p.connCtx(ctx, 5*time.Second)
	defer cancel()

	var (
		prefs  domain.UserPreferences
		region sql.NullString
	)
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT user_id, civic_content_weight, job_content_weight, artist_content_weight, local_content_preference, region, updated_at
FROM user_feed_preferences
WHERE user_id = $1
`, userID).Scan(&prefs.UserID, &prefs.CivicContentWeight, &prefs.JobContentWeight, &prefs.ArtistContentWeight, &prefs.LocalContentPreference, &region, &prefs.UpdatedAt)
	metrics.ObserveNetworkRequest("postgres", "preferences_select", "user_feed_preferences", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserPreferences{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UserPreferences{}, fmt.Errorf("select preferences: %w", err)
	}
	if region.Valid {
		prefs.Region = region.String
	}
	return prefs, nil
}

// UpsertPreferences implements domain.PreferenceRepo. Absent patch fields
// keep their stored values; a first write fills them with the defaults.
func (p *Postgres) UpsertPreferences(ctx context.Context, userID string, patch domain.PreferencesPatch) (domain.UserPreferences, error) {
	ctx, cancel := p.connCtx(ctx, 5*time.Second)
	defer cancel()

	civic := nullFloat(patch.CivicContentWeight)
	job := nullFloat(patch.JobContentWeight)
	artist := nullFloat(patch.ArtistContentWeight)
	local := nullFloat(patch.LocalContentPreference)
	var region sql.NullString
	if patch.Region != nil {
		region = sql.NullString{String: *patch.Region, Valid: true}
	}

	var (
		prefs     domain.UserPreferences
		regionOut sql.NullString
	)
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
INSERT INTO user_feed_preferences (user_id, civic_content_weight, job_content_weight, artist_content_weight, local_content_preference, region)
VALUES ($1, COALESCE($2, 0.5), COALESCE($3, 0.5), COALESCE($4, 0.5), COALESCE($5, 0.5), $6)
ON CONFLICT (user_id) DO UPDATE SET
	civic_content_weight = COALESCE($2, user_feed_preferences.civic_content_weight),
	job_content_weight = COALESCE($3, user_feed_preferences.job_content_weight),
	artist_content_weight = COALESCE($4, user_feed_preferences.artist_content_weight),
	local_content_preference = COALESCE($5, user_feed_preferences.local_content_preference),
	region = COALESCE($6, user_feed_preferences.region),
	updated_at = now()
RETURNING user_id, civic_content_weight, job_content_weight, artist_content_weight, local_content_preference, region, updated_at
`, userID, civic, job, artist, local, region).Scan(&prefs.UserID, &prefs.CivicContentWeight, &prefs.JobContentWeight, &prefs.ArtistContentWeight, &prefs.LocalContentPreference, &regionOut, &prefs.UpdatedAt)
	metrics.ObserveNetworkRequest("postgres", "preferences_upsert", "user_feed_preferences", start, err)
	if err != nil {
		return domain.UserPreferences{}, fmt.Errorf("upsert preferences: %w", err)
	}
	if regionOut.Valid {
		prefs.Region = regionOut.String
	}
	return prefs, nil
}

// ListCandidates implements domain.CandidateRepo. Rows older than since are
// skipped (their recency factor is zero anyway) and rows whose content ID
// was already delivered in this generation are excluded server-side.
func (p *Postgres) ListCandidates(ctx context.Context, excludeContentIDs []string, since time.Time, limit int) ([]domain.FeedItem, error) {
	ctx, cancel := p.connCtx(ctx, 10*time.Second)
	defer cancel()

	if excludeContentIDs == nil {
		excludeContentIDs = []string{}
	}

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, content_type, content_id, content, region, created_at
FROM feed_content
WHERE created_at >= $1
  AND NOT (content_id = ANY($2))
ORDER BY created_at DESC
LIMIT $3
`, since, excludeContentIDs, limit)
	metrics.ObserveNetworkRequest("postgres", "candidates_select", "feed_content", start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer rows.Close()

	items := make([]domain.FeedItem, 0, limit)
	for rows.Next() {
		var (
			item        domain.FeedItem
			contentType string
			raw         []byte
			region      sql.NullString
		)
		if err := rows.Scan(&item.ID, &contentType, &item.ContentID, &raw, &region, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		}
		item.ContentType = domain.ContentType(contentType)
		if !item.ContentType.Valid() {
			// The platform may add content types this service does not
			// rank yet. Skip rather than fail the whole feed.
			continue
		}
		payload, err := decodeContent(item.ContentType, raw)
		if err != nil {
			continue
		}
		item.Content = payload
		if region.Valid {
			item.Region = region.String
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return items, nil
}

// AppendInteraction implements domain.InteractionRepo.
func (p *Postgres) AppendInteraction(ctx context.Context, event domain.InteractionEvent) error {
	ctx, cancel := p.connCtx(ctx, 5*time.Second)
	defer cancel()

	var payload []byte
	if event.Metadata != nil {
		if data, err := json.Marshal(event.Metadata); err == nil {
			payload = data
		}
	}

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO interaction_events (id, user_id, content_id, content_type, interaction_type, dwell_time_seconds, metadata, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, event.ID, event.UserID, event.ContentID, string(event.ContentType), string(event.InteractionType), event.DwellTimeSeconds, payload, event.OccurredAt)
	metrics.ObserveNetworkRequest("postgres", "interactions_insert", "interaction_events", start, err)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func decodeContent(contentType domain.ContentType, raw []byte) (domain.ContentPayload, error) {
	if len(raw) == 0 {
		return domain.ContentPayload{}, nil
	}
	var payload domain.ContentPayload
	switch contentType {
	case domain.ContentTypePulse:
		var c domain.PulseContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return domain.ContentPayload{}, err
		}
		payload.Pulse = &c
	case domain.ContentTypePoliticalUpdate:
		var c domain.PoliticalUpdateContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return domain.ContentPayload{}, err
		}
		payload.PoliticalUpdate = &c
	case domain.ContentTypeJob:
		var c domain.JobContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return domain.ContentPayload{}, err
		}
		payload.Job = &c
	case domain.ContentTypeArtistContent:
		var c domain.ArtistContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return domain.ContentPayload{}, err
		}
		payload.Artist = &c
	}
	return payload, nil
}
