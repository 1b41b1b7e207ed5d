package domain

import "time"

// ContentType identifies the kind of record behind a feed item.
type ContentType string

// Known content types.
const (
	ContentTypePulse           ContentType = "pulse"
	ContentTypePoliticalUpdate ContentType = "political_update"
	ContentTypeJob             ContentType = "job"
	ContentTypeArtistContent   ContentType = "artist_content"
)

// Valid reports whether the content type is one the feed understands.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypePulse, ContentTypePoliticalUpdate, ContentTypeJob, ContentTypeArtistContent:
		return true
	}
	return false
}

// IsCivic reports whether the content type counts as civic content.
func (t ContentType) IsCivic() bool {
	return t == ContentTypePulse || t == ContentTypePoliticalUpdate
}

// InteractionType identifies a user gesture on a feed item.
type InteractionType string

// Known interaction types.
const (
	InteractionView    InteractionType = "view"
	InteractionLike    InteractionType = "like"
	InteractionShare   InteractionType = "share"
	InteractionComment InteractionType = "comment"
	InteractionClick   InteractionType = "click"
)

// Valid reports whether the interaction type is known.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionLike, InteractionShare, InteractionComment, InteractionClick:
		return true
	}
	return false
}

// PulseContent is the denormalized snapshot of a civic pulse.
type PulseContent struct {
	AuthorName string   `json:"author_name"`
	Body       string   `json:"body"`
	Hashtags   []string `json:"hashtags,omitempty"`
}

// PoliticalUpdateContent is the snapshot of a politician update.
type PoliticalUpdateContent struct {
	PoliticianName string `json:"politician_name"`
	Title          string `json:"title"`
	Body           string `json:"body"`
}

// JobContent is the snapshot of a job listing.
type JobContent struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Salary   string `json:"salary,omitempty"`
}

// ArtistContent is the snapshot of an artist post.
type ArtistContent struct {
	ArtistName string `json:"artist_name"`
	Title      string `json:"title"`
	MediaURL   string `json:"media_url,omitempty"`
}

// ContentPayload carries the snapshot of the underlying record.
// Exactly one branch is set, matching the item's ContentType.
type ContentPayload struct {
	Pulse           *PulseContent           `json:"pulse,omitempty"`
	PoliticalUpdate *PoliticalUpdateContent `json:"political_update,omitempty"`
	Job             *JobContent             `json:"job,omitempty"`
	Artist          *ArtistContent          `json:"artist,omitempty"`
}

// FeedItem is one piece of content eligible for ranking. Items live only for
// one generation cycle; they are never persisted after delivery.
type FeedItem struct {
	ID          string         `json:"id"`
	ContentType ContentType    `json:"content_type"`
	ContentID   string         `json:"content_id"`
	Content     ContentPayload `json:"content"`
	Region      string         `json:"region,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	Score       float64        `json:"score"`
}

// UserPreferences holds per-user content weights. The weights are independent
// multipliers in [0,1], not a distribution.
type UserPreferences struct {
	UserID                 string    `json:"user_id"`
	CivicContentWeight     float64   `json:"civic_content_weight"`
	JobContentWeight       float64   `json:"job_content_weight"`
	ArtistContentWeight    float64   `json:"artist_content_weight"`
	LocalContentPreference float64   `json:"local_content_preference"`
	Region                 string    `json:"region,omitempty"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// DefaultPreferences returns the system defaults used until a user
// initializes their own.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:                 userID,
		CivicContentWeight:     0.5,
		JobContentWeight:       0.5,
		ArtistContentWeight:    0.5,
		LocalContentPreference: 0.5,
	}
}

// PreferencesPatch is a partial preferences update. Nil fields keep their
// prior values.
type PreferencesPatch struct {
	CivicContentWeight     *float64 `json:"civic_content_weight,omitempty"`
	JobContentWeight       *float64 `json:"job_content_weight,omitempty"`
	ArtistContentWeight    *float64 `json:"artist_content_weight,omitempty"`
	LocalContentPreference *float64 `json:"local_content_preference,omitempty"`
	Region                 *string  `json:"region,omitempty"`
}

// InteractionEvent records one user gesture. Write-once, immutable.
type InteractionEvent struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	ContentID        string          `json:"content_id"`
	ContentType      ContentType     `json:"content_type"`
	InteractionType  InteractionType `json:"interaction_type"`
	DwellTimeSeconds int             `json:"dwell_time_seconds"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

// FeedPage is one delivered slice of the ranked feed.
type FeedPage struct {
	Items       []FeedItem `json:"items"`
	HasNextPage bool       `json:"has_next_page"`
	Cursor      string     `json:"cursor"`
}
