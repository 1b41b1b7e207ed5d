package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"camerpulse-feed/internal/domain"
	httpinfra "camerpulse-feed/internal/infra/http"
	"camerpulse-feed/internal/usecase/feed"
)

// minDwellSeconds is the observation threshold below which a view event is
// meaningless and gets dropped instead of zero-filled.
const minDwellSeconds = 1

// FeedProvider builds feed pages.
type FeedProvider interface {
	GetPage(ctx context.Context, userID, cursor string, pageSize int) (domain.FeedPage, error)
}

// PreferenceManager reads and updates user preferences.
type PreferenceManager interface {
	Get(ctx context.Context, userID string) (domain.UserPreferences, error)
	Update(ctx context.Context, userID string, patch domain.PreferencesPatch, origin string) (domain.UserPreferences, error)
}

// InteractionTracker records interaction events.
type InteractionTracker interface {
	Track(ctx context.Context, event domain.InteractionEvent) error
}

// Handler binds the feed usecases to HTTP routes.
type Handler struct {
	feed         FeedProvider
	prefs        PreferenceManager
	interactions InteractionTracker
	log          zerolog.Logger
}

// NewHandler creates the handler.
func NewHandler(feedService FeedProvider, prefsService PreferenceManager, tracker InteractionTracker, logger zerolog.Logger) *Handler {
	return &Handler{feed: feedService, prefs: prefsService, interactions: tracker, log: logger}
}

// Register mounts the API routes. All routes require the gateway-injected
// user identity.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(protected chi.Router) {
		protected.Use(httpinfra.UserAuthMiddleware())

		protected.Get("/api/v1/feed", h.handleGetFeed)
		protected.Post("/api/v1/interactions", h.handleTrackInteraction)
		protected.Get("/api/v1/preferences", h.handleGetPreferences)
		protected.Patch("/api/v1/preferences", h.handleUpdatePreferences)
	})
}

func (h *Handler) handleGetFeed(w http.ResponseWriter, r *http.Request) {
	userID := httpinfra.UserIDFromContext(r.Context())

	pageSize := 0
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "page_size must be a positive integer")
			return
		}
		pageSize = parsed
	}

	page, err := h.feed.GetPage(r.Context(), userID, r.URL.Query().Get("cursor"), pageSize)
	if errors.Is(err, feed.ErrBadCursor) {
		writeError(w, http.StatusBadRequest, "invalid cursor")
		return
	}
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "couldn't load feed, try again")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("api: feed request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type trackInteractionRequest struct {
	ContentID        string         `json:"content_id"`
	ContentType      string         `json:"content_type"`
	InteractionType  string         `json:"interaction_type"`
	DwellTimeSeconds int            `json:"dwell_time_seconds"`
	Metadata         map[string]any `json:"metadata"`
}

func (h *Handler) handleTrackInteraction(w http.ResponseWriter, r *http.Request) {
	userID := httpinfra.UserIDFromContext(r.Context())
	defer r.Body.Close()

	var req trackInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ContentID == "" {
		writeError(w, http.StatusBadRequest, "content_id is required")
		return
	}
	contentType := domain.ContentType(req.ContentType)
	if !contentType.Valid() {
		writeError(w, http.StatusBadRequest, "unknown content_type")
		return
	}
	interactionType := domain.InteractionType(req.InteractionType)
	if !interactionType.Valid() {
		writeError(w, http.StatusBadRequest, "unknown interaction_type")
		return
	}

	// Views below the observation threshold carry no signal; accept and
	// drop so the client never blocks on it.
	if interactionType == domain.InteractionView && req.DwellTimeSeconds < minDwellSeconds {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	err := h.interactions.Track(r.Context(), domain.InteractionEvent{
		UserID:           userID,
		ContentID:        req.ContentID,
		ContentType:      contentType,
		InteractionType:  interactionType,
		DwellTimeSeconds: req.DwellTimeSeconds,
		Metadata:         req.Metadata,
	})
	if err != nil {
		// A lost interaction must never break the client's render path.
		h.log.Warn().Err(err).Str("user_id", userID).Msg("api: interaction lost")
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := httpinfra.UserIDFromContext(r.Context())
	prefs, err := h.prefs.Get(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("api: get preferences failed")
		writeError(w, http.StatusServiceUnavailable, "couldn't load preferences, try again")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := httpinfra.UserIDFromContext(r.Context())
	defer r.Body.Close()

	var patch domain.PreferencesPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	prefs, err := h.prefs.Update(r.Context(), userID, patch, "explicit")
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("api: update preferences failed")
		writeError(w, http.StatusServiceUnavailable, "couldn't save preferences, try again")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
