package market

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/metamuseum/valuation-engine/internal/model"
	"github.com/metamuseum/valuation-engine/internal/ranking"
	"github.com/metamuseum/valuation-engine/internal/valuation"
)

// --- Response types ---

// ArtworkView is the read model served to the gallery and market views:
// the artwork plus its live computed value and trend.
type ArtworkView struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Artist      string            `json:"artist"`
	Description string            `json:"description"`
	ImageRef    string            `json:"image_ref"`
	Likes       int64             `json:"likes"`
	Views       int64             `json:"views"`
	OfferCount  int               `json:"offer_count"`
	Value       decimal.Decimal   `json:"value"`
	Trend       decimal.Decimal   `json:"trend"`
	History     []decimal.Decimal `json:"history"`
}

// ArtworkDetail extends ArtworkView with the offer book, the advisory bid
// suggestion, and the caller's relationship to the piece.
type ArtworkDetail struct {
	ArtworkView
	Offers         []int64 `json:"offers"`
	SuggestedOffer int64   `json:"suggested_offer"`
	Liked          bool    `json:"liked"`
	Followed       bool    `json:"followed"`
}

// Profile is the user-facing session read model.
type Profile struct {
	Username string                `json:"username"`
	Balance  decimal.Decimal       `json:"balance"`
	Followed []ArtworkView         `json:"followed"`
	Activity []model.ActivityEntry `json:"activity"` // newest first
}

// Stats aggregates headline numbers across the whole collection.
type Stats struct {
	Artworks     int             `json:"artworks"`
	Volume       decimal.Decimal `json:"volume"`       // Σ value
	Interactions int64           `json:"interactions"` // Σ likes + views + offers
}

func artworkView(a *model.Artwork) ArtworkView {
	return ArtworkView{
		ID:          a.ID,
		Title:       a.Title,
		Artist:      a.Artist,
		Description: a.Description,
		ImageRef:    a.ImageRef,
		Likes:       a.Likes,
		Views:       a.Views,
		OfferCount:  len(a.Offers),
		Value:       valuation.Value(a),
		Trend:       valuation.Trend(a),
		History:     a.History.Items(),
	}
}

func artworkViews(list []*model.Artwork) []ArtworkView {
	out := make([]ArtworkView, len(list))
	for i, a := range list {
		out[i] = artworkView(a)
	}
	return out
}

// --- HTTP Handlers ---

// ListArtworks handles GET /api/v1/artworks?q=&sort=
// Filters by the case-insensitive search query, then applies the gallery
// sort (default: trending).
func (s *Service) ListArtworks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := ranking.Gallery(s.session.Artworks,
		r.URL.Query().Get("q"), r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, artworkViews(list))
}

// ListMarket handles GET /api/v1/market?tab=
// Serves the leaderboard for one market tab (default: popular), truncated
// to the top entries.
func (s *Service) ListMarket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := ranking.Market(s.session.Artworks, r.URL.Query().Get("tab"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, artworkViews(list))
}

// GetArtwork handles GET /api/v1/artworks/{artworkID}
func (s *Service) GetArtwork(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	art := s.session.Artwork(chi.URLParam(r, "artworkID"))
	if art == nil {
		writeError(w, ErrArtworkNotFound.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.detail(art))
}

// detail builds the full read model for one artwork. Callers hold s.mu.
func (s *Service) detail(art *model.Artwork) ArtworkDetail {
	followed := false
	for _, id := range s.session.User.Followed {
		if id == art.ID {
			followed = true
			break
		}
	}
	offers := make([]int64, len(art.Offers))
	copy(offers, art.Offers)

	return ArtworkDetail{
		ArtworkView:    artworkView(art),
		Offers:         offers,
		SuggestedOffer: valuation.Suggest(art),
		Liked:          s.session.User.Likes[art.ID],
		Followed:       followed,
	}
}

// HandleView handles POST /api/v1/artworks/{artworkID}/view
func (s *Service) HandleView(w http.ResponseWriter, r *http.Request) {
	art, err := s.RegisterView(r.Context(), chi.URLParam(r, "artworkID"))
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.detail(art))
}

// HandleLike handles POST /api/v1/artworks/{artworkID}/like
func (s *Service) HandleLike(w http.ResponseWriter, r *http.Request) {
	art, err := s.Like(r.Context(), chi.URLParam(r, "artworkID"))
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.detail(art))
}

// HandleFollow handles POST /api/v1/artworks/{artworkID}/follow
func (s *Service) HandleFollow(w http.ResponseWriter, r *http.Request) {
	following, err := s.ToggleFollow(r.Context(), chi.URLParam(r, "artworkID"))
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"following": following})
}

// OfferRequest is the JSON body for placing an offer. Fractional amounts
// are floored, not rejected.
type OfferRequest struct {
	Amount float64 `json:"amount"`
}

// HandleOffer handles POST /api/v1/artworks/{artworkID}/offers
func (s *Service) HandleOffer(w http.ResponseWriter, r *http.Request) {
	var req OfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		writeError(w, ErrInvalidOffer.Error(), http.StatusBadRequest)
		return
	}

	art, err := s.PlaceOffer(r.Context(), chi.URLParam(r, "artworkID"),
		int64(math.Floor(req.Amount)))
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, struct {
		ArtworkDetail
		Balance decimal.Decimal `json:"balance"`
	}{s.detail(art), s.session.User.Balance})
}

// LoginRequest is the JSON body for POST /api/v1/login.
type LoginRequest struct {
	Username string `json:"username"`
}

// HandleLogin handles POST /api/v1/login
func (s *Service) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	username, err := s.Login(r.Context(), req.Username)
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"username": username,
		"balance":  s.session.User.Balance,
	})
}

// HandleLogout handles POST /api/v1/logout
func (s *Service) HandleLogout(w http.ResponseWriter, r *http.Request) {
	s.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// HandleProfile handles GET /api/v1/profile
func (s *Service) HandleProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.session.User
	p := Profile{
		Username: user.Username,
		Balance:  user.Balance,
		Followed: []ArtworkView{},
		Activity: []model.ActivityEntry{},
	}
	for _, id := range user.Followed {
		if art := s.session.Artwork(id); art != nil {
			p.Followed = append(p.Followed, artworkView(art))
		}
	}
	entries := user.Activity.Items()
	for i := len(entries) - 1; i >= 0; i-- {
		p.Activity = append(p.Activity, entries[i])
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleStats handles GET /api/v1/stats
func (s *Service) HandleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{Artworks: len(s.session.Artworks), Volume: decimal.Zero}
	for _, a := range s.session.Artworks {
		stats.Volume = stats.Volume.Add(valuation.Value(a))
		stats.Interactions += a.Likes + a.Views + int64(len(a.Offers))
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleReset handles POST /api/v1/reset
func (s *Service) HandleReset(w http.ResponseWriter, r *http.Request) {
	s.Reset(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

// statusFor maps the error taxonomy to HTTP status codes: validation 400,
// missing identity 401, unknown artwork 404, failed preconditions 409.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidOffer), errors.Is(err, ErrUsernameTooShort):
		return http.StatusBadRequest
	case errors.Is(err, ErrLoginRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrArtworkNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyLiked), errors.Is(err, ErrInsufficientBalance):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
