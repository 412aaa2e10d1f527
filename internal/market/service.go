// Package market provides the transaction operations and HTTP handlers of
// the art-market simulation: registering views, likes, follows, offers, and
// the login/logout identity switch. It owns the in-memory session state
// exclusively and persists the full snapshot after every mutation.
//
// All monetary values use shopspring/decimal — never float64 for money.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/metamuseum/valuation-engine/internal/metrics"
	"github.com/metamuseum/valuation-engine/internal/model"
	"github.com/metamuseum/valuation-engine/internal/normalize"
	"github.com/metamuseum/valuation-engine/internal/seed"
	"github.com/metamuseum/valuation-engine/internal/store"
	"github.com/metamuseum/valuation-engine/internal/valuation"
)

// Validation errors: bad input, nothing mutated.
var (
	ErrInvalidOffer     = errors.New("market: offer amount must be a positive number")
	ErrUsernameTooShort = errors.New("market: username must have at least 2 characters")
)

// Precondition errors: well-formed input rejected by current state.
var (
	ErrLoginRequired       = errors.New("market: login required")
	ErrAlreadyLiked        = errors.New("market: artwork already liked")
	ErrInsufficientBalance = errors.New("market: insufficient balance")
)

// ErrArtworkNotFound is returned when an operation references an unknown
// artwork ID.
var ErrArtworkNotFound = errors.New("market: artwork not found")

// initialBalance is granted on first login (or whenever the stored balance
// is zero); a returning user with a positive balance keeps it.
var initialBalance = decimal.NewFromInt(1500)

// maxUsernameLen caps sanitized usernames.
const maxUsernameLen = 18

// Service owns the session state and applies transaction operations to it.
// A mutex serializes all access (single-instance engine; the HTTP server is
// concurrent even though each operation itself is atomic and synchronous).
type Service struct {
	mu      sync.Mutex
	session *model.Session
	store   store.Store
	wsHub   *WSHub // optional hub for value tick broadcasts
}

// NewService creates a service around an already-normalized session.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(session *model.Session, st store.Store, hub *WSHub) *Service {
	return &Service{
		session: session,
		store:   st,
		wsHub:   hub,
	}
}

// LoadSession reads the persisted snapshot from the store and normalizes
// it. An absent or malformed snapshot is a recoverable data-integrity
// warning: the engine falls back to the seed dataset, which goes through
// the same normalization.
func LoadSession(ctx context.Context, st store.Store) *model.Session {
	blob, err := st.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("snapshot load failed, using seed dataset", "err", err)
		}
		return normalize.Session(seed.Snapshot())
	}

	raw, err := normalize.Decode(blob)
	if err != nil {
		slog.Warn("malformed snapshot, using seed dataset", "err", err)
		return normalize.Session(seed.Snapshot())
	}
	return normalize.Session(raw)
}

// persist saves the full snapshot after a mutation. Persistence failures
// are non-fatal: the in-memory state stays authoritative for the rest of
// the process lifetime. Callers must hold s.mu.
func (s *Service) persist(ctx context.Context) {
	data, err := json.Marshal(s.session)
	if err != nil {
		slog.Warn("snapshot encode failed", "err", err)
		metrics.SnapshotSaveFailures.Inc()
		return
	}
	if err := s.store.Save(ctx, data); err != nil {
		slog.Warn("snapshot save failed", "err", err)
		metrics.SnapshotSaveFailures.Inc()
	}
}

// addActivity appends an audit entry for the logged-in user. Callers must
// hold s.mu. Anonymous actions are never audited.
func (s *Service) addActivity(entryType, detail string) {
	if !s.session.Authenticated() {
		return
	}
	s.session.User.Activity.Push(model.ActivityEntry{
		ID:     uuid.New().String(),
		At:     time.Now().UTC(),
		Type:   entryType,
		Detail: detail,
	})
}

// broadcast pushes a value tick to WebSocket clients, if a hub is attached.
func (s *Service) broadcast(a *model.Artwork) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.Broadcast(WSMessage{
		Type:      "value_update",
		ArtworkID: a.ID,
		Value:     valuation.Value(a).String(),
		Trend:     valuation.Trend(a).String(),
	})
}

// RegisterView counts one view on the artwork and appends the recomputed
// value to its history. No precondition; every call is a distinct,
// intentional increment.
func (s *Service) RegisterView(ctx context.Context, artworkID string) (*model.Artwork, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	art := s.session.Artwork(artworkID)
	if art == nil {
		return nil, ErrArtworkNotFound
	}

	art.Views++
	v := valuation.PushHistory(art)
	s.persist(ctx)

	metrics.TransactionsTotal.WithLabelValues("view").Inc()
	slog.Info("view registered", "artwork", art.ID, "views", art.Views, "value", v.String())
	s.broadcast(art)
	return art, nil
}

// Like adds one like to the artwork, at most once per user per artwork.
func (s *Service) Like(ctx context.Context, artworkID string) (*model.Artwork, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	art := s.session.Artwork(artworkID)
	if art == nil {
		return nil, ErrArtworkNotFound
	}
	if !s.session.Authenticated() {
		metrics.TransactionRejections.WithLabelValues("login_required").Inc()
		return nil, ErrLoginRequired
	}
	if s.session.User.Likes[artworkID] {
		metrics.TransactionRejections.WithLabelValues("duplicate_like").Inc()
		return nil, ErrAlreadyLiked
	}

	s.session.User.Likes[artworkID] = true
	art.Likes++
	v := valuation.PushHistory(art)
	s.addActivity(model.ActivityLike, fmt.Sprintf("Liked %q", art.Title))
	s.persist(ctx)

	metrics.TransactionsTotal.WithLabelValues("like").Inc()
	slog.Info("like registered", "artwork", art.ID, "likes", art.Likes, "value", v.String())
	s.broadcast(art)
	return art, nil
}

// ToggleFollow adds the artwork to the user's followed set, or removes it
// when already present. Follow state is user-side bookkeeping only and does
// not move the valuation or its history. Returns whether the user follows
// the artwork after the call.
func (s *Service) ToggleFollow(ctx context.Context, artworkID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	art := s.session.Artwork(artworkID)
	if art == nil {
		return false, ErrArtworkNotFound
	}
	if !s.session.Authenticated() {
		metrics.TransactionRejections.WithLabelValues("login_required").Inc()
		return false, ErrLoginRequired
	}

	user := s.session.User
	following := true
	idx := -1
	for i, id := range user.Followed {
		if id == artworkID {
			idx = i
			break
		}
	}
	if idx >= 0 {
		user.Followed = append(user.Followed[:idx], user.Followed[idx+1:]...)
		following = false
		s.addActivity(model.ActivityUnfollow, fmt.Sprintf("Stopped following %q", art.Title))
		metrics.TransactionsTotal.WithLabelValues("unfollow").Inc()
	} else {
		user.Followed = append(user.Followed, artworkID)
		s.addActivity(model.ActivityFollow, fmt.Sprintf("Now following %q", art.Title))
		metrics.TransactionsTotal.WithLabelValues("follow").Inc()
	}
	s.persist(ctx)

	slog.Info("follow toggled", "artwork", art.ID, "following", following)
	return following, nil
}

// PlaceOffer debits the user's balance and appends the amount to the
// artwork's offer book. Amounts arrive already floored to an integer;
// zero or negative amounts fail validation before any state is touched.
func (s *Service) PlaceOffer(ctx context.Context, artworkID string, amount int64) (*model.Artwork, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	art := s.session.Artwork(artworkID)
	if art == nil {
		return nil, ErrArtworkNotFound
	}
	if !s.session.Authenticated() {
		metrics.TransactionRejections.WithLabelValues("login_required").Inc()
		return nil, ErrLoginRequired
	}
	if amount <= 0 {
		metrics.TransactionRejections.WithLabelValues("invalid_offer").Inc()
		return nil, ErrInvalidOffer
	}

	user := s.session.User
	debit := decimal.NewFromInt(amount)
	if user.Balance.LessThan(debit) {
		metrics.TransactionRejections.WithLabelValues("insufficient_balance").Inc()
		return nil, ErrInsufficientBalance
	}

	user.Balance = user.Balance.Sub(debit)
	art.Offers = append(art.Offers, amount)
	v := valuation.PushHistory(art)
	s.addActivity(model.ActivityOffer,
		fmt.Sprintf("Offered %d %s on %q", amount, model.CurrencySymbol, art.Title))
	s.persist(ctx)

	metrics.TransactionsTotal.WithLabelValues("offer").Inc()
	slog.Info("offer placed",
		"artwork", art.ID,
		"amount", amount,
		"balance", user.Balance.String(),
		"value", v.String(),
	)
	s.broadcast(art)
	return art, nil
}

// Login sets the session identity. The username is trimmed, stripped of
// all whitespace, and capped at 18 characters; anything shorter than 2
// characters after sanitizing fails validation. A zero balance is seeded
// with the initial grant — at most once; returning users keep theirs.
func (s *Service) Login(ctx context.Context, username string) (string, error) {
	sanitized, err := sanitizeUsername(username)
	if err != nil {
		metrics.TransactionRejections.WithLabelValues("invalid_username").Inc()
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.session.User
	user.Username = sanitized
	if user.Balance.LessThanOrEqual(decimal.Zero) {
		user.Balance = initialBalance
	}
	s.addActivity(model.ActivityLogin, fmt.Sprintf("Signed in as %s", sanitized))
	s.persist(ctx)

	metrics.TransactionsTotal.WithLabelValues("login").Inc()
	slog.Info("user logged in", "username", sanitized, "balance", user.Balance.String())
	return sanitized, nil
}

// Logout clears the identity only. Balance, followed set, likes, activity,
// and all artwork data survive — logout is an identity change, not a reset.
// A no-op when already anonymous.
func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Authenticated() {
		return
	}
	old := s.session.User.Username
	s.session.User.Username = ""
	s.persist(ctx)

	metrics.TransactionsTotal.WithLabelValues("logout").Inc()
	slog.Info("user logged out", "username", old)
}

// Reset discards all state and reloads the seed dataset.
func (s *Service) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		slog.Warn("snapshot clear failed", "err", err)
	}
	s.session = normalize.Session(seed.Snapshot())
	s.persist(ctx)
	slog.Info("session reset to seed dataset")
}

// sanitizeUsername trims, removes all whitespace, and caps the length.
func sanitizeUsername(raw string) (string, error) {
	cleaned := strings.Join(strings.Fields(raw), "")
	runes := []rune(cleaned)
	if len(runes) > maxUsernameLen {
		runes = runes[:maxUsernameLen]
	}
	if len(runes) < 2 {
		return "", ErrUsernameTooShort
	}
	return string(runes), nil
}
