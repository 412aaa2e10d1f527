// Package model defines the core domain types shared across the valuation
// engine. All monetary values use shopspring/decimal — never float64 for money.
package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/metamuseum/valuation-engine/internal/ring"
)

// The simulation's internal (virtual) currency.
const (
	CurrencyName   = "MuseCredits"
	CurrencySymbol = "MΞ"
)

// Retention limits for the bounded windows. Oldest entries are discarded
// on overflow; nothing is archived.
const (
	HistoryCapacity  = 18
	ActivityCapacity = 20
)

// Activity entry types written by the transaction operations.
const (
	ActivityLike     = "LIKE"
	ActivityFollow   = "FOLLOW"
	ActivityUnfollow = "UNFOLLOW"
	ActivityOffer    = "OFFER"
	ActivityLogin    = "LOGIN"
)

// Artwork is a simulated tradeable asset with engagement counters and an
// offer book. ID and the display metadata are immutable; the counters move
// only through the transaction operations.
type Artwork struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Description string `json:"description"`
	ImageRef    string `json:"image_ref"`

	// Base is the non-negative floor value, fixed at creation.
	Base decimal.Decimal `json:"base"`

	Likes int64 `json:"likes"`
	Views int64 `json:"views"`

	// Offers is append-only; insertion order is chronological.
	Offers []int64 `json:"offers"`

	// History records past computed values, most recent HistoryCapacity
	// entries only. It is a derived log — every entry is the output of
	// the valuation function at append time — and is never empty.
	History ring.Window[decimal.Decimal] `json:"history"`
}

// ActivityEntry is one record in the per-user audit trail.
type ActivityEntry struct {
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
	Type   string    `json:"type"`
	Detail string    `json:"detail"`
}

// User holds the session identity and user-side bookkeeping.
// An empty Username means anonymous.
type User struct {
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`

	// Followed is a duplicate-free list of artwork IDs in insertion order.
	Followed []string `json:"followed"`

	// Likes marks artworks this user has already liked, enforcing
	// at-most-one like per user per artwork.
	Likes map[string]bool `json:"likes"`

	Activity ring.Window[ActivityEntry] `json:"activity"`
}

// Session is the single in-memory owner of all engine state: one user plus
// the ordered artwork collection. It is loaded once at process start,
// normalized, and persisted as a whole snapshot after every mutation.
type Session struct {
	User     *User      `json:"user"`
	Artworks []*Artwork `json:"artworks"`
}

// Artwork returns the artwork with the given ID, or nil.
func (s *Session) Artwork(id string) *Artwork {
	for _, a := range s.Artworks {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Authenticated reports whether a user is logged in.
func (s *Session) Authenticated() bool {
	return s.User.Username != ""
}
