// Package normalize sanitizes raw persisted snapshots into well-typed
// session state. Snapshots come from an opaque blob store and may be
// malformed — hand-edited, truncated, or written by an older schema. No
// NaN, non-finite number, missing array, or empty history ever leaves this
// package; nothing outside it handles loosely typed data.
//
// Normalization is pure and never fails. A blob that does not even decode
// is handled one level up by the loader, which falls back to the seed
// dataset and runs that through here as well.
package normalize

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"

	"github.com/metamuseum/valuation-engine/internal/model"
	"github.com/metamuseum/valuation-engine/internal/ring"
)

// defaultBase is the floor value assigned when an artwork's base is
// missing or unparseable.
var defaultBase = decimal.NewFromInt(10)

// RawSnapshot mirrors the persisted layout with every field loosely typed.
// It exists only as the decode target; Session turns it into typed state.
type RawSnapshot struct {
	User     *RawUser     `json:"user"`
	Artworks []RawArtwork `json:"artworks"`
}

// RawUser is the untrusted form of the user record.
type RawUser struct {
	Username any               `json:"username"`
	Balance  any               `json:"balance"`
	Followed []any             `json:"followed"`
	Likes    map[string]any    `json:"likes"`
	Activity []json.RawMessage `json:"activity"`
}

// RawArtwork is the untrusted form of an artwork record.
type RawArtwork struct {
	ID          any   `json:"id"`
	Title       any   `json:"title"`
	Artist      any   `json:"artist"`
	Description any   `json:"description"`
	ImageRef    any   `json:"image_ref"`
	Base        any   `json:"base"`
	Likes       any   `json:"likes"`
	Views       any   `json:"views"`
	Offers      []any `json:"offers"`
	History     []any `json:"history"`
}

// Decode parses a serialized snapshot blob. A decode error means the blob
// is beyond repair; the caller falls back to the seed dataset.
func Decode(data []byte) (*RawSnapshot, error) {
	var raw RawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// Session produces a fully typed session from a raw snapshot. It never
// fails: every unusable field collapses to its documented default.
func Session(raw *RawSnapshot) *model.Session {
	s := &model.Session{User: user(raw.User)}
	for _, ra := range raw.Artworks {
		if a := artwork(ra); a != nil {
			s.Artworks = append(s.Artworks, a)
		}
	}
	return s
}

func user(ru *RawUser) *model.User {
	u := &model.User{
		Followed: []string{},
		Likes:    map[string]bool{},
		Activity: ring.New[model.ActivityEntry](model.ActivityCapacity),
	}
	if ru == nil {
		return u
	}

	u.Username = asString(ru.Username)
	u.Balance = asDecimal(ru.Balance, decimal.Zero)
	if u.Balance.IsNegative() {
		u.Balance = decimal.Zero
	}

	seen := map[string]bool{}
	for _, v := range ru.Followed {
		id := asString(v)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		u.Followed = append(u.Followed, id)
	}

	for id, v := range ru.Likes {
		if liked, ok := v.(bool); ok && liked {
			u.Likes[id] = true
		}
	}

	// Activity entries that no longer decode are dropped; the audit trail
	// is best-effort and bounded anyway.
	for _, raw := range ru.Activity {
		var e model.ActivityEntry
		if err := json.Unmarshal(raw, &e); err != nil || e.Type == "" {
			continue
		}
		u.Activity.Push(e)
	}

	return u
}

func artwork(ra RawArtwork) *model.Artwork {
	id := asString(ra.ID)
	if id == "" {
		// No stable identifier, nothing to key transactions on.
		return nil
	}

	a := &model.Artwork{
		ID:          id,
		Title:       asString(ra.Title),
		Artist:      asString(ra.Artist),
		Description: asString(ra.Description),
		ImageRef:    asString(ra.ImageRef),
		Base:        asDecimal(ra.Base, defaultBase),
		Likes:       asCount(ra.Likes),
		Views:       asCount(ra.Views),
		Offers:      make([]int64, 0, len(ra.Offers)),
		History:     ring.New[decimal.Decimal](model.HistoryCapacity),
	}
	if a.Base.IsNegative() {
		a.Base = defaultBase
	}

	// Negative or non-finite offers clamp to zero via floor truncation.
	for _, v := range ra.Offers {
		o := asCount(v)
		a.Offers = append(a.Offers, o)
	}

	for _, v := range ra.History {
		if f, ok := asFloat(v); ok {
			a.History.Push(decimal.NewFromFloat(f))
		}
	}
	if a.History.Len() == 0 {
		// History is never empty: reseed with the floor value.
		a.History.Push(a.Base)
	}

	return a
}

// --- coercion helpers ---

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asFloat coerces a loosely typed numeric field to a finite float64.
func asFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return 0, false
		}
		f = d.InexactFloat64()
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// asDecimal coerces to a finite decimal, with a fallback for anything
// unparseable.
func asDecimal(v any, fallback decimal.Decimal) decimal.Decimal {
	f, ok := asFloat(v)
	if !ok {
		return fallback
	}
	return decimal.NewFromFloat(f)
}

// asCount coerces to a non-negative integer counter; anything unusable
// becomes zero.
func asCount(v any) int64 {
	f, ok := asFloat(v)
	if !ok || f <= 0 {
		return 0
	}
	return int64(math.Floor(f))
}
