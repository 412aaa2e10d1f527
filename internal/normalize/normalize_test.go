package normalize

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/metamuseum/valuation-engine/internal/model"
)

func TestDecode_RejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not json at all")); err == nil {
		t.Fatal("expected decode error for malformed blob")
	}
	if _, err := Decode([]byte(`{"user": "should be an object"}`)); err == nil {
		t.Fatal("expected decode error for mistyped user field")
	}
}

func TestSession_NilUserGetsAnonymousDefaults(t *testing.T) {
	s := Session(&RawSnapshot{})

	if s.User == nil {
		t.Fatal("session must always carry a user")
	}
	if s.User.Username != "" {
		t.Errorf("expected anonymous user, got %q", s.User.Username)
	}
	if !s.User.Balance.IsZero() {
		t.Errorf("expected zero balance, got %s", s.User.Balance)
	}
	if s.User.Followed == nil || s.User.Likes == nil {
		t.Error("followed and likes must be initialized, not nil")
	}
	if s.User.Activity.Capacity() != model.ActivityCapacity {
		t.Errorf("activity capacity = %d, want %d", s.User.Activity.Capacity(), model.ActivityCapacity)
	}
}

func TestSession_NegativeBalanceClampsToZero(t *testing.T) {
	s := Session(&RawSnapshot{User: &RawUser{Balance: -250.0}})
	if !s.User.Balance.IsZero() {
		t.Errorf("negative balance should clamp to zero, got %s", s.User.Balance)
	}
}

func TestSession_BalanceFromStringSnapshot(t *testing.T) {
	// Persisted decimals serialize as quoted strings; they must round-trip.
	s := Session(&RawSnapshot{User: &RawUser{Balance: "1450.55"}})
	if !s.User.Balance.Equal(decimal.NewFromFloat(1450.55)) {
		t.Errorf("balance = %s, want 1450.55", s.User.Balance)
	}
}

func TestSession_FollowedDedupedAndCleaned(t *testing.T) {
	s := Session(&RawSnapshot{User: &RawUser{
		Followed: []any{"mm-001", "mm-001", "", 42, "mm-002"},
	}})
	got := s.User.Followed
	if len(got) != 2 || got[0] != "mm-001" || got[1] != "mm-002" {
		t.Errorf("followed = %v, want [mm-001 mm-002]", got)
	}
}

func TestSession_LikesKeepOnlyTrueBooleans(t *testing.T) {
	s := Session(&RawSnapshot{User: &RawUser{
		Likes: map[string]any{
			"mm-001": true,
			"mm-002": false,
			"mm-003": "yes",
			"mm-004": 1,
		},
	}})
	if len(s.User.Likes) != 1 || !s.User.Likes["mm-001"] {
		t.Errorf("likes = %v, want only mm-001", s.User.Likes)
	}
}

func TestSession_UndecodableActivityDropped(t *testing.T) {
	s := Session(&RawSnapshot{User: &RawUser{
		Activity: []json.RawMessage{
			json.RawMessage(`{"id":"x","type":"LIKE","detail":"Liked a piece"}`),
			json.RawMessage(`"just a string"`),
			json.RawMessage(`{"detail":"no type field"}`),
		},
	}})
	if s.User.Activity.Len() != 1 {
		t.Fatalf("activity len = %d, want 1", s.User.Activity.Len())
	}
	e, _ := s.User.Activity.First()
	if e.Type != model.ActivityLike {
		t.Errorf("surviving entry type = %q, want %q", e.Type, model.ActivityLike)
	}
}

func TestSession_ArtworkWithoutIDSkipped(t *testing.T) {
	s := Session(&RawSnapshot{Artworks: []RawArtwork{
		{Title: "Orphan"},
		{ID: "", Title: "Also orphan"},
		{ID: "mm-001", Title: "Kept"},
	}})
	if len(s.Artworks) != 1 || s.Artworks[0].ID != "mm-001" {
		t.Errorf("expected only mm-001 to survive, got %d artworks", len(s.Artworks))
	}
}

func TestSession_BaseFallsBackToDefault(t *testing.T) {
	cases := []struct {
		name string
		base any
	}{
		{"missing", nil},
		{"negative", -5.0},
		{"unparseable", "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Session(&RawSnapshot{Artworks: []RawArtwork{{ID: "a", Base: tc.base}}})
			if !s.Artworks[0].Base.Equal(defaultBase) {
				t.Errorf("base = %s, want %s", s.Artworks[0].Base, defaultBase)
			}
		})
	}
}

func TestSession_CountersClampAndFloor(t *testing.T) {
	s := Session(&RawSnapshot{Artworks: []RawArtwork{{
		ID:    "a",
		Likes: -7.0,
		Views: 12.9,
	}}})
	a := s.Artworks[0]
	if a.Likes != 0 {
		t.Errorf("negative likes should clamp to 0, got %d", a.Likes)
	}
	if a.Views != 12 {
		t.Errorf("fractional views should floor, got %d", a.Views)
	}
}

func TestSession_OffersCoerced(t *testing.T) {
	s := Session(&RawSnapshot{Artworks: []RawArtwork{{
		ID:     "a",
		Offers: []any{25.0, -3.0, "14", 9.7},
	}}})
	got := s.Artworks[0].Offers
	want := []int64{25, 0, 14, 9}
	if len(got) != len(want) {
		t.Fatalf("offers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("offers[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSession_HistoryDropsNonFinite(t *testing.T) {
	s := Session(&RawSnapshot{Artworks: []RawArtwork{{
		ID:      "a",
		Base:    10.0,
		History: []any{10.0, "bad", 11.5, nil},
	}}})
	h := s.Artworks[0].History
	if h.Len() != 2 {
		t.Fatalf("history len = %d, want 2", h.Len())
	}
	last, _ := h.Last()
	if !last.Equal(decimal.NewFromFloat(11.5)) {
		t.Errorf("last history point = %s, want 11.5", last)
	}
}

func TestSession_EmptyHistoryReseededWithBase(t *testing.T) {
	s := Session(&RawSnapshot{Artworks: []RawArtwork{{ID: "a", Base: 42.0}}})
	h := s.Artworks[0].History
	if h.Len() != 1 {
		t.Fatalf("history len = %d, want 1", h.Len())
	}
	first, _ := h.First()
	if !first.Equal(decimal.NewFromInt(42)) {
		t.Errorf("reseeded history = %s, want 42", first)
	}
}

func TestSession_HistoryBoundedOnIngest(t *testing.T) {
	var hist []any
	for i := 0; i < 30; i++ {
		hist = append(hist, float64(i))
	}
	s := Session(&RawSnapshot{Artworks: []RawArtwork{{ID: "a", History: hist}}})
	h := s.Artworks[0].History
	if h.Len() != model.HistoryCapacity {
		t.Fatalf("history len = %d, want %d", h.Len(), model.HistoryCapacity)
	}
	last, _ := h.Last()
	if !last.Equal(decimal.NewFromInt(29)) {
		t.Errorf("last = %s, want 29 (oldest points dropped)", last)
	}
}
