// Package seed holds the built-in demo dataset used when the blob store is
// empty or its contents cannot be decoded. The loader still runs this
// through the normalizer, so the engine only ever sees sanitized state.
package seed

import "github.com/metamuseum/valuation-engine/internal/normalize"

// Snapshot returns the default dataset: an anonymous user with a zero
// balance and six artworks with hand-authored base stats.
func Snapshot() *normalize.RawSnapshot {
	return &normalize.RawSnapshot{
		User: &normalize.RawUser{},
		Artworks: []normalize.RawArtwork{
			{
				ID:          "mm-001",
				Title:       "Busto Femminile // Index",
				Artist:      "A. Neri",
				ImageRef:    "https://images.unsplash.com/photo-1541963463532-d68292c34b19?auto=format&fit=crop&w=1400&q=80",
				Description: "Classical sculpture reimagined as a digital asset. Every interaction moves the price like a micro exchange.",
				Base:        10, Likes: 124, Views: 6800,
				Offers:  []any{14, 22, 18, 30},
				History: []any{10, 11.2, 12.1, 11.9, 12.45, 12.68, 12.45},
			},
			{
				ID:          "mm-002",
				Title:       "Neon Corridor",
				Artist:      "Luna Shard",
				ImageRef:    "https://images.unsplash.com/photo-1520975682031-a0a350c0ce4c?auto=format&fit=crop&w=1400&q=80",
				Description: "Synthetic architectural space of light and depth. Value grows with simulated market interest.",
				Base:        10, Likes: 88, Views: 3900,
				Offers:  []any{9, 12, 16},
				History: []any{10, 10.6, 10.9, 11.1, 11.45, 11.62},
			},
			{
				ID:          "mm-003",
				Title:       "Algorithmic Bloom",
				Artist:      "K. Yapa (demo)",
				ImageRef:    "https://images.unsplash.com/photo-1526318472351-c75fcf070305?auto=format&fit=crop&w=1400&q=80",
				Description: "Generative pattern fed by market data: a bloom that reacts to user behavior.",
				Base:        10, Likes: 156, Views: 9100,
				Offers:  []any{20, 26, 33, 17, 24},
				History: []any{10, 11.0, 11.6, 12.4, 13.2, 13.9, 14.4},
			},
			{
				ID:          "mm-004",
				Title:       "Blue Signal (NFT-less)",
				Artist:      "M. Riva",
				ImageRef:    "https://images.unsplash.com/photo-1550684376-efcbd6e3f031?auto=format&fit=crop&w=1400&q=80",
				Description: "Digital art without the crypto hype: reputation and demand set the value trajectory.",
				Base:        10, Likes: 62, Views: 2500,
				Offers:  []any{8, 10},
				History: []any{10, 10.2, 10.3, 10.55, 10.7},
			},
			{
				ID:          "mm-005",
				Title:       "Quantum Portrait",
				Artist:      "E. Satori",
				ImageRef:    "https://images.unsplash.com/photo-1520975958225-7f61a1b8b1b8?auto=format&fit=crop&w=1400&q=80",
				Description: "A digital portrait treating identity as a market variable. Value follows interaction.",
				Base:        10, Likes: 44, Views: 1200,
				Offers:  []any{6, 7, 11},
				History: []any{10, 10.15, 10.28, 10.44, 10.62},
			},
			{
				ID:          "mm-006",
				Title:       "Black Gallery / Void",
				Artist:      "Studio Meta",
				ImageRef:    "https://images.unsplash.com/photo-1518998053901-5348d3961a04?auto=format&fit=crop&w=1400&q=80",
				Description: "An immersive museum environment where the room itself is the work. Simulated demand drives trend and growth.",
				Base:        10, Likes: 112, Views: 5400,
				Offers:  []any{12, 18, 19},
				History: []any{10, 10.9, 11.2, 11.75, 12.0, 12.12},
			},
		},
	}
}
