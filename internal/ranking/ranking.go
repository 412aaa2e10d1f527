// Package ranking orders the artwork collection for the two independent
// consumers of the engine: the search/sort gallery and the tabbed market
// leaderboard. Every strategy is a descending total order and every sort is
// stable, so ties keep their original relative order and re-renders never
// jitter.
package ranking

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/metamuseum/valuation-engine/internal/model"
	"github.com/metamuseum/valuation-engine/internal/valuation"
)

// Gallery strategies.
const (
	ValueDesc = "value_desc"
	LikesDesc = "likes_desc"
	ViewsDesc = "views_desc"
	Trending  = "trending" // gallery default
)

// Market leaderboard tabs.
const (
	Popular = "popular" // market default
	Gainers = "gainers"
	Views   = "views"
)

// MarketSize is the number of entries a market tab retains after sorting.
const MarketSize = 6

// ErrUnknownStrategy is returned for a sort key or market tab the engine
// does not recognize.
var ErrUnknownStrategy = errors.New("ranking: unknown strategy")

// Trend and popularity weights. Trend is weighted an order of magnitude
// above raw value movement so short-term momentum dominates the trending
// feed; offer count is a market-depth proxy and outweighs raw views in the
// popular tab.
var (
	trendWeight      = decimal.NewFromInt(4)
	trendingLikes    = decimal.NewFromFloat(0.1)
	popularLikes     = decimal.NewFromFloat(1.2)
	popularViews     = decimal.NewFromFloat(0.08)
	popularOfferBook = decimal.NewFromInt(6)
)

type scoreFunc func(*model.Artwork) decimal.Decimal

func likesScore(a *model.Artwork) decimal.Decimal { return decimal.NewFromInt(a.Likes) }
func viewsScore(a *model.Artwork) decimal.Decimal { return decimal.NewFromInt(a.Views) }

// The two consumers are independent: the gallery never sees market tabs
// and vice versa.
var (
	galleryStrategies = map[string]scoreFunc{
		ValueDesc: valuation.Value,
		LikesDesc: likesScore,
		ViewsDesc: viewsScore,
		Trending:  trendingScore,
	}
	marketTabs = map[string]scoreFunc{
		Popular: popularScore,
		Gainers: valuation.GrowthScore,
		Views:   viewsScore,
	}
)

func trendingScore(a *model.Artwork) decimal.Decimal {
	return valuation.Value(a).
		Add(valuation.Trend(a).Mul(trendWeight)).
		Add(decimal.NewFromInt(a.Likes).Mul(trendingLikes))
}

func popularScore(a *model.Artwork) decimal.Decimal {
	return decimal.NewFromInt(a.Likes).Mul(popularLikes).
		Add(decimal.NewFromInt(a.Views).Mul(popularViews)).
		Add(decimal.NewFromInt(int64(len(a.Offers))).Mul(popularOfferBook))
}

// sortBy returns a new slice ordered by score descending, stable for ties.
// The input is never reordered; ranking has no side effects on the session.
func sortBy(list []*model.Artwork, score scoreFunc) []*model.Artwork {
	out := make([]*model.Artwork, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		return score(out[i]).GreaterThan(score(out[j]))
	})
	return out
}

// Filter applies the gallery's case-insensitive substring match over title
// and artist. Filtering happens before sorting and never affects ranking
// math. An empty query keeps everything.
func Filter(list []*model.Artwork, query string) []*model.Artwork {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		out := make([]*model.Artwork, len(list))
		copy(out, list)
		return out
	}
	out := make([]*model.Artwork, 0, len(list))
	for _, a := range list {
		if strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strings.ToLower(a.Artist), q) {
			out = append(out, a)
		}
	}
	return out
}

// Gallery filters by query, then orders by the given gallery strategy.
// An empty strategy falls back to the trending default.
func Gallery(list []*model.Artwork, query, strategy string) ([]*model.Artwork, error) {
	if strategy == "" {
		strategy = Trending
	}
	score, ok := galleryStrategies[strategy]
	if !ok {
		return nil, ErrUnknownStrategy
	}
	return sortBy(Filter(list, query), score), nil
}

// Market orders by the given market tab and truncates to the top MarketSize.
// An empty tab falls back to the popular default.
func Market(list []*model.Artwork, tab string) ([]*model.Artwork, error) {
	if tab == "" {
		tab = Popular
	}
	score, ok := marketTabs[tab]
	if !ok {
		return nil, ErrUnknownStrategy
	}
	out := sortBy(list, score)
	if len(out) > MarketSize {
		out = out[:MarketSize]
	}
	return out, nil
}
