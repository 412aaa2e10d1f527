// Package valuation implements the deterministic pricing formula that turns
// an artwork's engagement signals into a market value and a momentum trend.
//
//	value = round2(base + likes*0.45 + views*0.02 + offerImpact)
//	offerImpact = Σ sqrt(max(0, offer)) * 0.9
//
// Likes and views contribute small linear increments (cheap to manipulate,
// low signal); offers carry real demand and use square-root dampening so a
// single large bid cannot dominate the price.
//
// All monetary values use shopspring/decimal — never float64 for money.
// The square root runs in float64, as decimal has no transcendental
// functions, with the result immediately converted back to decimal.
//
// Every function here is pure: same inputs, same output, no memoization.
// Values always reflect the live counters.
package valuation

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/metamuseum/valuation-engine/internal/model"
)

var (
	// LikeWeight is the linear value increment per like.
	LikeWeight = decimal.NewFromFloat(0.45)

	// ViewWeight is the linear value increment per view.
	ViewWeight = decimal.NewFromFloat(0.02)

	// OfferDampen scales the square-rooted offer amounts.
	OfferDampen = 0.9

	// SuggestMarkup is the 8% markup applied over the highest existing
	// offer when pre-filling a bid.
	SuggestMarkup = decimal.NewFromFloat(1.08)

	// SuggestValueShare is the fraction of current value suggested when
	// the offer book is empty.
	SuggestValueShare = decimal.NewFromFloat(0.25)
)

// Scale is the number of decimal places for value/trend rounding.
const Scale int32 = 2

// OfferImpact computes the aggregate demand contribution of the offer book.
// Each offer is square-rooted before weighting: 25 credits -> sqrt(25)*0.9
// = 4.5. Negative entries contribute nothing.
func OfferImpact(offers []int64) decimal.Decimal {
	var sum float64
	for _, o := range offers {
		if o <= 0 {
			continue
		}
		sum += math.Sqrt(float64(o)) * OfferDampen
	}
	return decimal.NewFromFloat(sum)
}

// Value computes the current market value of an artwork from its live
// counters, rounded to 2 decimal places (half away from zero).
func Value(a *model.Artwork) decimal.Decimal {
	v := a.Base.
		Add(decimal.NewFromInt(a.Likes).Mul(LikeWeight)).
		Add(decimal.NewFromInt(a.Views).Mul(ViewWeight)).
		Add(OfferImpact(a.Offers))
	return v.Round(Scale)
}

// Trend returns the most recent tick-over-tick value delta, or zero when
// fewer than two history points exist. Non-negative means "up".
func Trend(a *model.Artwork) decimal.Decimal {
	if a.History.Len() < 2 {
		return decimal.Zero
	}
	last := a.History.At(a.History.Len() - 1)
	prev := a.History.At(a.History.Len() - 2)
	return last.Sub(prev).Round(Scale)
}

// GrowthScore rewards sustained growth across the retained history window
// plus double-weighted recent momentum:
//
//	growth = (history[last] - history[first]) + trend*2
//
// Zero when fewer than two history points exist.
func GrowthScore(a *model.Artwork) decimal.Decimal {
	if a.History.Len() < 2 {
		return decimal.Zero
	}
	first, _ := a.History.First()
	last, _ := a.History.Last()
	two := decimal.NewFromInt(2)
	return last.Sub(first).Add(Trend(a).Mul(two))
}

// PushHistory appends the current computed value to the artwork's history
// window. Must be called exactly once per transaction that changes likes,
// views, or offers — never for follow or identity changes, which do not
// move the valuation.
func PushHistory(a *model.Artwork) decimal.Decimal {
	v := Value(a)
	a.History.Push(v)
	return v
}

// Suggest returns an advisory bid amount to pre-fill an offer form:
// 8% over the highest existing offer, or a quarter of current value when
// the book is empty, floored to an integer and never below 1. It is never
// used to validate or clamp an actual offer.
func Suggest(a *model.Artwork) int64 {
	var maxOffer int64
	for _, o := range a.Offers {
		if o > maxOffer {
			maxOffer = o
		}
	}

	var suggested int64
	if maxOffer > 0 {
		suggested = decimal.NewFromInt(maxOffer).Mul(SuggestMarkup).Floor().IntPart()
	} else {
		suggested = Value(a).Mul(SuggestValueShare).Floor().IntPart()
	}
	if suggested < 1 {
		return 1
	}
	return suggested
}
