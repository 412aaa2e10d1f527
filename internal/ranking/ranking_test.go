package ranking

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/metamuseum/valuation-engine/internal/model"
	"github.com/metamuseum/valuation-engine/internal/ring"
	"github.com/metamuseum/valuation-engine/internal/valuation"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func art(id, title, artist string, base float64, likes, views int64, offers []int64, history ...float64) *model.Artwork {
	h := make([]decimal.Decimal, len(history))
	for i, v := range history {
		h[i] = d(v)
	}
	return &model.Artwork{
		ID:      id,
		Title:   title,
		Artist:  artist,
		Base:    d(base),
		Likes:   likes,
		Views:   views,
		Offers:  offers,
		History: ring.New(model.HistoryCapacity, h...),
	}
}

func ids(list []*model.Artwork) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

// --- Gallery tests ---

func TestGallery_ValueDesc(t *testing.T) {
	list := []*model.Artwork{
		art("low", "Low", "X", 10, 0, 0, nil),
		art("high", "High", "X", 10, 100, 0, nil),
		art("mid", "Mid", "X", 10, 50, 0, nil),
	}

	sorted, err := Gallery(list, "", ValueDesc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(sorted); i++ {
		prev := valuation.Value(sorted[i-1])
		cur := valuation.Value(sorted[i])
		if cur.GreaterThan(prev) {
			t.Fatalf("not descending by value: %v", ids(sorted))
		}
	}
	if sorted[0].ID != "high" || sorted[2].ID != "low" {
		t.Errorf("unexpected order: %v", ids(sorted))
	}
}

func TestGallery_LikesAndViewsDesc(t *testing.T) {
	list := []*model.Artwork{
		art("a", "A", "X", 10, 5, 900, nil),
		art("b", "B", "X", 10, 50, 100, nil),
	}

	byLikes, _ := Gallery(list, "", LikesDesc)
	if byLikes[0].ID != "b" {
		t.Errorf("likes_desc: expected b first, got %v", ids(byLikes))
	}

	byViews, _ := Gallery(list, "", ViewsDesc)
	if byViews[0].ID != "a" {
		t.Errorf("views_desc: expected a first, got %v", ids(byViews))
	}
}

func TestGallery_TrendingFavorsMomentum(t *testing.T) {
	// Similar value, but "mover" just ticked up: trend is weighted 4x,
	// so it must outrank the static piece.
	static := art("static", "Static", "X", 10, 20, 0, nil, 19, 19)
	mover := art("mover", "Mover", "X", 10, 20, 0, nil, 16, 19)

	sorted, err := Gallery([]*model.Artwork{static, mover}, "", Trending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sorted[0].ID != "mover" {
		t.Errorf("trending should favor momentum, got %v", ids(sorted))
	}
}

func TestGallery_DefaultIsTrending(t *testing.T) {
	static := art("static", "Static", "X", 10, 20, 0, nil, 19, 19)
	mover := art("mover", "Mover", "X", 10, 20, 0, nil, 16, 19)

	sorted, err := Gallery([]*model.Artwork{static, mover}, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sorted[0].ID != "mover" {
		t.Errorf("empty strategy should default to trending, got %v", ids(sorted))
	}
}

func TestGallery_StableForTies(t *testing.T) {
	// Identical artworks: original relative order must survive the sort.
	list := []*model.Artwork{
		art("first", "Same", "X", 10, 10, 10, nil),
		art("second", "Same", "X", 10, 10, 10, nil),
		art("third", "Same", "X", 10, 10, 10, nil),
	}
	sorted, _ := Gallery(list, "", ValueDesc)
	want := []string{"first", "second", "third"}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Fatalf("tie order not stable: %v", ids(sorted))
		}
	}
}

func TestGallery_FilterCaseInsensitive(t *testing.T) {
	list := []*model.Artwork{
		art("a", "Neon Corridor", "Luna Shard", 10, 0, 0, nil),
		art("b", "Quantum Portrait", "E. Satori", 10, 0, 0, nil),
	}

	byTitle, _ := Gallery(list, "NEON", ValueDesc)
	if len(byTitle) != 1 || byTitle[0].ID != "a" {
		t.Errorf("title filter failed: %v", ids(byTitle))
	}

	byArtist, _ := Gallery(list, "satori", ValueDesc)
	if len(byArtist) != 1 || byArtist[0].ID != "b" {
		t.Errorf("artist filter failed: %v", ids(byArtist))
	}

	none, _ := Gallery(list, "zzz", ValueDesc)
	if len(none) != 0 {
		t.Errorf("expected empty result, got %v", ids(none))
	}
}

func TestGallery_UnknownStrategy(t *testing.T) {
	_, err := Gallery(nil, "", "bogus")
	if err != ErrUnknownStrategy {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestGallery_RejectsMarketTabs(t *testing.T) {
	// The two consumers are independent; market tabs are not gallery sorts.
	if _, err := Gallery(nil, "", Popular); err != ErrUnknownStrategy {
		t.Errorf("expected ErrUnknownStrategy for market tab, got %v", err)
	}
}

func TestGallery_DoesNotReorderInput(t *testing.T) {
	list := []*model.Artwork{
		art("low", "Low", "X", 10, 0, 0, nil),
		art("high", "High", "X", 10, 100, 0, nil),
	}
	Gallery(list, "", ValueDesc)
	if list[0].ID != "low" {
		t.Error("ranking must not reorder the session's collection")
	}
}

// --- Market tests ---

func TestMarket_PopularWeighsOfferBook(t *testing.T) {
	// Offer count is weighted 6x: a deep offer book beats raw views.
	deepBook := art("book", "Book", "X", 10, 0, 0, []int64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	viewed := art("viewed", "Viewed", "X", 10, 0, 700, nil)

	sorted, err := Market([]*model.Artwork{viewed, deepBook}, Popular)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sorted[0].ID != "book" {
		t.Errorf("popular should favor market depth, got %v", ids(sorted))
	}
}

func TestMarket_GainersUsesGrowth(t *testing.T) {
	flat := art("flat", "Flat", "X", 10, 0, 0, nil, 10, 10, 10)
	grower := art("grower", "Grower", "X", 10, 0, 0, nil, 10, 11, 12)

	sorted, err := Market([]*model.Artwork{flat, grower}, Gainers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sorted[0].ID != "grower" {
		t.Errorf("gainers should favor sustained growth, got %v", ids(sorted))
	}
}

func TestMarket_TruncatesToTopSix(t *testing.T) {
	var list []*model.Artwork
	for i := 0; i < 9; i++ {
		list = append(list, art(string(rune('a'+i)), "T", "X", 10, int64(i), 0, nil))
	}
	sorted, err := Market(list, Views)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sorted) != MarketSize {
		t.Errorf("expected top %d, got %d", MarketSize, len(sorted))
	}
}

func TestMarket_DefaultIsPopular(t *testing.T) {
	deepBook := art("book", "Book", "X", 10, 0, 0, []int64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	viewed := art("viewed", "Viewed", "X", 10, 0, 700, nil)

	sorted, err := Market([]*model.Artwork{viewed, deepBook}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sorted[0].ID != "book" {
		t.Errorf("empty tab should default to popular, got %v", ids(sorted))
	}
}

func TestMarket_UnknownTab(t *testing.T) {
	if _, err := Market(nil, "hot"); err != ErrUnknownStrategy {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}
