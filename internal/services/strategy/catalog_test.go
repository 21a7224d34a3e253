package strategy

import "testing"

func TestDefaultCatalogOrder(t *testing.T) {
	want := []string{
		BullPutSpread, IronCondor, CashSecuredPut, CoveredCall,
		BullCallSpread, BearPutSpread, LongStraddle, ShortStrangle,
	}
	got := DefaultCatalog().Templates()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("templates[%d] = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestCatalogIsNotMutatedThroughCopies(t *testing.T) {
	c := DefaultCatalog()
	ts := c.Templates()
	ts[0].Name = "Changed"
	h := c.Head(1)
	h[0].Name = "Changed"
	if c.Templates()[0].Name != BullPutSpread {
		t.Fatalf("catalog mutated through returned slice")
	}
}

func TestCatalogHeadBounds(t *testing.T) {
	c := DefaultCatalog()
	if n := len(c.Head(-1)); n != 0 {
		t.Fatalf("Head(-1) len = %d", n)
	}
	if n := len(c.Head(3)); n != 3 {
		t.Fatalf("Head(3) len = %d", n)
	}
	if n := len(c.Head(20)); n != c.Len() {
		t.Fatalf("Head(20) len = %d, want %d", n, c.Len())
	}
}

func TestRecommendationIDRoundTrip(t *testing.T) {
	id := RecommendationID(BullPutSpread, "AAPL")
	if id != "bull_put_spread_AAPL" {
		t.Fatalf("id = %q", id)
	}
	slug, ticker, ok := ParseRecommendationID(id)
	if !ok || slug != "bull_put_spread" || ticker != "AAPL" {
		t.Fatalf("parse = %q %q %v", slug, ticker, ok)
	}
	tmpl, found := DefaultCatalog().Lookup(slug)
	if !found || tmpl.Name != BullPutSpread {
		t.Fatalf("lookup = %+v %v", tmpl, found)
	}
}

func TestParseRecommendationIDRejectsMalformed(t *testing.T) {
	for _, id := range []string{"", "nounderscore", "_AAPL", "bull_put_spread_"} {
		if _, _, ok := ParseRecommendationID(id); ok {
			t.Errorf("ParseRecommendationID(%q) should fail", id)
		}
	}
}
