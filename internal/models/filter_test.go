package models

import "testing"

func TestPriceBucket_Contains(t *testing.T) {
	tests := []struct {
		bucket PriceBucket
		price  float64
		want   bool
	}{
		{Under100, 99.99, true},
		{Under100, 100, false},
		{From100To250, 100, true},
		{From100To250, 250, true},
		{From100To250, 99.99, false},
		{From100To250, 250.01, false},
		{From250To500, 250, true},
		{From250To500, 500, true},
		{From250To500, 500.01, false},
		{Over500, 500, true},
		{Over500, 499.99, false},
		{AnyPrice, 0.01, true},
		{AnyPrice, 100000, true},
	}

	for _, tt := range tests {
		if got := tt.bucket.Contains(tt.price); got != tt.want {
			t.Errorf("%q.Contains(%v) = %v; want %v", tt.bucket, tt.price, got, tt.want)
		}
	}
}

func TestPriceBucket_SharedEdges(t *testing.T) {
	edges := map[float64][]PriceBucket{
		100: {From100To250},
		250: {From100To250, From250To500},
		500: {From250To500, Over500},
	}
	for price, want := range edges {
		var got []PriceBucket
		for _, b := range PriceBuckets {
			if b != AnyPrice && b.Contains(price) {
				got = append(got, b)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("price %v matched %v; want %v", price, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("price %v matched %v; want %v", price, got, want)
			}
		}
	}
}

func TestParsePriceBucket(t *testing.T) {
	cases := map[string]PriceBucket{
		"Under $100":  Under100,
		"$100 - $250": From100To250,
		"$250 - $500": From250To500,
		"$500+":       Over500,
		"Any Price":   AnyPrice,
		"":            AnyPrice,
		"cheap":       AnyPrice,
	}
	for label, want := range cases {
		if got := ParsePriceBucket(label); got != want {
			t.Errorf("ParsePriceBucket(%q) = %q; want %q", label, got, want)
		}
	}
}

func TestClubType_StockImage(t *testing.T) {
	if got := Putter.StockImage(); got != "assets/club-images/putter.svg" {
		t.Errorf("Putter.StockImage() = %q", got)
	}
	if got := ClubType("Chipper").StockImage(); got != "assets/club-images/driver.svg" {
		t.Errorf("unknown type image = %q; want driver fallback", got)
	}
	if ClubType("Chipper").Valid() {
		t.Error("unknown club type reported valid")
	}
}

func TestListingFields_Apply(t *testing.T) {
	price := 75.5
	name := "Scotty Cameron"
	l := Listing{ClubName: "Old", Price: 10, Owner: Owner{UserID: "u1"}}
	ListingFields{ClubName: &name, Price: &price}.Apply(&l)

	if l.ClubName != name || l.Price != price {
		t.Errorf("Apply did not merge fields: %+v", l)
	}
	if l.Owner.UserID != "u1" {
		t.Errorf("owner changed to %q", l.Owner.UserID)
	}
	if !(ListingFields{}).Empty() {
		t.Error("zero ListingFields should be empty")
	}
}

func TestIdentity_Name(t *testing.T) {
	if got := (Identity{Email: "a@b.c"}).Name(); got != "a@b.c" {
		t.Errorf("Name() = %q; want email fallback", got)
	}
	if got := (Identity{Email: "a@b.c", DisplayName: "Ann"}).Name(); got != "Ann" {
		t.Errorf("Name() = %q; want Ann", got)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Seller@Example.COM "); got != "seller@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}
