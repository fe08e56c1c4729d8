package models

// PriceBucket is a price range used by the browse filter.
type PriceBucket string

const (
	AnyPrice     PriceBucket = "Any Price"
	Under100     PriceBucket = "Under $100"
	From100To250 PriceBucket = "$100 - $250"
	From250To500 PriceBucket = "$250 - $500"
	Over500      PriceBucket = "$500+"
)

// PriceBuckets lists the buckets in display order.
var PriceBuckets = []PriceBucket{AnyPrice, Under100, From100To250, From250To500, Over500}

// ParsePriceBucket maps a filter label to a bucket. Unknown or empty labels
// yield AnyPrice.
func ParsePriceBucket(label string) PriceBucket {
	for _, b := range PriceBuckets {
		if string(b) == label {
			return b
		}
	}
	return AnyPrice
}

// Contains reports whether price falls inside the bucket. The edges 100, 250
// and 500 belong to both adjoining buckets.
func (b PriceBucket) Contains(price float64) bool {
	switch b {
	case Under100:
		return price < 100
	case From100To250:
		return price >= 100 && price <= 250
	case From250To500:
		return price >= 250 && price <= 500
	case Over500:
		return price >= 500
	default:
		return true
	}
}

// FilterCriteria describes one browse request.
type FilterCriteria struct {
	// ClubType is an exact type, or empty / AllTypes for every type.
	ClubType string
	Bucket   PriceBucket
}

// AllClubTypes reports whether the criteria skip type filtering.
func (c FilterCriteria) AllClubTypes() bool {
	return c.ClubType == "" || c.ClubType == AllTypes
}
