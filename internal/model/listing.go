package model

import "time"

// Listing is the structured record extracted from a single result card on a
// listing-search page. Fields are exported with JSON tags because the same
// shape travels through the cache payload codec and the JSON exporter.
//
// Zero values mean "not present on the page"; extractors never guess.
type Listing struct {
	ID            string    `json:"id,omitempty"`
	Title         string    `json:"title,omitempty"`
	Price         float64   `json:"price,omitempty"`
	PriceCurrency string    `json:"priceCurrency,omitempty"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	ZipCode       string    `json:"zipCode,omitempty"`
	Bedrooms      int       `json:"bedrooms,omitempty"`
	Bathrooms     float64   `json:"bathrooms,omitempty"`
	SquareFeet    float64   `json:"squareFeet,omitempty"`
	LotSize       float64   `json:"lotSize,omitempty"`
	YearBuilt     int       `json:"yearBuilt,omitempty"`
	PropertyType  string    `json:"propertyType,omitempty"`
	ListingAgent  string    `json:"listingAgent,omitempty"`
	MLSNumber     string    `json:"mlsNumber,omitempty"`
	DaysOnMarket  int       `json:"daysOnMarket,omitempty"`
	Features      []string  `json:"features,omitempty"`
	Images        []string  `json:"images,omitempty"`
	Description   string    `json:"description,omitempty"` // markdown
	SourceURL     string    `json:"sourceUrl,omitempty"`
	SourceSite    string    `json:"sourceSite,omitempty"`
	ScrapedAt     time.Time `json:"scrapedAt"`
}
