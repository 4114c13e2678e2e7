package extractor

// SiteProfile describes how one listing portal lays out its search
// result pages. All fields are CSS selectors evaluated relative to the
// card selector, except Card and NextPage which are document-scoped.
type SiteProfile struct {
	Name string

	Card        string
	Title       string
	Price       string
	Address     string
	Beds        string
	Baths       string
	SquareFeet  string
	LotSize     string
	YearBuilt   string
	PropType    string
	Agent       string
	MLSNumber   string
	DaysOnMkt   string
	Features    string
	Images      string
	Description string
	DetailLink  string

	NextPage string
}

// SiteProfiles contains per-portal search page layouts, keyed by the
// site identifier carried on extracted listings as sourceSite.
//
//nolint:gochecknoglobals // This is a static lookup table that must be global
var SiteProfiles = map[string]SiteProfile{
	"zillow": {
		Name:        "zillow",
		Card:        "article[data-test='property-card'], .list-card",
		Title:       ".property-card-title, .list-card-title",
		Price:       "[data-test='property-card-price'], .list-card-price",
		Address:     "address, .list-card-addr",
		Beds:        "[data-test='property-beds'], .list-card-beds",
		Baths:       "[data-test='property-baths'], .list-card-baths",
		SquareFeet:  "[data-test='property-sqft'], .list-card-sqft",
		LotSize:     "[data-test='property-lot']",
		YearBuilt:   "[data-test='property-year']",
		PropType:    "[data-test='property-type'], .list-card-type",
		Agent:       ".list-card-broker, [data-test='attribution']",
		MLSNumber:   "[data-test='mls-id']",
		DaysOnMkt:   "[data-test='days-on-market']",
		Features:    ".list-card-features li",
		Images:      "img.property-image, .list-card-img img",
		Description: ".property-description, .list-card-description",
		DetailLink:  "a.property-card-link, a.list-card-link",
		NextPage:    "a[rel='next'], a[title='Next page']:not([disabled])",
	},
	"realtor": {
		Name:        "realtor",
		Card:        "[data-testid='property-card'], .component_property-card",
		Title:       "[data-testid='card-title']",
		Price:       "[data-testid='card-price'], .price",
		Address:     "[data-testid='card-address'], .address",
		Beds:        "[data-testid='property-meta-beds'], li[data-label='pc-meta-beds']",
		Baths:       "[data-testid='property-meta-baths'], li[data-label='pc-meta-baths']",
		SquareFeet:  "[data-testid='property-meta-sqft'], li[data-label='pc-meta-sqft']",
		LotSize:     "[data-testid='property-meta-lot-size'], li[data-label='pc-meta-sqftlot']",
		YearBuilt:   "[data-testid='property-year']",
		PropType:    "[data-testid='card-property-type'], .property-type",
		Agent:       "[data-testid='card-broker'], .broker-title",
		MLSNumber:   "[data-testid='mls-number']",
		DaysOnMkt:   "[data-testid='days-on-market']",
		Features:    "[data-testid='card-features'] li",
		Images:      "img[data-testid='picture-img'], .photo-wrap img",
		Description: "[data-testid='card-description']",
		DetailLink:  "a[data-testid='card-link'], a.card-anchor",
		NextPage:    "a[aria-label='Go to next page'], a[rel='next']",
	},
}

// ProfileFor resolves the layout for a site identifier.
func ProfileFor(site string) (SiteProfile, bool) {
	profile, ok := SiteProfiles[site]
	return profile, ok
}

// KnownSites returns the site identifiers with a registered profile,
// in no particular order.
func KnownSites() []string {
	sites := make([]string, 0, len(SiteProfiles))
	for site := range SiteProfiles {
		sites = append(sites, site)
	}
	return sites
}
