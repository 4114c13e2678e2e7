package frontier

import (
	"net/url"

	"github.com/danisworo/estate-scraper/internal/model"
)

// Scrape state & ordering

// PageRequest is one admitted unit of work: a single results page of a
// search on a single portal.
//
// Invariants:
// - The page URL and fingerprint are resolved at admission time
// - The fingerprint is the cache key for the page's payload
// - Frontier consumers MUST NOT recompute either
type PageRequest struct {
	criteria    model.SearchCriteria
	site        string
	page        int
	pageURL     url.URL
	fingerprint string
}

func NewPageRequest(
	criteria model.SearchCriteria,
	site string,
	page int,
	pageURL url.URL,
	fingerprint string,
) PageRequest {
	return PageRequest{
		criteria:    criteria,
		site:        site,
		page:        page,
		pageURL:     pageURL,
		fingerprint: fingerprint,
	}
}

func (p *PageRequest) Criteria() model.SearchCriteria {
	return p.criteria
}

func (p *PageRequest) Site() string {
	return p.site
}

func (p *PageRequest) Page() int {
	return p.page
}

func (p *PageRequest) PageURL() url.URL {
	return p.pageURL
}

func (p *PageRequest) Fingerprint() string {
	return p.fingerprint
}
