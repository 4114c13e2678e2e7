package frontier

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/danisworo/estate-scraper/internal/model"
)

// Portals encode the same search differently; these builders produce
// the page URL for one (site, criteria, page) triple. Only the URL
// shape lives here; selector layouts belong to the extractor.

func BuildSearchURL(site string, criteria model.SearchCriteria, page int) (url.URL, error) {
	switch site {
	case "zillow":
		return buildZillowURL(criteria, page), nil
	case "realtor":
		return buildRealtorURL(criteria, page), nil
	default:
		return url.URL{}, fmt.Errorf("no search url builder for site %q", site)
	}
}

// locationSlug turns "Austin, TX" into "austin-tx".
func locationSlug(location string) string {
	slug := strings.ToLower(strings.TrimSpace(location))
	slug = strings.ReplaceAll(slug, ",", "")
	return strings.Join(strings.Fields(slug), "-")
}

func buildZillowURL(criteria model.SearchCriteria, page int) url.URL {
	path := fmt.Sprintf("/homes/%s_rb/", locationSlug(criteria.Location))
	if page > 1 {
		path += fmt.Sprintf("%d_p/", page)
	}

	query := url.Values{}
	if criteria.MinPrice > 0 || criteria.MaxPrice > 0 {
		query.Set("price", fmt.Sprintf("%.0f-%.0f", criteria.MinPrice, criteria.MaxPrice))
	}
	if criteria.MinBedrooms > 0 {
		query.Set("beds", fmt.Sprintf("%d-", criteria.MinBedrooms))
	}

	return url.URL{
		Scheme:   "https",
		Host:     "www.zillow.com",
		Path:     path,
		RawQuery: query.Encode(),
	}
}

func buildRealtorURL(criteria model.SearchCriteria, page int) url.URL {
	// realtor.com capitalizes the location segment: Austin_TX
	parts := strings.Split(locationSlug(criteria.Location), "-")
	for i, part := range parts {
		if len(part) <= 2 {
			parts[i] = strings.ToUpper(part)
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	path := "/realestateandhomes-search/" + strings.Join(parts, "_")

	var segments []string
	if criteria.MinBedrooms > 0 {
		segments = append(segments, fmt.Sprintf("beds-%d", criteria.MinBedrooms))
	}
	if criteria.MinPrice > 0 || criteria.MaxPrice > 0 {
		segments = append(segments, fmt.Sprintf("price-%.0f-%.0f", criteria.MinPrice, criteria.MaxPrice))
	}
	if page > 1 {
		segments = append(segments, fmt.Sprintf("pg-%d", page))
	}
	if len(segments) > 0 {
		path += "/" + strings.Join(segments, "/")
	}

	return url.URL{
		Scheme: "https",
		Host:   "www.realtor.com",
		Path:   path,
	}
}
