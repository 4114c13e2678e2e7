package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SearchCriteria describes one listing search: a location plus optional
// filters. A criteria value is what the orchestration layer fingerprints
// (together with the page number) to form a cache key.
type SearchCriteria struct {
	Location      string   `json:"location"`
	MinPrice      float64  `json:"minPrice,omitempty"`
	MaxPrice      float64  `json:"maxPrice,omitempty"`
	MinBedrooms   int      `json:"minBedrooms,omitempty"`
	MaxBedrooms   int      `json:"maxBedrooms,omitempty"`
	MinBathrooms  float64  `json:"minBathrooms,omitempty"`
	PropertyTypes []string `json:"propertyTypes,omitempty"`
	MaxPages      int      `json:"maxPages,omitempty"`
}

// CanonicalParams returns the criteria as a flat, deterministic parameter
// map suitable for request fingerprinting. Zero-valued filters are omitted
// so that "no filter" and "absent filter" hash identically.
func (c SearchCriteria) CanonicalParams() map[string]string {
	params := map[string]string{
		"location": strings.ToLower(strings.TrimSpace(c.Location)),
	}
	if c.MinPrice > 0 {
		params["minPrice"] = strconv.FormatFloat(c.MinPrice, 'f', -1, 64)
	}
	if c.MaxPrice > 0 {
		params["maxPrice"] = strconv.FormatFloat(c.MaxPrice, 'f', -1, 64)
	}
	if c.MinBedrooms > 0 {
		params["minBedrooms"] = strconv.Itoa(c.MinBedrooms)
	}
	if c.MaxBedrooms > 0 {
		params["maxBedrooms"] = strconv.Itoa(c.MaxBedrooms)
	}
	if c.MinBathrooms > 0 {
		params["minBathrooms"] = strconv.FormatFloat(c.MinBathrooms, 'f', -1, 64)
	}
	if len(c.PropertyTypes) > 0 {
		types := make([]string, len(c.PropertyTypes))
		copy(types, c.PropertyTypes)
		for i := range types {
			types[i] = strings.ToLower(strings.TrimSpace(types[i]))
		}
		sort.Strings(types)
		params["propertyTypes"] = strings.Join(types, ",")
	}
	return params
}

// Validate reports whether the criteria can drive a search at all.
func (c SearchCriteria) Validate() error {
	if strings.TrimSpace(c.Location) == "" {
		return fmt.Errorf("search criteria: location is required")
	}
	if c.MinPrice > 0 && c.MaxPrice > 0 && c.MinPrice > c.MaxPrice {
		return fmt.Errorf("search criteria: minPrice %v exceeds maxPrice %v", c.MinPrice, c.MaxPrice)
	}
	if c.MinBedrooms > 0 && c.MaxBedrooms > 0 && c.MinBedrooms > c.MaxBedrooms {
		return fmt.Errorf("search criteria: minBedrooms %d exceeds maxBedrooms %d", c.MinBedrooms, c.MaxBedrooms)
	}
	return nil
}
