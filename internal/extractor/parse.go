package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

// Listing portals render numeric facts as display text ("$450,000",
// "3 bds", "2.5 ba", "1,820 sqft"). These helpers recover the numbers.
// A value that cannot be parsed yields the zero value, never an error:
// a missing bed count must not discard an otherwise valid card.

var numberPattern = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// parsePrice extracts the amount and currency from a price string.
// "$450,000" -> 450000, "USD". "Est. $1.2M" style abbreviations are
// not expanded; the raw digits parse as written.
func parsePrice(text string) (float64, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ""
	}

	currency := ""
	switch {
	case strings.Contains(text, "$"):
		currency = "USD"
	case strings.Contains(text, "€"):
		currency = "EUR"
	case strings.Contains(text, "£"):
		currency = "GBP"
	}

	amount := parseNumber(text)
	if amount == 0 {
		return 0, ""
	}
	return amount, currency
}

// parseNumber extracts the first decimal number from display text,
// tolerating thousands separators.
func parseNumber(text string) float64 {
	match := numberPattern.FindString(text)
	if match == "" {
		return 0
	}
	match = strings.ReplaceAll(match, ",", "")
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}

// parseCount extracts the first integer from display text ("3 bds").
func parseCount(text string) int {
	return int(parseNumber(text))
}

// parseAddress splits a one-line US address into street, city, state
// and zip. "1200 Barton Hills Dr, Austin, TX 78704" is the expected
// shape; anything else keeps the whole text as the street component.
func parseAddress(text string) (street, city, state, zip string) {
	text = strings.TrimSpace(text)
	parts := strings.Split(text, ",")
	if len(parts) < 3 {
		return text, "", "", ""
	}

	street = strings.TrimSpace(strings.Join(parts[:len(parts)-2], ","))
	city = strings.TrimSpace(parts[len(parts)-2])

	stateZip := strings.Fields(strings.TrimSpace(parts[len(parts)-1]))
	if len(stateZip) > 0 {
		state = stateZip[0]
	}
	if len(stateZip) > 1 {
		zip = stateZip[1]
	}
	return street, city, state, zip
}

// parseLotSize normalizes lot sizes to square feet. Portals mix units:
// "0.25 acres" and "8,500 sqft lot" both occur on the same page.
func parseLotSize(text string) float64 {
	value := parseNumber(text)
	if value == 0 {
		return 0
	}
	if strings.Contains(strings.ToLower(text), "acre") {
		return value * 43560
	}
	return value
}
