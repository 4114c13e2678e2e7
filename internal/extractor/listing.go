package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/danisworo/estate-scraper/internal/metadata"
	"github.com/danisworo/estate-scraper/internal/model"
	"github.com/danisworo/estate-scraper/pkg/failure"
)

/*
Responsibilities
- Parse search result HTML into a DOM tree
- Locate listing cards via per-site selector profiles
- Parse display text into typed listing fields
- Convert description markup to markdown

Extraction Strategy
- One SiteProfile per portal, resolved by site identifier
- Every selector carries a fallback alternative; portals A/B test
  their markup and selectors rot
- A card missing its address is discarded; any other missing field
  degrades to the zero value

The extractor never fetches; it only consumes bytes it is given.
*/

type SiteExtractor interface {
	Extract(
		sourceUrl url.URL,
		site string,
		htmlByte []byte,
	) (ExtractionResult, failure.ClassifiedError)
}

type ListingExtractor struct {
	metadataSink metadata.MetadataSink
	now          func() time.Time
}

func NewListingExtractor(
	metadataSink metadata.MetadataSink,
) ListingExtractor {
	return ListingExtractor{
		metadataSink: metadataSink,
		now:          time.Now,
	}
}

func (l *ListingExtractor) Extract(
	sourceUrl url.URL,
	site string,
	htmlByte []byte,
) (ExtractionResult, failure.ClassifiedError) {
	result, err := l.extract(sourceUrl, site, htmlByte)
	if err != nil {
		var extractionError *ExtractionError
		errors.As(err, &extractionError)
		l.metadataSink.RecordError(
			time.Now(),
			"extractor",
			"ListingExtractor.Extract",
			mapExtractionErrorToMetadataCause(extractionError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, sourceUrl.String()),
				metadata.NewAttr(metadata.AttrSite, site),
			},
		)
		return ExtractionResult{}, extractionError
	}
	return result, nil
}

func (l *ListingExtractor) extract(sourceUrl url.URL, site string, htmlByte []byte) (ExtractionResult, error) {
	profile, ok := ProfileFor(site)
	if !ok {
		return ExtractionResult{}, &ExtractionError{
			Message:   fmt.Sprintf("no selector profile for site %q", site),
			Retryable: false,
			Cause:     ErrCauseUnknownSite,
		}
	}

	doc, err := html.Parse(bytes.NewReader(htmlByte))
	if err != nil {
		return ExtractionResult{}, &ExtractionError{
			Message:   fmt.Sprintf("failed to parse HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}

	if !isValidHTML(doc) {
		return ExtractionResult{}, &ExtractionError{
			Message:   "input is not valid HTML document",
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}

	gqDoc := goquery.NewDocumentFromNode(doc)

	cards := gqDoc.Find(profile.Card)
	if cards.Length() == 0 {
		return ExtractionResult{}, &ExtractionError{
			Message:   fmt.Sprintf("no listing cards matched %q", profile.Card),
			Retryable: false,
			Cause:     ErrCauseNoListings,
		}
	}

	scrapedAt := l.now().UTC()
	var listings []model.Listing
	cards.Each(func(_ int, card *goquery.Selection) {
		listing, ok := l.extractCard(card, profile, sourceUrl, scrapedAt)
		if ok {
			listings = append(listings, listing)
		}
	})

	if len(listings) == 0 {
		return ExtractionResult{}, &ExtractionError{
			Message:   "all listing cards were discarded as malformed",
			Retryable: false,
			Cause:     ErrCauseNoListings,
		}
	}

	return ExtractionResult{
		Listings:    listings,
		HasNextPage: gqDoc.Find(profile.NextPage).Length() > 0,
	}, nil
}

// extractCard parses one result card. The address is the only
// mandatory field: without it the record cannot be identified.
func (l *ListingExtractor) extractCard(
	card *goquery.Selection,
	profile SiteProfile,
	sourceUrl url.URL,
	scrapedAt time.Time,
) (model.Listing, bool) {
	addressText := cardText(card, profile.Address)
	if addressText == "" {
		return model.Listing{}, false
	}

	street, city, state, zip := parseAddress(addressText)
	price, currency := parsePrice(cardText(card, profile.Price))

	listing := model.Listing{
		Title:         cardText(card, profile.Title),
		Price:         price,
		PriceCurrency: currency,
		Address:       street,
		City:          city,
		State:         state,
		ZipCode:       zip,
		Bedrooms:      parseCount(cardText(card, profile.Beds)),
		Bathrooms:     parseNumber(cardText(card, profile.Baths)),
		SquareFeet:    parseNumber(cardText(card, profile.SquareFeet)),
		LotSize:       parseLotSize(cardText(card, profile.LotSize)),
		YearBuilt:     parseCount(cardText(card, profile.YearBuilt)),
		PropertyType:  cardText(card, profile.PropType),
		ListingAgent:  cardText(card, profile.Agent),
		MLSNumber:     cardText(card, profile.MLSNumber),
		DaysOnMarket:  parseCount(cardText(card, profile.DaysOnMkt)),
		Features:      cardTexts(card, profile.Features),
		Images:        cardAttrs(card, profile.Images, "src"),
		Description:   l.descriptionMarkdown(card, profile.Description),
		SourceSite:    profile.Name,
		ScrapedAt:     scrapedAt,
	}

	listing.SourceURL = l.resolveDetailURL(card, profile, sourceUrl)
	listing.ID = listingID(profile.Name, listing)

	return listing, true
}

// descriptionMarkdown converts the card's description markup to
// markdown. Conversion failures degrade to the plain text.
func (l *ListingExtractor) descriptionMarkdown(card *goquery.Selection, selector string) string {
	node := card.Find(selector).First()
	if node.Length() == 0 {
		return ""
	}

	rawHtml, err := goquery.OuterHtml(node)
	if err != nil {
		return strings.TrimSpace(node.Text())
	}

	markdown, err := htmltomarkdown.ConvertString(rawHtml)
	if err != nil {
		return strings.TrimSpace(node.Text())
	}
	return strings.TrimSpace(markdown)
}

func (l *ListingExtractor) resolveDetailURL(card *goquery.Selection, profile SiteProfile, sourceUrl url.URL) string {
	href, exists := card.Find(profile.DetailLink).First().Attr("href")
	if !exists || href == "" {
		return sourceUrl.String()
	}

	ref, err := url.Parse(href)
	if err != nil {
		return sourceUrl.String()
	}
	return sourceUrl.ResolveReference(ref).String()
}

// listingID derives a stable identifier for a card. MLS numbers are
// preferred; otherwise the site-qualified address serves.
func listingID(site string, listing model.Listing) string {
	if listing.MLSNumber != "" {
		return fmt.Sprintf("%s:%s", site, listing.MLSNumber)
	}
	addr := strings.ToLower(strings.Join(strings.Fields(listing.Address), "-"))
	zip := listing.ZipCode
	if zip == "" {
		zip = strings.ToLower(listing.City)
	}
	return fmt.Sprintf("%s:%s-%s", site, addr, zip)
}

func cardText(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(card.Find(selector).First().Text())
}

func cardTexts(card *goquery.Selection, selector string) []string {
	if selector == "" {
		return nil
	}
	var texts []string
	card.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			texts = append(texts, text)
		}
	})
	return texts
}

func cardAttrs(card *goquery.Selection, selector string, attr string) []string {
	if selector == "" {
		return nil
	}
	var values []string
	card.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if value, exists := s.Attr(attr); exists && value != "" {
			values = append(values, value)
		}
	})
	return values
}

// isValidHTML checks if the parsed document has a proper HTML structure
func isValidHTML(doc *html.Node) bool {
	var findHTML func(*html.Node) bool
	findHTML = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "html" {
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if findHTML(c) {
				return true
			}
		}
		return false
	}
	return findHTML(doc)
}

// SetClockForTest overrides the timestamp source for extracted
// listings.
func (l *ListingExtractor) SetClockForTest(now func() time.Time) {
	l.now = now
}
