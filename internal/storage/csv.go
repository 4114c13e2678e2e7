package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/danisworo/estate-scraper/internal/metadata"
	"github.com/danisworo/estate-scraper/internal/model"
	"github.com/danisworo/estate-scraper/pkg/failure"
	"github.com/danisworo/estate-scraper/pkg/hashutil"
)

var csvHeader = []string{
	"id", "title", "price", "priceCurrency",
	"address", "city", "state", "zipCode",
	"bedrooms", "bathrooms", "squareFeet", "lotSize", "yearBuilt",
	"propertyType", "listingAgent", "mlsNumber", "daysOnMarket",
	"features", "images", "description", "sourceUrl", "sourceSite", "scrapedAt",
}

type CSVSink struct {
	metadataSink metadata.MetadataSink
}

func NewCSVSink(
	metadataSink metadata.MetadataSink,
) CSVSink {
	return CSVSink{
		metadataSink: metadataSink,
	}
}

func (s *CSVSink) Write(
	outputDir string,
	criteria model.SearchCriteria,
	listings []model.Listing,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := s.write(outputDir, criteria, listings, hashAlgo)
	if err != nil {
		recordWriteError(s.metadataSink, "CSVSink.Write", err)
		return WriteResult{}, err
	}
	recordArtifact(s.metadataSink, metadata.ArtifactCSV, writeResult)
	return writeResult, nil
}

func (s *CSVSink) write(
	outputDir string,
	criteria model.SearchCriteria,
	listings []model.Listing,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	hash, err := criteriaHash(criteria, hashAlgo)
	if err != nil {
		return WriteResult{}, err
	}

	if err := prepareDir(outputDir); err != nil {
		return WriteResult{}, err
	}

	fullPath := filepath.Join(outputDir, "listings_"+hash+".csv")
	file, fileErr := os.Create(fullPath)
	if fileErr != nil {
		return WriteResult{}, classifyWriteError(fileErr, fullPath)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if writeErr := writer.Write(csvHeader); writeErr != nil {
		return WriteResult{}, classifyWriteError(writeErr, fullPath)
	}
	for _, listing := range listings {
		if writeErr := writer.Write(csvRow(listing)); writeErr != nil {
			return WriteResult{}, classifyWriteError(writeErr, fullPath)
		}
	}

	writer.Flush()
	if flushErr := writer.Error(); flushErr != nil {
		return WriteResult{}, classifyWriteError(flushErr, fullPath)
	}

	return NewWriteResult(hash, fullPath, len(listings)), nil
}

func csvRow(listing model.Listing) []string {
	return []string{
		listing.ID,
		listing.Title,
		formatFloat(listing.Price),
		listing.PriceCurrency,
		listing.Address,
		listing.City,
		listing.State,
		listing.ZipCode,
		strconv.Itoa(listing.Bedrooms),
		formatFloat(listing.Bathrooms),
		formatFloat(listing.SquareFeet),
		formatFloat(listing.LotSize),
		strconv.Itoa(listing.YearBuilt),
		listing.PropertyType,
		listing.ListingAgent,
		listing.MLSNumber,
		strconv.Itoa(listing.DaysOnMarket),
		strings.Join(listing.Features, ";"),
		strings.Join(listing.Images, ";"),
		listing.Description,
		listing.SourceURL,
		listing.SourceSite,
		listing.ScrapedAt.UTC().Format(time.RFC3339),
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
