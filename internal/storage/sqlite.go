package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/danisworo/estate-scraper/internal/metadata"
	"github.com/danisworo/estate-scraper/internal/model"
	"github.com/danisworo/estate-scraper/pkg/failure"
	"github.com/danisworo/estate-scraper/pkg/hashutil"
)

const listingsSchema = `
CREATE TABLE IF NOT EXISTS listings (
	id             TEXT PRIMARY KEY,
	title          TEXT,
	price          REAL,
	price_currency TEXT,
	address        TEXT,
	city           TEXT,
	state          TEXT,
	zip_code       TEXT,
	bedrooms       INTEGER,
	bathrooms      REAL,
	square_feet    REAL,
	lot_size       REAL,
	year_built     INTEGER,
	property_type  TEXT,
	listing_agent  TEXT,
	mls_number     TEXT,
	days_on_market INTEGER,
	features       TEXT,
	images         TEXT,
	description    TEXT,
	source_url     TEXT,
	source_site    TEXT,
	scraped_at     INTEGER NOT NULL
);
`

const upsertListing = `
INSERT INTO listings (
	id, title, price, price_currency,
	address, city, state, zip_code,
	bedrooms, bathrooms, square_feet, lot_size, year_built,
	property_type, listing_agent, mls_number, days_on_market,
	features, images, description, source_url, source_site, scraped_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	price = excluded.price,
	price_currency = excluded.price_currency,
	address = excluded.address,
	city = excluded.city,
	state = excluded.state,
	zip_code = excluded.zip_code,
	bedrooms = excluded.bedrooms,
	bathrooms = excluded.bathrooms,
	square_feet = excluded.square_feet,
	lot_size = excluded.lot_size,
	year_built = excluded.year_built,
	property_type = excluded.property_type,
	listing_agent = excluded.listing_agent,
	mls_number = excluded.mls_number,
	days_on_market = excluded.days_on_market,
	features = excluded.features,
	images = excluded.images,
	description = excluded.description,
	source_url = excluded.source_url,
	source_site = excluded.source_site,
	scraped_at = excluded.scraped_at
`

// SQLiteSink persists listings into a relational artifact, upserting
// by listing id so reruns refresh records instead of duplicating them.
type SQLiteSink struct {
	metadataSink metadata.MetadataSink
}

func NewSQLiteSink(
	metadataSink metadata.MetadataSink,
) SQLiteSink {
	return SQLiteSink{
		metadataSink: metadataSink,
	}
}

func (s *SQLiteSink) Write(
	outputDir string,
	criteria model.SearchCriteria,
	listings []model.Listing,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := s.write(outputDir, criteria, listings, hashAlgo)
	if err != nil {
		recordWriteError(s.metadataSink, "SQLiteSink.Write", err)
		return WriteResult{}, err
	}
	recordArtifact(s.metadataSink, metadata.ArtifactSQLite, writeResult)
	return writeResult, nil
}

func (s *SQLiteSink) write(
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

	fullPath := filepath.Join(outputDir, "listings_"+hash+".db")
	db, openErr := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", fullPath))
	if openErr != nil {
		return WriteResult{}, classifyWriteError(openErr, fullPath)
	}
	defer db.Close()

	if _, execErr := db.Exec(listingsSchema); execErr != nil {
		return WriteResult{}, classifyWriteError(execErr, fullPath)
	}

	tx, txErr := db.Begin()
	if txErr != nil {
		return WriteResult{}, classifyWriteError(txErr, fullPath)
	}

	for _, listing := range listings {
		features, encodeErr := json.Marshal(listing.Features)
		if encodeErr != nil {
			tx.Rollback()
			return WriteResult{}, &StorageError{
				Message:   encodeErr.Error(),
				Retryable: false,
				Cause:     ErrCauseEncodingFailed,
				Path:      fullPath,
			}
		}
		images, encodeErr := json.Marshal(listing.Images)
		if encodeErr != nil {
			tx.Rollback()
			return WriteResult{}, &StorageError{
				Message:   encodeErr.Error(),
				Retryable: false,
				Cause:     ErrCauseEncodingFailed,
				Path:      fullPath,
			}
		}

		if _, execErr := tx.Exec(upsertListing,
			listing.ID,
			listing.Title,
			listing.Price,
			listing.PriceCurrency,
			listing.Address,
			listing.City,
			listing.State,
			listing.ZipCode,
			listing.Bedrooms,
			listing.Bathrooms,
			listing.SquareFeet,
			listing.LotSize,
			listing.YearBuilt,
			listing.PropertyType,
			listing.ListingAgent,
			listing.MLSNumber,
			listing.DaysOnMarket,
			string(features),
			string(images),
			listing.Description,
			listing.SourceURL,
			listing.SourceSite,
			listing.ScrapedAt.UTC().UnixNano(),
		); execErr != nil {
			tx.Rollback()
			return WriteResult{}, classifyWriteError(execErr, fullPath)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return WriteResult{}, classifyWriteError(commitErr, fullPath)
	}

	return NewWriteResult(hash, fullPath, len(listings)), nil
}
