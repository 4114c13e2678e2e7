package scheduler

import (
	"github.com/danisworo/estate-scraper/internal/model"
	"github.com/danisworo/estate-scraper/internal/storage"
)

type ScrapeExecution struct {
	Listings     []model.Listing
	WriteResults []storage.WriteResult
	TotalPages   int
	TotalErrors  int
}
