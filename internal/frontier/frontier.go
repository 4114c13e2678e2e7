package frontier

import (
	"sync"

	"github.com/danisworo/estate-scraper/internal/model"
	"github.com/danisworo/estate-scraper/pkg/hashutil"
)

/*
Frontier Responsibilities
- Maintain page ordering within a search (page 1 before page 2)
- Deduplicate pages by request fingerprint
- Enforce the per-search page cap
- Knows nothing about:
	- fetching
	- extraction
	- caching
	- storage

It is a data structure + policy module, not a pipeline executor.
*/

type PageFrontier struct {
	mu       sync.Mutex
	queue    *FIFOQueue[PageRequest]
	admitted Set[string]
	maxPages int
}

// NewPageFrontier creates an empty frontier. maxPages bounds how many
// pages of any one search may ever be admitted; zero means no bound.
func NewPageFrontier(maxPages int) *PageFrontier {
	return &PageFrontier{
		queue:    NewFIFOQueue[PageRequest](),
		admitted: NewSet[string](),
		maxPages: maxPages,
	}
}

// Admit builds the page request for (site, criteria, page) and queues
// it, unless the page exceeds the cap or the fingerprint was already
// admitted. It reports whether the request was queued.
func (f *PageFrontier) Admit(criteria model.SearchCriteria, site string, page int) (bool, error) {
	if page < 1 {
		return false, nil
	}
	if f.maxPages > 0 && page > f.maxPages {
		return false, nil
	}

	pageURL, err := BuildSearchURL(site, criteria, page)
	if err != nil {
		return false, err
	}

	params := criteria.CanonicalParams()
	fingerprint := hashutil.Fingerprint(pageURL, params)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.admitted.Contains(fingerprint) {
		return false, nil
	}
	f.admitted.Add(fingerprint)
	f.queue.Enqueue(NewPageRequest(criteria, site, page, pageURL, fingerprint))
	return true, nil
}

// Next pops the oldest admitted page request. The second return value
// is false when the frontier is exhausted.
func (f *PageFrontier) Next() (PageRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Dequeue()
}

func (f *PageFrontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Size()
}

func (f *PageFrontier) AdmittedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.admitted.Size()
}
