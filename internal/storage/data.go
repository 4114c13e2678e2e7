package storage

// Persistence

type WriteResult struct {
	criteriaHash string // identity (filename without extension)
	path         string
	listingCount int
}

func NewWriteResult(
	criteriaHash string,
	path string,
	listingCount int,
) WriteResult {
	return WriteResult{
		criteriaHash: criteriaHash,
		path:         path,
		listingCount: listingCount,
	}
}

func (w *WriteResult) CriteriaHash() string {
	return w.criteriaHash
}

func (w *WriteResult) Path() string {
	return w.path
}

func (w *WriteResult) ListingCount() int {
	return w.listingCount
}
