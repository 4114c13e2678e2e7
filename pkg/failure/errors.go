package failure

type Severity int

// scrape control flow: fatal aborts the run, recoverable is counted
// and the scrape continues
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

// ClassifiedError is the error contract every pipeline stage returns.
type ClassifiedError interface {
	error
	Severity() Severity
}
