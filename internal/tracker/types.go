package tracker

import (
	"net/http"
	"time"
)

// MaxDescriptionLength caps Bill.Description, counted in characters.
const MaxDescriptionLength = 500

// MaxSponsors caps the number of sponsors retained on a Bill.
const MaxSponsors = 5

// Jurisdiction is a U.S. state or the federal level.
type Jurisdiction struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// Sponsor is one legislator attached to a bill. Party and Role may be empty.
type Sponsor struct {
	Name  string `json:"name"`
	Party string `json:"party"`
	Role  string `json:"role"`
}

// Bill is the canonical record for one relevant legislative proposal.
type Bill struct {
	ID               int       `json:"id"`
	JurisdictionCode string    `json:"jurisdiction_code"`
	JurisdictionName string    `json:"jurisdiction_name"`
	BillNumber       string    `json:"bill_number"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	StatusText       string    `json:"status_text"`
	StatusCode       int       `json:"status_code"`
	StatusDate       string    `json:"status_date,omitempty"`
	LastActionDate   string    `json:"last_action_date,omitempty"`
	LastAction       string    `json:"last_action,omitempty"`
	SourceURL        string    `json:"source_url"`
	Sponsors         []Sponsor `json:"sponsors"`
	AnalysisURL      string    `json:"analysis_url,omitempty"`
}

// EffectiveDate returns the date used for ordering: the last action date,
// else the status date, else the empty string.
func (b Bill) EffectiveDate() string {
	if b.LastActionDate != "" {
		return b.LastActionDate
	}
	return b.StatusDate
}

// Stats summarizes a bill collection.
type Stats struct {
	Total             int `json:"total"`
	JurisdictionCount int `json:"jurisdiction_count"`
	ActiveCount       int `json:"active_count"`
	AnalyzedCount     int `json:"analyzed_count"`
}

// Snapshot is the structured backup written alongside the document.
type Snapshot struct {
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
	Bills       []Bill `json:"bills"`
}

// FetchRequest captures everything needed to issue one GET.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// RunNotification is published after a successful run.
type RunNotification struct {
	RunID          string   `json:"run_id"`
	GeneratedAt    string   `json:"generated_at"`
	TotalCount     int      `json:"total_count"`
	DocumentSHA256 string   `json:"document_sha256"`
	Artifacts      []string `json:"artifacts"`
}
