// Package normalize maps LegiScan detail records onto tracker.Bill.
package normalize

import (
	"github.com/JakeFAU/legislation-tracker/internal/legiscan"
	"github.com/JakeFAU/legislation-tracker/internal/reference"
	"github.com/JakeFAU/legislation-tracker/internal/tracker"
)

// AnalysisLookup resolves the optional analysis link for a bill.
type AnalysisLookup interface {
	AnalysisURL(jurisdictionCode, billNumber string) string
}

// Normalizer builds canonical bills. It holds no mutable state.
type Normalizer struct {
	statuses reference.StatusTable
	analyses AnalysisLookup
}

// New returns a Normalizer. analyses may be nil.
func New(statuses reference.StatusTable, analyses AnalysisLookup) *Normalizer {
	return &Normalizer{statuses: statuses, analyses: analyses}
}

// Normalize converts a detail record into a Bill. hit is the search entry the
// detail was requested for; its last-action fields fill in when the detail
// record omits them.
func (n *Normalizer) Normalize(code, name string, raw legiscan.Bill, hit legiscan.Hit) tracker.Bill {
	bill := tracker.Bill{
		ID:               int(raw.BillID),
		JurisdictionCode: code,
		JurisdictionName: name,
		BillNumber:       raw.BillNumber,
		Title:            raw.Title,
		Description:      Truncate(raw.Description, tracker.MaxDescriptionLength),
		StatusCode:       int(raw.Status),
		StatusText:       n.statuses.Text(int(raw.Status)),
		StatusDate:       raw.StatusDate,
		LastAction:       raw.LastAction,
		LastActionDate:   raw.LastActionDate,
		SourceURL:        raw.URL,
		Sponsors:         sponsors(raw.Sponsors),
	}
	if bill.ID == 0 {
		bill.ID = int(hit.BillID)
	}
	if bill.BillNumber == "" {
		bill.BillNumber = hit.BillNumber
	}
	if bill.SourceURL == "" {
		bill.SourceURL = hit.URL
	}
	if bill.LastAction == "" && bill.LastActionDate == "" {
		bill.LastAction = hit.LastAction
		bill.LastActionDate = hit.LastActionDate
	}
	if n.analyses != nil {
		bill.AnalysisURL = n.analyses.AnalysisURL(code, bill.BillNumber)
	}
	return bill
}

// Truncate keeps the first limit characters of s. No ellipsis is added.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

func sponsors(raw []legiscan.Sponsor) []tracker.Sponsor {
	n := min(len(raw), tracker.MaxSponsors)
	out := make([]tracker.Sponsor, 0, n)
	for _, s := range raw[:n] {
		out = append(out, tracker.Sponsor{Name: s.Name, Party: s.Party, Role: s.Role})
	}
	return out
}
