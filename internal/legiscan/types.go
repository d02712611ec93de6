package legiscan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt decodes integers that the API sometimes sends as strings.
type FlexInt int

// UnmarshalJSON accepts a number, a numeric string, an empty string or null.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*f = 0
		return nil
	}
	raw = strings.Trim(raw, `"`)
	if raw == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("decode integer %q: %w", raw, err)
	}
	*f = FlexInt(n)
	return nil
}

// Summary is the metadata entry of a search result.
type Summary struct {
	Count     FlexInt `json:"count"`
	PageTotal FlexInt `json:"page_total"`
	Query     string  `json:"query"`
}

// Hit is one bill reference in a search result.
type Hit struct {
	BillID         FlexInt `json:"bill_id"`
	State          string  `json:"state"`
	BillNumber     string  `json:"bill_number"`
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	LastAction     string  `json:"last_action"`
	LastActionDate string  `json:"last_action_date"`
}

// EntryKind tags a SearchEntry.
type EntryKind int

const (
	// EntrySummary marks the metadata entry.
	EntrySummary EntryKind = iota
	// EntryHit marks a bill reference.
	EntryHit
)

// SearchEntry is one member of the search result object. Exactly one of
// Summary or Hit is set, according to Kind.
type SearchEntry struct {
	Kind    EntryKind
	Summary *Summary
	Hit     *Hit
}

// SearchResult keeps the entries of the "searchresult" object in document
// order. The provider keys hits by position ("0", "1", ...) next to a
// "summary" key, so decoding into a map would lose the ordering.
type SearchResult struct {
	Entries []SearchEntry
}

// UnmarshalJSON streams the object and tags each member.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	r.Entries = nil
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read search result: %w", err)
	}
	delim, isDelim := tok.(json.Delim)
	switch {
	case tok == nil:
		return nil
	case isDelim && delim == '[':
		// An empty result is sometimes sent as [].
		return nil
	case !isDelim || delim != '{':
		return fmt.Errorf("read search result: unexpected token %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read search result key: %w", err)
		}
		key, _ := keyTok.(string)
		if key == "summary" {
			var s Summary
			if err := dec.Decode(&s); err != nil {
				return fmt.Errorf("decode search summary: %w", err)
			}
			r.Entries = append(r.Entries, SearchEntry{Kind: EntrySummary, Summary: &s})
			continue
		}
		var h Hit
		if err := dec.Decode(&h); err != nil {
			return fmt.Errorf("decode search hit %q: %w", key, err)
		}
		r.Entries = append(r.Entries, SearchEntry{Kind: EntryHit, Hit: &h})
	}
	return nil
}

// Summary returns the metadata entry, if present.
func (r SearchResult) Summary() (Summary, bool) {
	for _, e := range r.Entries {
		if e.Kind == EntrySummary && e.Summary != nil {
			return *e.Summary, true
		}
	}
	return Summary{}, false
}

// Hits returns the bill references in document order.
func (r SearchResult) Hits() []Hit {
	hits := make([]Hit, 0, len(r.Entries))
	for _, e := range r.Entries {
		if e.Kind == EntryHit && e.Hit != nil {
			hits = append(hits, *e.Hit)
		}
	}
	return hits
}

// Sponsor is a legislator listed on a bill detail record.
type Sponsor struct {
	Name  string `json:"name"`
	Party string `json:"party"`
	Role  string `json:"role"`
}

// Bill is the detail record returned by getBill.
type Bill struct {
	BillID         FlexInt   `json:"bill_id"`
	State          string    `json:"state"`
	BillNumber     string    `json:"bill_number"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         FlexInt   `json:"status"`
	StatusDate     string    `json:"status_date"`
	URL            string    `json:"url"`
	LastAction     string    `json:"last_action"`
	LastActionDate string    `json:"last_action_date"`
	Sponsors       []Sponsor `json:"sponsors"`
}

type alert struct {
	Message string `json:"message"`
}

type envelope struct {
	Status string `json:"status"`
	Alert  *alert `json:"alert"`
}

func (e envelope) alertMessage() string {
	if e.Alert == nil || e.Alert.Message == "" {
		return "Unknown"
	}
	return e.Alert.Message
}

type searchResponse struct {
	envelope
	SearchResult SearchResult `json:"searchresult"`
}

type billResponse struct {
	envelope
	Bill Bill `json:"bill"`
}
