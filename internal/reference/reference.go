// Package reference loads the immutable lookup tables the tracker runs on:
// status codes, jurisdictions, and the relevance vocabulary.
package reference

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JakeFAU/legislation-tracker/internal/tracker"
)

// UnknownStatus is the status text for any code missing from the table.
const UnknownStatus = "Unknown"

//go:embed reference.yaml
var defaultDocument []byte

type document struct {
	FederalCode   string                 `yaml:"federal_code"`
	Statuses      map[int]string         `yaml:"statuses"`
	Jurisdictions []tracker.Jurisdiction `yaml:"jurisdictions"`
	AnchorTerms   []string               `yaml:"anchor_terms"`
	PolicyTerms   []string               `yaml:"policy_terms"`
	Analyses      map[string]string      `yaml:"analyses"`
}

// StatusTable translates provider status codes into display text.
type StatusTable struct {
	names map[int]string
}

// NewStatusTable copies names into a StatusTable.
func NewStatusTable(names map[int]string) StatusTable {
	out := make(map[int]string, len(names))
	for code, name := range names {
		out[code] = name
	}
	return StatusTable{names: out}
}

// Text returns the display text for code, or UnknownStatus.
func (t StatusTable) Text(code int) string {
	if name, ok := t.names[code]; ok {
		return name
	}
	return UnknownStatus
}

// Len reports the number of known codes.
func (t StatusTable) Len() int {
	return len(t.names)
}

// Tables holds every reference table. Accessors return copies.
type Tables struct {
	federalCode   string
	statuses      StatusTable
	jurisdictions []tracker.Jurisdiction
	anchorTerms   []string
	policyTerms   []string
	analyses      map[string]string
}

// Default parses the embedded reference document.
func Default() (*Tables, error) {
	return Parse(defaultDocument)
}

// Load reads a reference document from path, or the embedded one when path is empty.
func Load(path string) (*Tables, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	// #nosec G304 -- operator-supplied reference file.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a reference document.
func Parse(data []byte) (*Tables, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode reference document: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	analyses := make(map[string]string, len(doc.Analyses))
	for key, url := range doc.Analyses {
		analyses[normalizeKey(key)] = strings.TrimSpace(url)
	}
	return &Tables{
		federalCode:   doc.FederalCode,
		statuses:      NewStatusTable(doc.Statuses),
		jurisdictions: slices.Clone(doc.Jurisdictions),
		anchorTerms:   slices.Clone(doc.AnchorTerms),
		policyTerms:   slices.Clone(doc.PolicyTerms),
		analyses:      analyses,
	}, nil
}

func (d document) validate() error {
	if d.FederalCode == "" {
		return errors.New("reference: federal_code is required")
	}
	if len(d.Statuses) == 0 {
		return errors.New("reference: statuses must not be empty")
	}
	if len(d.AnchorTerms) == 0 {
		return errors.New("reference: anchor_terms must not be empty")
	}
	if len(d.PolicyTerms) == 0 {
		return errors.New("reference: policy_terms must not be empty")
	}
	seen := make(map[string]struct{}, len(d.Jurisdictions))
	for _, j := range d.Jurisdictions {
		if j.Code == "" || j.Name == "" {
			return fmt.Errorf("reference: jurisdiction %+v needs code and name", j)
		}
		if _, dup := seen[j.Code]; dup {
			return fmt.Errorf("reference: duplicate jurisdiction code %q", j.Code)
		}
		seen[j.Code] = struct{}{}
	}
	return nil
}

// FederalCode is the sentinel jurisdiction code for the federal level.
func (t *Tables) FederalCode() string { return t.federalCode }

// Statuses returns the status-code table.
func (t *Tables) Statuses() StatusTable { return t.statuses }

// Jurisdictions returns every jurisdiction in document order.
func (t *Tables) Jurisdictions() []tracker.Jurisdiction { return slices.Clone(t.jurisdictions) }

// AnchorTerms returns the subject-matter terms.
func (t *Tables) AnchorTerms() []string { return slices.Clone(t.anchorTerms) }

// PolicyTerms returns the policy vocabulary.
func (t *Tables) PolicyTerms() []string { return slices.Clone(t.policyTerms) }

// AnalysisURL returns the editorial analysis link for a bill, if any.
func (t *Tables) AnalysisURL(jurisdictionCode, billNumber string) string {
	return t.analyses[AnalysisKey(jurisdictionCode, billNumber)]
}

// AnalysisKey builds the lookup key for the analyses table.
func AnalysisKey(jurisdictionCode, billNumber string) string {
	return normalizeKey(jurisdictionCode + "/" + billNumber)
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, " ", ""))
}

// Select returns the jurisdictions whose codes are listed, in the order given.
// An empty list selects every jurisdiction.
func (t *Tables) Select(codes []string) ([]tracker.Jurisdiction, error) {
	if len(codes) == 0 {
		return t.Jurisdictions(), nil
	}
	byCode := make(map[string]tracker.Jurisdiction, len(t.jurisdictions))
	for _, j := range t.jurisdictions {
		byCode[j.Code] = j
	}
	out := make([]tracker.Jurisdiction, 0, len(codes))
	for _, code := range codes {
		j, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
		if !ok {
			return nil, fmt.Errorf("unknown jurisdiction code %q", code)
		}
		out = append(out, j)
	}
	return out, nil
}
