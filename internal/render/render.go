// Package render produces the static tracker page.
//
// The page is a single html/template document, so every provider-supplied
// string is escaped for the context it lands in (element text, attribute
// value or URL). Output depends only on the arguments: rendering the same
// bills, stats and timestamp twice yields identical bytes.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"slices"
	"strings"
	"time"

	"github.com/JakeFAU/legislation-tracker/internal/tracker"
)

const (
	// HeaderTimeLayout formats the generation timestamp in the page header.
	HeaderTimeLayout = "January 02, 2006 at 03:04 PM"
	// BillDateLayout formats the per-bill last-action date.
	BillDateLayout = "Jan 02, 2006"
	// MaxDisplayedSponsors is how many sponsors a bill fragment lists.
	MaxDisplayedSponsors = 3
	// DefaultFederalCode identifies the federal jurisdiction.
	DefaultFederalCode = "US"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html.tmpl").ParseFS(templateFS, "templates/*.tmpl"))

// Site holds the branding and links written into the page.
type Site struct {
	Name          string
	CanonicalURL  string
	PublisherName string
	PublisherURL  string
	AuthorName    string
	LogoURL       string
	FrameworkURL  string
	FederalCode   string
	Location      *time.Location
}

// DefaultSite returns the production branding.
func DefaultSite() Site {
	return Site{
		Name:          "Cannabis Legislation Tracker",
		CanonicalURL:  "https://tracker.dankreports.com/",
		PublisherName: "Dan K Reports",
		PublisherURL:  "https://www.dankreports.com/",
		AuthorName:    "Daniel Kief",
		LogoURL:       "https://www.dankreports.com/content/images/size/w256h256/2025/11/output-onlinegiftools.gif",
		FrameworkURL:  "https://www.cbdttheory.com",
		FederalCode:   DefaultFederalCode,
		Location:      time.UTC,
	}
}

func (s Site) withDefaults() Site {
	d := DefaultSite()
	if s.Name == "" {
		s.Name = d.Name
	}
	if s.CanonicalURL == "" {
		s.CanonicalURL = d.CanonicalURL
	}
	if !strings.HasSuffix(s.CanonicalURL, "/") {
		s.CanonicalURL += "/"
	}
	if s.PublisherName == "" {
		s.PublisherName = d.PublisherName
	}
	if s.PublisherURL == "" {
		s.PublisherURL = d.PublisherURL
	}
	if s.AuthorName == "" {
		s.AuthorName = d.AuthorName
	}
	if s.LogoURL == "" {
		s.LogoURL = d.LogoURL
	}
	if s.FrameworkURL == "" {
		s.FrameworkURL = d.FrameworkURL
	}
	if s.FederalCode == "" {
		s.FederalCode = d.FederalCode
	}
	if s.Location == nil {
		s.Location = d.Location
	}
	return s
}

// OGImageURL is the social preview image under the canonical URL.
func (s Site) OGImageURL() string {
	return s.CanonicalURL + "og-image.jpg"
}

// Renderer renders the page and its bill fragments.
type Renderer struct {
	site   Site
	jsonLD template.JS
}

// New builds a Renderer. Empty Site fields take DefaultSite values.
func New(site Site) (*Renderer, error) {
	site = site.withDefaults()
	ld, err := structuredData(site)
	if err != nil {
		return nil, err
	}
	// #nosec G203 -- marshalled by encoding/json, which escapes <, > and &.
	return &Renderer{site: site, jsonLD: template.JS(ld)}, nil
}

type sponsorView struct {
	Name  string
	Party string
}

type billView struct {
	Bill         tracker.Bill
	Federal      bool
	StatusClass  string
	DateKey      string
	DisplayDate  string
	Sponsors     []sponsorView
	MoreSponsors int
}

type pageView struct {
	Site          Site
	OGImageURL    string
	JSONLD        template.JS
	GeneratedISO  string
	GeneratedText string
	Year          int
	Stats         tracker.Stats
	Options       []string
	Bills         []billView
}

// Render produces the full document. bills are expected to be sorted already.
func (r *Renderer) Render(bills []tracker.Bill, stats tracker.Stats, generatedAt time.Time) ([]byte, error) {
	local := generatedAt.In(r.site.Location)
	view := pageView{
		Site:          r.site,
		OGImageURL:    r.site.OGImageURL(),
		JSONLD:        r.jsonLD,
		GeneratedISO:  local.Format(time.RFC3339),
		GeneratedText: local.Format(HeaderTimeLayout),
		Year:          local.Year(),
		Stats:         stats,
		Options:       r.JurisdictionOptions(bills),
		Bills:         make([]billView, 0, len(bills)),
	}
	for _, b := range bills {
		view.Bills = append(view.Bills, r.billView(b))
	}

	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "page", view); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderBill produces the fragment for a single bill.
func (r *Renderer) RenderBill(b tracker.Bill) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "bill", r.billView(b)); err != nil {
		return nil, fmt.Errorf("render bill %d: %w", b.ID, err)
	}
	return buf.Bytes(), nil
}

// JurisdictionOptions lists the distinct non-federal jurisdiction names in
// bills, sorted. The federal option is fixed in the page and not included.
func (r *Renderer) JurisdictionOptions(bills []tracker.Bill) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, b := range bills {
		if b.JurisdictionCode == r.site.FederalCode {
			continue
		}
		if _, ok := seen[b.JurisdictionName]; ok {
			continue
		}
		seen[b.JurisdictionName] = struct{}{}
		out = append(out, b.JurisdictionName)
	}
	slices.Sort(out)
	return out
}

func (r *Renderer) billView(b tracker.Bill) billView {
	view := billView{
		Bill:        b,
		Federal:     b.JurisdictionCode == r.site.FederalCode,
		StatusClass: StatusClass(b.StatusText),
		DateKey:     b.EffectiveDate(),
		DisplayDate: FormatDate(b.EffectiveDate()),
	}
	shown := b.Sponsors
	if len(shown) > MaxDisplayedSponsors {
		shown = shown[:MaxDisplayedSponsors]
		view.MoreSponsors = len(b.Sponsors) - MaxDisplayedSponsors
	}
	for _, s := range shown {
		view.Sponsors = append(view.Sponsors, sponsorView{Name: s.Name, Party: s.Party})
	}
	return view
}

// StatusClass maps status text onto one of four CSS classes.
func StatusClass(status string) string {
	lower := strings.ToLower(status)
	switch {
	case strings.Contains(lower, "introduced"):
		return "status-introduced"
	case strings.Contains(lower, "committee"):
		return "status-committee"
	case strings.Contains(lower, "passed"):
		return "status-passed"
	case strings.Contains(lower, "enacted"), strings.Contains(lower, "signed"):
		return "status-enacted"
	default:
		return "status-introduced"
	}
}

var dateLayouts = []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04:05"}

// FormatDate renders an ISO date as "Jan 02, 2006". Empty input yields
// "Unknown" and unparsable input is returned unchanged.
func FormatDate(raw string) string {
	if raw == "" {
		return "Unknown"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(BillDateLayout)
		}
	}
	return raw
}
