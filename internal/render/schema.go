package render

import (
	"encoding/json"
	"fmt"
)

// The types below describe the schema.org graph embedded in the page head.
// Field order is fixed by the struct layout, so the marshalled output is stable.

type ldGraph struct {
	Context string `json:"@context"`
	Graph   []any  `json:"@graph"`
}

type ldImage struct {
	Type   string `json:"@type"`
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type ldOffer struct {
	Type          string `json:"@type"`
	Price         string `json:"price"`
	PriceCurrency string `json:"priceCurrency"`
}

type ldPerson struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type ldPublisher struct {
	Type string  `json:"@type"`
	Name string  `json:"name"`
	URL  string  `json:"url"`
	Logo ldImage `json:"logo"`
}

type ldWebApplication struct {
	Type                string      `json:"@type"`
	ID                  string      `json:"@id"`
	Name                string      `json:"name"`
	ApplicationCategory string      `json:"applicationCategory"`
	OperatingSystem     string      `json:"operatingSystem"`
	URL                 string      `json:"url"`
	Description         string      `json:"description"`
	Offers              ldOffer     `json:"offers"`
	Author              ldPerson    `json:"author"`
	Publisher           ldPublisher `json:"publisher"`
	FeatureList         []string    `json:"featureList"`
}

type ldRef struct {
	ID string `json:"@id"`
}

type ldEntryPoint struct {
	Type        string `json:"@type"`
	URLTemplate string `json:"urlTemplate"`
}

type ldSearchAction struct {
	Type       string       `json:"@type"`
	Target     ldEntryPoint `json:"target"`
	QueryInput string       `json:"query-input"`
}

type ldWebSite struct {
	Type            string         `json:"@type"`
	ID              string         `json:"@id"`
	URL             string         `json:"url"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Publisher       ldRef          `json:"publisher"`
	PotentialAction ldSearchAction `json:"potentialAction"`
}

type ldOrganization struct {
	Type   string   `json:"@type"`
	ID     string   `json:"@id"`
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Logo   ldImage  `json:"logo"`
	SameAs []string `json:"sameAs"`
}

type ldListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

type ldBreadcrumbList struct {
	Type            string       `json:"@type"`
	ID              string       `json:"@id"`
	ItemListElement []ldListItem `json:"itemListElement"`
}

var featureList = []string{
	"Real-time cannabis bill tracking across all 50 states",
	"Federal cannabis legislation monitoring",
	"LegiScan API integration for up-to-date data",
	"CBDT Framework analysis integration",
	"Advanced filtering by state, status, and keywords",
	"Bill status tracking and legislative progress",
}

// structuredData builds the JSON-LD document for site.
func structuredData(site Site) ([]byte, error) {
	orgID := site.PublisherURL + "#organization"
	graph := ldGraph{
		Context: "https://schema.org",
		Graph: []any{
			ldWebApplication{
				Type:                "WebApplication",
				ID:                  site.CanonicalURL + "#webapp",
				Name:                site.Name,
				ApplicationCategory: "GovernmentApplication",
				OperatingSystem:     "Web Browser",
				URL:                 site.CanonicalURL,
				Description: "Real-time tracking of cannabis legislation across all 50 states and federal " +
					"government using LegiScan API with data-driven CBDT Framework analysis.",
				Offers: ldOffer{Type: "Offer", Price: "0", PriceCurrency: "USD"},
				Author: ldPerson{Type: "Person", Name: site.AuthorName, URL: site.PublisherURL},
				Publisher: ldPublisher{
					Type: "Organization",
					Name: site.PublisherName,
					URL:  site.PublisherURL,
					Logo: ldImage{Type: "ImageObject", URL: site.LogoURL},
				},
				FeatureList: featureList,
			},
			ldWebSite{
				Type:        "WebSite",
				ID:          site.CanonicalURL + "#website",
				URL:         site.CanonicalURL,
				Name:        site.Name,
				Description: "Track cannabis legislation across America in real-time",
				Publisher:   ldRef{ID: orgID},
				PotentialAction: ldSearchAction{
					Type: "SearchAction",
					Target: ldEntryPoint{
						Type:        "EntryPoint",
						URLTemplate: site.CanonicalURL + "?search={search_term_string}",
					},
					QueryInput: "required name=search_term_string",
				},
			},
			ldOrganization{
				Type:   "Organization",
				ID:     orgID,
				Name:   site.PublisherName,
				URL:    site.PublisherURL,
				Logo:   ldImage{Type: "ImageObject", URL: site.LogoURL, Width: 256, Height: 256},
				SameAs: []string{site.FrameworkURL},
			},
			ldBreadcrumbList{
				Type: "BreadcrumbList",
				ID:   site.CanonicalURL + "#breadcrumb",
				ItemListElement: []ldListItem{
					{Type: "ListItem", Position: 1, Name: "Home", Item: site.PublisherURL},
					{Type: "ListItem", Position: 2, Name: site.Name, Item: site.CanonicalURL},
				},
			},
		},
	}
	out, err := json.MarshalIndent(graph, "    ", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal structured data: %w", err)
	}
	return out, nil
}
