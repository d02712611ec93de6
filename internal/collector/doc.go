// Package collector gathers relevant bills from the provider, one
// jurisdiction at a time.
//
// JurisdictionFetcher handles a single jurisdiction: one search request, then
// one detail request per hit with a fixed pause between detail requests.
// Collector walks the configured jurisdictions in order with a longer pause
// between them. Failures below the run level are logged and skipped.
package collector
