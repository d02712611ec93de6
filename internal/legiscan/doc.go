// Package legiscan is a minimal client for the LegiScan pull API.
//
// Only the two operations the tracker needs are implemented: getSearch, which
// lists the bills of one jurisdiction that match a full-text query, and
// getBill, which returns a single bill's detail record. Requests go through a
// tracker.Fetcher so the transport can be swapped in tests.
package legiscan
