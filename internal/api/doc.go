// Package api hosts the preview HTTP server for the generated site. Routes:
//   - GET /healthz and /readyz for health checks; readyz reports 503 until a document exists.
//   - GET /metrics for Prometheus scraping.
//   - GET /* serves the output directory as static files.
package api
