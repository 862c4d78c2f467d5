// Package constants provides centralized constant definitions for kconsole.
// Magic numbers, strings and defaults live here so the UI, the API client and the
// direct backend agree on them.
//
// The constants are organized into logical categories:
//   - time.go: Timeouts, refresh intervals, cache ages and backoff
//   - limits.go: Page sizes, buffer sizes and retry counts
//   - paths.go: File paths and configuration locations
//   - ui.go: Themes, dimensions and display strings
//   - status.go: Connection and resource status strings
//   - errors.go: Error messages and error detection keywords
//   - http.go: HTTP status codes and headers
//   - api.go: Console API paths and WebSocket frame types
//
// When adding new constants, pick the file for its category and include units in the
// comment where applicable.
package constants
