// Package httpapi implements driven.DocumentAPI over the marketplace's
// HTTP JSON endpoints.
//
// Requests carry a bearer token when one is configured and are throttled
// client-side. The client never retries; cancellation is the caller's
// context. Error bodies of the form {"error": "..."} or {"message": "..."}
// are surfaced verbatim through *APIError.
package httpapi
