// Package sse implements driven.EventStream over the marketplace's
// server-sent-events endpoint.
//
// Each subscription holds one long-lived GET per family, subscribed with
// ?topic=family:<id>. Dropped connections are re-established after the
// server-suggested retry delay, resuming with Last-Event-ID.
package sse
