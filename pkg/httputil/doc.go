// Package httputil provides the HTTP client used for server-to-server
// family exchange.
//
// # Overview
//
// This package provides the infrastructure for fetching exchange documents
// from other Stammbaum instances:
//
//   - [Client]: JSON fetching with response caching and automatic retry
//
// # Caching
//
// Responses are stored through the configured [cache.Cache] under keys from
// [cache.Keyer.HTTPKey], with the shared HTTP TTL. Repeated imports of the
// same remote family skip the network entirely until the entry expires.
//
// # Retry
//
// Transient failures retry with exponential backoff:
//
//   - network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Client errors other than these return immediately; a 404 maps to
// ErrCodeNotFound so callers can distinguish a missing family from a broken
// server.
//
// # Observability
//
// Every request reports through the registered HTTP hooks, and cache probes
// through the cache hooks, so servers can count remote traffic without this
// package knowing about metrics.
package httputil
