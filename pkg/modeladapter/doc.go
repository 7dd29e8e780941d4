// Package modeladapter is the HTTP transport of the generate path.
//
// [ModelAdapter] posts a JSON request with a bearer credential and returns the
// open event-stream body. Non-2xx answers become a [StatusError]; a 2xx
// answer without a body is [ErrNoBody]. The x-ratelimit-* headers of the
// latest successful answer are kept as a [RateLimitInfo].
//
// Endpoint paths and request bodies belong to the provider packages that
// embed ModelAdapter.
package modeladapter
