// Package fetcher downloads pages from the FPF results site.
//
// A Fetcher sends browser-like requests, decodes compressed and non-UTF-8
// bodies, optionally serves and stores pages through an on-disk cache and
// retries rate-limited (HTTP 429) responses after a fixed cooldown. Retries
// are bounded: once the attempts are exhausted Get returns an error wrapping
// ErrRateLimited. Every other failure is returned immediately so the caller
// can decide whether to skip the page.
package fetcher
