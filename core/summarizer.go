package core

import "context"

// Summarizer is any service that can condense free-form study material into a short text.
// Calls are one-shot: no retry or backoff; the caller surfaces failures as-is.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}
