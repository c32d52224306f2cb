package producer

import (
	"context"
	"errors"
	"fmt"

	"focusai-rest-api/internal/model"
)

// BatchProducer returns profession-tailored content items for one kind.
// Calls are expensive (search quota + LLM tokens) and non-deterministic;
// seed only nudges the outbound query so successive batches differ.
type BatchProducer interface {
	FetchBatch(ctx context.Context, kind model.Kind, profession string, seed, count int) ([]model.ContentItem, error)
}

// Sentinel failures from the search/LLM pipeline.
var (
	// ErrNoCredentials means no search API key is configured.
	ErrNoCredentials = errors.New("no search API credentials configured")

	// ErrEmptyResults means the search returned nothing usable.
	ErrEmptyResults = errors.New("search returned no results")

	// ErrBadModelOutput means the LLM reply could not be parsed into cards.
	ErrBadModelOutput = errors.New("model output is not a valid card array")
)

// Error wraps a pipeline failure with the step that produced it.
type Error struct {
	Op  string // "search" or "rewrite"
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("producer %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }
