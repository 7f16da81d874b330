// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrUnavailable, ErrInvalidResponse, etc.)
package ports

import (
	"context"

	"github.com/jsamuelsen/quote-widget/internal/domain"
)

// QuoteSource supplies random quotes from a remote service.
//
// Implementations report every failure through the returned error:
//   - domain.UnavailableError when no response arrived (StatusCode zero)
//     or the response carried a non-2xx status (StatusCode set)
//   - domain.InvalidResponseError when the body could not be translated
type QuoteSource interface {
	// GetRandomQuote fetches one random quote.
	GetRandomQuote(ctx context.Context) (*domain.Quote, error)
}

// Fetch outcomes reported to WidgetMetrics besides the domain.FailureKind values.
const (
	// OutcomeSuccess is a fetch whose quote was applied.
	OutcomeSuccess = "success"

	// OutcomeDiscarded is a response that arrived after unmount.
	OutcomeDiscarded = "discarded"
)

// WidgetMetrics records widget activity. Outcome is OutcomeSuccess,
// OutcomeDiscarded or a domain.FailureKind.
type WidgetMetrics interface {
	RecordFetch(outcome string)
	SetMounted(n int)
}
