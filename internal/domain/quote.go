// Package domain contains core business entities and rules.
package domain

import "time"

// FailureMessage is the text a widget shows when a quote could not be fetched.
const FailureMessage = "Something went wrong. Please try again later."

// Quote represents a quotation with its author.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// ID is the identifier assigned by the quote source.
	ID string

	// Content is the text of the quote.
	Content string

	// Author is who said or wrote the quote. May be empty.
	Author string
}

// QuoteState is the single piece of mutable data a widget displays.
//
// Text holds exactly one of: the empty initial value, the content of the
// last successfully fetched quote, or FailureMessage.
type QuoteState struct {
	// Text is the currently displayed text.
	Text string

	// Author accompanies Text when the last fetch succeeded.
	Author string

	// Failed reports whether Text is FailureMessage.
	Failed bool

	// UpdatedAt is when Text last changed. Zero before the first fetch resolves.
	UpdatedAt time.Time
}

// IsEmpty reports whether no fetch has resolved yet.
func (s QuoteState) IsEmpty() bool {
	return s.UpdatedAt.IsZero()
}

// StateFromQuote builds the state shown after a successful fetch.
func StateFromQuote(q *Quote, at time.Time) QuoteState {
	return QuoteState{
		Text:      q.Content,
		Author:    q.Author,
		UpdatedAt: at,
	}
}

// FailedState builds the state shown after a failed fetch.
func FailedState(at time.Time) QuoteState {
	return QuoteState{
		Text:      FailureMessage,
		Failed:    true,
		UpdatedAt: at,
	}
}
