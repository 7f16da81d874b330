package dto

import (
	"time"

	"github.com/jsamuelsen/quote-widget/internal/domain"
)

// WidgetURI binds the :id path parameter of widget routes.
type WidgetURI struct {
	ID string `uri:"id" validate:"required,uuid"`
}

// WidgetResponse is the JSON form of one widget's state.
type WidgetResponse struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Author    string     `json:"author,omitempty"`
	Failed    bool       `json:"failed"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// NewWidgetResponse converts a widget state for the API.
func NewWidgetResponse(id string, s domain.QuoteState) *WidgetResponse {
	resp := &WidgetResponse{
		ID:     id,
		Text:   s.Text,
		Author: s.Author,
		Failed: s.Failed,
	}

	if !s.IsEmpty() {
		at := s.UpdatedAt.UTC()
		resp.UpdatedAt = &at
	}

	return resp
}
