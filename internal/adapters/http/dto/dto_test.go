package dto

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-widget/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(ErrorCodeNotFound, "widget not found").WithTraceID("trace-1")

	assert.Equal(t, ErrorCodeNotFound, resp.Error.Code)
	assert.Equal(t, "widget not found", resp.Error.Message)
	assert.Nil(t, resp.Error.Details)
	assert.Equal(t, "trace-1", resp.TraceID)

	withDetails := NewErrorResponseWithDetails(ErrorCodeValidation, "bad", map[string]string{"id": "required"})
	assert.Equal(t, map[string]string{"id": "required"}, withDetails.Error.Details)
}

func TestErrorResponse_JSONShape(t *testing.T) {
	b, err := json.Marshal(NewErrorResponse(ErrorCodeTimeout, "slow"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"error":{"code":"TIMEOUT","message":"slow"}}`, string(b))
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeBadRequest, http.StatusBadRequest},
		{ErrorCodeGone, http.StatusGone},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeInternal, http.StatusInternalServerError},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "not found",
			err:        domain.NewNotFoundError("widget", "abc"),
			wantStatus: http.StatusNotFound,
			wantCode:   ErrorCodeNotFound,
			wantMsg:    `widget with id "abc" not found`,
		},
		{
			name:       "closed",
			err:        domain.ErrClosed,
			wantStatus: http.StatusGone,
			wantCode:   ErrorCodeGone,
			wantMsg:    "closed",
		},
		{
			name:       "unavailable",
			err:        domain.NewUnavailableError("widget-registry", "widget limit reached"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   ErrorCodeUnavailable,
			wantMsg:    "widget limit reached",
		},
		{
			name:       "invalid response",
			err:        domain.NewInvalidResponseError("quote-service", "malformed JSON", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   ErrorCodeUnavailable,
			wantMsg:    "malformed JSON",
		},
		{
			name:       "unknown",
			err:        errors.New("secret internals"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrorCodeInternal,
			wantMsg:    "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapDomainError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.wantMsg)
		})
	}

	status, resp := MapDomainError(nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp)
}

func TestMapDomainError_ValidationDetails(t *testing.T) {
	status, resp := MapDomainError(domain.NewValidationError("id", "must be a valid widget id"))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]string{"id": "must be a valid widget id"}, resp.Error.Details)
}

func TestGetTraceID(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*gin.Context)
		want  string
	}{
		{"override in context", func(c *gin.Context) { c.Set(ContextKeyTraceID, "trace-123") }, "trace-123"},
		{"override with wrong type", func(c *gin.Context) { c.Set(ContextKeyTraceID, 12345) }, ""},
		{"no span", func(*gin.Context) {}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			tt.setup(c)

			assert.Equal(t, tt.want, GetTraceID(c))
		})
	}
}

func TestHandleError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(ContextKeyTraceID, "trace-abc")

	HandleError(c, domain.NewNotFoundError("widget", "abc"))

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrorCodeNotFound, resp.Error.Code)
	assert.Equal(t, "trace-abc", resp.TraceID)
}

func TestHandleErrorCode(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleErrorCode(c, ErrorCodeBadRequest, "missing session")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing session")
}

func TestValidate_WidgetURI(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr string
	}{
		{"valid v4", "3f2b8c1e-9a4d-4f6b-8e2a-1c5d7e9f0a3b", ""},
		{"empty", "", "this field is required"},
		{"not a uuid", "widget-1", "must be a valid widget id"},
		{"uppercase", "3F2B8C1E-9A4D-4F6B-8E2A-1C5D7E9F0A3B", "must be a valid widget id"},
		{"version 1", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "must be a valid widget id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&WidgetURI{ID: tt.id})

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, map[string]string{"id": tt.wantErr}, ValidationErrors(err))
		})
	}
}

func TestBindURIAndValidate(t *testing.T) {
	engine := gin.New()
	engine.GET("/widgets/:id", func(c *gin.Context) {
		var uri WidgetURI
		if err := BindURIAndValidate(c, &uri); err != nil {
			c.JSON(http.StatusBadRequest, ValidationErrors(err))
			return
		}

		c.String(http.StatusOK, uri.ID)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/widgets/3f2b8c1e-9a4d-4f6b-8e2a-1c5d7e9f0a3b", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3f2b8c1e-9a4d-4f6b-8e2a-1c5d7e9f0a3b", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/widgets/nope", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"id":"must be a valid widget id"}`, w.Body.String())
}

func TestNewWidgetResponse(t *testing.T) {
	empty := NewWidgetResponse("w1", domain.QuoteState{})
	assert.Equal(t, &WidgetResponse{ID: "w1"}, empty)

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))
	resp := NewWidgetResponse("w1", domain.StateFromQuote(&domain.Quote{Content: "Hello", Author: "Anon"}, at))

	assert.Equal(t, "Hello", resp.Text)
	assert.Equal(t, "Anon", resp.Author)
	assert.False(t, resp.Failed)
	require.NotNil(t, resp.UpdatedAt)
	assert.Equal(t, time.UTC, resp.UpdatedAt.Location())

	b, err := json.Marshal(NewWidgetResponse("w1", domain.FailedState(at)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"w1","text":"`+domain.FailureMessage+`","failed":true,"updatedAt":"2024-05-01T09:00:00Z"}`, string(b))
}
