package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-widget/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-widget/internal/app"
	"github.com/jsamuelsen/quote-widget/internal/domain"
	"github.com/jsamuelsen/quote-widget/internal/mocks"
	"github.com/jsamuelsen/quote-widget/internal/ports"
)

func setupWidgetRouter(t *testing.T, src ports.QuoteSource) (*gin.Engine, *app.WidgetRegistry) {
	t.Helper()

	return setupWidgetRouterWith(t, app.WidgetRegistryConfig{Source: src}, WidgetHandlerConfig{})
}

func setupWidgetRouterWith(
	t *testing.T,
	regCfg app.WidgetRegistryConfig,
	cfg WidgetHandlerConfig,
) (*gin.Engine, *app.WidgetRegistry) {
	t.Helper()

	regCfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := app.NewWidgetRegistry(regCfg)
	t.Cleanup(registry.CloseAll)

	cfg.Registry = registry
	handler := NewWidgetHandler(cfg)

	router := gin.New()
	router.SetHTMLTemplate(WidgetTemplate())
	handler.RegisterPageRoutes(router)
	handler.RegisterWidgetRoutes(router.Group("/api/v1"))

	return router, registry
}

func serve(router http.Handler, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func decodeWidget(t *testing.T, w *httptest.ResponseRecorder) dto.WidgetResponse {
	t.Helper()

	var resp dto.WidgetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == DefaultCookieName {
			return c
		}
	}

	t.Fatalf("no %s cookie set", DefaultCookieName)

	return nil
}

func TestNewWidgetHandler_PanicsWithoutRegistry(t *testing.T) {
	assert.PanicsWithValue(t, "WidgetHandler: Registry is required", func() {
		NewWidgetHandler(WidgetHandlerConfig{})
	})
}

func TestWidgetHandler_PageMountsSessionWidget(t *testing.T) {
	router, registry := setupWidgetRouter(t, mocks.NewMockQuoteSource(t))

	w := serve(router, http.MethodGet, "/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ButtonLabel)
	assert.Contains(t, w.Body.String(), `action="/quote"`)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 1, registry.Len())

	// Same session, same widget.
	w = serve(router, http.MethodGet, "/", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, cookie.Value, sessionCookie(t, w).Value)
	assert.Equal(t, 1, registry.Len())
}

func TestWidgetHandler_SessionCookieSlides(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	src := mocks.NewMockQuoteSource(t)
	src.EXPECT().GetRandomQuote(mock.Anything).Return(&domain.Quote{Content: "Hello"}, nil).Twice()

	router, registry := setupWidgetRouterWith(t,
		app.WidgetRegistryConfig{Source: src, IdleTimeout: 30 * time.Minute, Clock: clock},
		WidgetHandlerConfig{CookieMaxAge: 30 * time.Minute},
	)

	cookie := sessionCookie(t, serve(router, http.MethodGet, "/"))
	assert.Equal(t, 1800, cookie.MaxAge)

	for range 2 {
		now = now.Add(20 * time.Minute)

		w := serve(router, http.MethodPost, "/quote", cookie)
		require.Equal(t, http.StatusSeeOther, w.Code)

		refreshed := sessionCookie(t, w)
		assert.Equal(t, cookie.Value, refreshed.Value)
		assert.Equal(t, 1800, refreshed.MaxAge)
	}

	now = now.Add(20 * time.Minute)

	w := serve(router, http.MethodGet, "/", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, cookie.Value, sessionCookie(t, w).Value)
	assert.Contains(t, w.Body.String(), "Hello")

	now = now.Add(20 * time.Minute)
	assert.Zero(t, registry.Sweep(now), "viewing the page keeps the widget active")
	assert.Equal(t, 1, registry.Len())
}

func TestWidgetHandler_PageRemountsUnknownSession(t *testing.T) {
	router, registry := setupWidgetRouter(t, mocks.NewMockQuoteSource(t))

	stale := &http.Cookie{Name: DefaultCookieName, Value: uuid.NewString()}

	w := serve(router, http.MethodGet, "/", stale)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, stale.Value, sessionCookie(t, w).Value)
	assert.Equal(t, 1, registry.Len())
}

func TestWidgetHandler_SubmitQuoteShowsQuote(t *testing.T) {
	src := mocks.NewMockQuoteSource(t)
	src.EXPECT().GetRandomQuote(mock.Anything).
		Return(&domain.Quote{ID: "1", Content: "Be yourself", Author: "Oscar Wilde"}, nil).Once()

	router, _ := setupWidgetRouter(t, src)

	cookie := sessionCookie(t, serve(router, http.MethodGet, "/"))

	w := serve(router, http.MethodPost, "/quote", cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = serve(router, http.MethodGet, "/", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Be yourself")
	assert.Contains(t, w.Body.String(), "Oscar Wilde")
}

func TestWidgetHandler_SubmitQuoteShowsFailureMessage(t *testing.T) {
	src := mocks.NewMockQuoteSource(t)
	src.EXPECT().GetRandomQuote(mock.Anything).
		Return(nil, domain.NewStatusError("quote-service", http.StatusInternalServerError)).Once()

	router, _ := setupWidgetRouter(t, src)

	cookie := sessionCookie(t, serve(router, http.MethodGet, "/"))
	serve(router, http.MethodPost, "/quote", cookie)

	w := serve(router, http.MethodGet, "/", cookie)
	assert.Contains(t, w.Body.String(), "Something went wrong. Please try again later.")
}

func TestWidgetHandler_API(t *testing.T) {
	src := mocks.NewMockQuoteSource(t)
	src.EXPECT().GetRandomQuote(mock.Anything).Return(&domain.Quote{Content: "Hello"}, nil).Once()
	src.EXPECT().GetRandomQuote(mock.Anything).Return(nil, errors.New("dial tcp: connection refused")).Once()

	router, registry := setupWidgetRouter(t, src)

	w := serve(router, http.MethodPost, "/api/v1/widgets")
	require.Equal(t, http.StatusCreated, w.Code)

	created := decodeWidget(t, w)
	assert.Empty(t, created.Text)
	assert.Nil(t, created.UpdatedAt)
	assert.Equal(t, "/api/v1/widgets/"+created.ID, w.Header().Get("Location"))

	path := "/api/v1/widgets/" + created.ID

	w = serve(router, http.MethodPost, path+"/quote")
	require.Equal(t, http.StatusOK, w.Code)

	got := decodeWidget(t, w)
	assert.Equal(t, "Hello", got.Text)
	assert.False(t, got.Failed)
	assert.NotNil(t, got.UpdatedAt)

	w = serve(router, http.MethodPost, path+"/quote")
	require.Equal(t, http.StatusOK, w.Code, "fetch failures are widget state, not HTTP errors")

	got = decodeWidget(t, w)
	assert.Equal(t, domain.FailureMessage, got.Text)
	assert.True(t, got.Failed)

	w = serve(router, http.MethodGet, path)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.FailureMessage, decodeWidget(t, w).Text)

	w = serve(router, http.MethodDelete, path)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, registry.Len())

	w = serve(router, http.MethodGet, path)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWidgetHandler_APIErrors(t *testing.T) {
	router, _ := setupWidgetRouter(t, mocks.NewMockQuoteSource(t))

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantCode   string
	}{
		{"malformed id", http.MethodGet, "/api/v1/widgets/not-a-uuid", http.StatusBadRequest, dto.ErrorCodeValidation},
		{"uppercase id", http.MethodGet, "/api/v1/widgets/" + "6BA7B810-9DAD-41D1-80B4-00C04FD430C8", http.StatusBadRequest, dto.ErrorCodeValidation},
		{"unknown id", http.MethodGet, "/api/v1/widgets/" + uuid.NewString(), http.StatusNotFound, dto.ErrorCodeNotFound},
		{"quote for unknown id", http.MethodPost, "/api/v1/widgets/" + uuid.NewString() + "/quote", http.StatusNotFound, dto.ErrorCodeNotFound},
		{"delete malformed id", http.MethodDelete, "/api/v1/widgets/123", http.StatusBadRequest, dto.ErrorCodeValidation},
		{"delete unknown id", http.MethodDelete, "/api/v1/widgets/" + uuid.NewString(), http.StatusNotFound, dto.ErrorCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.method, tt.target)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestWidgetHandler_MountRejectedWhenShuttingDown(t *testing.T) {
	router, registry := setupWidgetRouter(t, mocks.NewMockQuoteSource(t))

	registry.CloseAll()

	w := serve(router, http.MethodPost, "/api/v1/widgets")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = serve(router, http.MethodGet, "/")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
