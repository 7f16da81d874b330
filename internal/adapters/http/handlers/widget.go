package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-widget/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-widget/internal/app"
	"github.com/jsamuelsen/quote-widget/internal/domain"
	"github.com/jsamuelsen/quote-widget/internal/platform/logging"
)

const (
	// ButtonLabel is the text of the widget's only control.
	ButtonLabel = "Get Quote"

	// DefaultCookieName names the session cookie when none is configured.
	DefaultCookieName = "quote_widget"

	widgetTemplateName = "widget.html"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// WidgetTemplate parses the embedded page template. Register it with
// gin.Engine.SetHTMLTemplate before serving the page routes.
func WidgetTemplate() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))
}

// WidgetHandlerConfig contains configuration for the widget handler.
type WidgetHandlerConfig struct {
	// Registry owns the mounted widgets. Required.
	Registry *app.WidgetRegistry

	// CookieName names the cookie carrying the page session's widget id.
	CookieName string

	// CookieMaxAge bounds the session cookie lifetime. Zero makes it a
	// browser-session cookie.
	CookieMaxAge time.Duration

	// Title is the page title.
	Title string
}

// WidgetHandler serves the widget page and the widget JSON API.
type WidgetHandler struct {
	registry     *app.WidgetRegistry
	cookieName   string
	cookieMaxAge int
	title        string
}

// NewWidgetHandler creates a new widget handler.
// Panics if Registry is nil.
func NewWidgetHandler(cfg WidgetHandlerConfig) *WidgetHandler {
	if cfg.Registry == nil {
		panic("WidgetHandler: Registry is required")
	}

	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieName
	}

	title := cfg.Title
	if title == "" {
		title = "Quote"
	}

	return &WidgetHandler{
		registry:     cfg.Registry,
		cookieName:   name,
		cookieMaxAge: int(cfg.CookieMaxAge / time.Second),
		title:        title,
	}
}

// pageData feeds the widget template.
type pageData struct {
	Title       string
	ID          string
	Text        string
	Author      string
	ButtonLabel string
}

// Page handles GET /
// Mounts a widget for the session on first visit and renders it.
func (h *WidgetHandler) Page(c *gin.Context) {
	id, w, err := h.sessionWidget(c)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	state := w.State()

	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, widgetTemplateName, pageData{
		Title:       h.title,
		ID:          id,
		Text:        state.Text,
		Author:      state.Author,
		ButtonLabel: ButtonLabel,
	})
}

// SubmitQuote handles POST /quote
// Requests a quote for the session widget, waits for it and redirects back
// to the page.
func (h *WidgetHandler) SubmitQuote(c *gin.Context) {
	id, w, err := h.sessionWidget(c)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	w.Fetch(logging.WithWidgetID(c.Request.Context(), id))

	c.Redirect(http.StatusSeeOther, "/")
}

// Mount handles POST /api/v1/widgets
// Mounts a widget with empty text.
func (h *WidgetHandler) Mount(c *gin.Context) {
	id, w, err := h.registry.Mount()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Location", c.FullPath()+"/"+id)
	c.JSON(http.StatusCreated, dto.NewWidgetResponse(id, w.State()))
}

// Get handles GET /api/v1/widgets/:id
func (h *WidgetHandler) Get(c *gin.Context) {
	id, w, ok := h.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.NewWidgetResponse(id, w.State()))
}

// RequestQuote handles POST /api/v1/widgets/:id/quote
// Fetch failures are not HTTP errors: the widget shows the failure message
// and the response is 200 with that state.
func (h *WidgetHandler) RequestQuote(c *gin.Context) {
	id, w, ok := h.lookup(c)
	if !ok {
		return
	}

	if w.Closed() {
		dto.HandleError(c, domain.ErrClosed)
		return
	}

	state := w.Fetch(logging.WithWidgetID(c.Request.Context(), id))

	c.JSON(http.StatusOK, dto.NewWidgetResponse(id, state))
}

// Unmount handles DELETE /api/v1/widgets/:id
func (h *WidgetHandler) Unmount(c *gin.Context) {
	var uri dto.WidgetURI
	if err := dto.BindURIAndValidate(c, &uri); err != nil {
		h.invalidID(c, err)
		return
	}

	if err := h.registry.Unmount(uri.ID); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterPageRoutes registers the server-rendered page routes.
func (h *WidgetHandler) RegisterPageRoutes(r gin.IRoutes) {
	r.GET("/", h.Page)
	r.POST("/quote", h.SubmitQuote)
}

// RegisterWidgetRoutes registers the widget API on the given router group.
func (h *WidgetHandler) RegisterWidgetRoutes(rg *gin.RouterGroup) {
	widgets := rg.Group("/widgets")
	widgets.POST("", h.Mount)
	widgets.GET("/:id", h.Get)
	widgets.POST("/:id/quote", h.RequestQuote)
	widgets.DELETE("/:id", h.Unmount)
}

// lookup resolves the :id parameter, writing the error response on failure.
func (h *WidgetHandler) lookup(c *gin.Context) (string, *app.QuoteWidget, bool) {
	var uri dto.WidgetURI
	if err := dto.BindURIAndValidate(c, &uri); err != nil {
		h.invalidID(c, err)
		return "", nil, false
	}

	w, err := h.registry.Get(uri.ID)
	if err != nil {
		dto.HandleError(c, err)
		return "", nil, false
	}

	return uri.ID, w, true
}

func (h *WidgetHandler) invalidID(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(
		dto.ErrorCodeValidation,
		"invalid widget id",
		dto.ValidationErrors(err),
	).WithTraceID(dto.GetTraceID(c)))
}

// sessionWidget returns the widget named by the session cookie, mounting a
// new one when the cookie is missing or its widget is gone. The cookie is
// re-issued on every call so it expires with the widget's idle timeout.
func (h *WidgetHandler) sessionWidget(c *gin.Context) (string, *app.QuoteWidget, error) {
	if id, err := c.Cookie(h.cookieName); err == nil && id != "" {
		if w, err := h.registry.Get(id); err == nil && !w.Closed() {
			w.Touch()
			h.setSessionCookie(c, id)

			return id, w, nil
		}
	}

	id, w, err := h.registry.Mount()
	if err != nil {
		return "", nil, err
	}

	h.setSessionCookie(c, id)

	logging.FromContext(c.Request.Context()).Debug("mounted widget for session", "widget_id", id)

	return id, w, nil
}

func (h *WidgetHandler) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, id, h.cookieMaxAge, "/", "", c.Request.TLS != nil, true)
}
