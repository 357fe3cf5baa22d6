package orders

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lims-dash/lims-dash/internal/auth"
	"github.com/lims-dash/lims-dash/internal/platform/upstream"
	"github.com/lims-dash/lims-dash/internal/shared"
	"github.com/lims-dash/lims-dash/internal/view"
)

// Handler wires the orders history page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs the orders handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers orders routes behind the authenticated group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showOrders)
}

type ordersPageData struct {
	Page   PageData
	Status string
	Limit  int
	Error  string
}

func (h *Handler) showOrders(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	status := r.URL.Query().Get("status")
	limit := DefaultLimit
	if parsed, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && parsed > 0 && parsed <= 50 {
		limit = parsed
	}
	data := ordersPageData{Status: status, Limit: limit}

	page, err := h.service.LoadPage(r.Context(), sess.Token(), status, limit)
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.logger.Error("load orders", slog.Any("error", err))
		data.Error = upstream.UserMessage(err, "Failed to load order history. Please try again.")
	} else {
		data.Page = page
	}

	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	var currentUser any
	if user, ok := auth.UserFromContext(r.Context()); ok {
		currentUser = user
	}
	viewData := view.TemplateData{
		Title:       "Orders",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		CurrentUser: currentUser,
		Data:        data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, "pages/orders.html", viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", "pages/orders.html"))
	}
}
