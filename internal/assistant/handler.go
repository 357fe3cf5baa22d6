package assistant

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lims-dash/lims-dash/internal/auth"
	"github.com/lims-dash/lims-dash/internal/platform/upstream"
	"github.com/lims-dash/lims-dash/internal/shared"
	"github.com/lims-dash/lims-dash/internal/view"
)

// Handler wires the assistant chat page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs the assistant handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers assistant routes behind the authenticated group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showChat)
	r.Post("/", h.handleAsk)
	r.Post("/reset", h.handleReset)
}

type chatPageData struct {
	Transcript []Message
	Draft      string
	Error      string
}

func (h *Handler) showChat(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	h.render(w, r, chatPageData{Transcript: h.service.Transcript(sess)}, http.StatusOK)
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	message := strings.TrimSpace(r.PostFormValue("message"))
	if message == "" {
		data := chatPageData{Transcript: h.service.Transcript(sess), Error: "Type a message first."}
		h.render(w, r, data, http.StatusBadRequest)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	transcript, err := h.service.Ask(r.Context(), sess, sess.Token(), user, message)
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.logger.Error("assistant ask", slog.Any("error", err))
		data := chatPageData{
			Transcript: transcript,
			Draft:      message,
			Error:      upstream.UserMessage(err, "The assistant is unavailable right now. Please try again."),
		}
		h.render(w, r, data, http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, "/assistant", http.StatusSeeOther)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	h.service.Reset(sess)
	http.Redirect(w, r, "/assistant", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data chatPageData, status int) {
	sess := shared.SessionFromContext(r.Context())
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
		Title:       "Assistant",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		CurrentUser: currentUser,
		Data:        data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/assistant.html", viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", "pages/assistant.html"))
	}
}
