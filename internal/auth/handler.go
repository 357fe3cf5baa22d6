package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lims-dash/lims-dash/internal/platform/upstream"
	"github.com/lims-dash/lims-dash/internal/shared"
	"github.com/lims-dash/lims-dash/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers the public auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

// MountSettingsRoutes registers account settings routes. Callers mount this
// behind the authenticated group.
func (h *Handler) MountSettingsRoutes(r chi.Router) {
	r.Get("/", h.showSettings)
	r.Post("/details", h.handleUpdateDetails)
	r.Post("/password", h.handleUpdatePassword)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil && sess.Token() != "" {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, loginPageData{Form: loginForm{}}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				switch fieldErr.Field() {
				case "Email":
					errs["email"] = "A valid email address is required."
				case "Password":
					errs["password"] = "Password is required."
				}
			}
		}
	}

	if len(errs) == 0 {
		user, token, err := h.service.Login(r.Context(), form.Email, form.Password)
		if err != nil {
			errs["general"] = upstream.UserMessage(err, "Invalid credentials")
			h.logger.Info("login rejected", slog.String("email", form.Email))
		} else {
			if sess != nil {
				sess.SetToken(token)
				if raw, err := json.Marshal(user); err == nil {
					sess.SetUserJSON(string(raw))
				}
				sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back, " + user.Name + "!"})
			}
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	// Never echo the password back.
	form.Password = ""
	h.renderLogin(w, r, loginPageData{Form: form, Errors: errs}, http.StatusBadRequest)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if token := sess.Token(); token != "" {
			// Best effort: the bearer token is discarded locally regardless.
			if err := h.service.Logout(r.Context(), token); err != nil {
				h.logger.Warn("upstream logout", slog.Any("error", err))
			}
		}
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type detailsForm struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
}

type passwordForm struct {
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required"`
}

type settingsPageData struct {
	Details        detailsForm
	DetailsErrors  map[string]string
	PasswordErrors map[string]string
}

func (h *Handler) showSettings(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	data := settingsPageData{Details: detailsForm{Name: user.Name, Email: user.Email}}
	h.renderSettings(w, r, data, http.StatusOK)
}

func (h *Handler) handleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := detailsForm{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				switch fieldErr.Field() {
				case "Name":
					errs["name"] = "Name is required."
				case "Email":
					errs["email"] = "A valid email address is required."
				}
			}
		}
	}

	if len(errs) == 0 {
		user, err := h.service.UpdateDetails(r.Context(), sess.Token(), form.Name, form.Email)
		if err != nil {
			if HandleUpstreamAuthFailure(w, r, err) {
				return
			}
			errs["general"] = upstream.UserMessage(err, "Failed to update details.")
		} else {
			if raw, err := json.Marshal(user); err == nil {
				sess.SetUserJSON(string(raw))
			}
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Details updated successfully."})
			http.Redirect(w, r, "/settings", http.StatusSeeOther)
			return
		}
	}

	h.renderSettings(w, r, settingsPageData{Details: form, DetailsErrors: errs}, http.StatusBadRequest)
}

func (h *Handler) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := passwordForm{
		CurrentPassword: r.PostFormValue("currentPassword"),
		NewPassword:     r.PostFormValue("newPassword"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				switch fieldErr.Field() {
				case "CurrentPassword":
					errs["currentPassword"] = "Current password is required."
				case "NewPassword":
					errs["newPassword"] = "New password must be at least 6 characters."
				case "ConfirmPassword":
					errs["confirmPassword"] = "Please confirm the new password."
				}
			}
		}
	}
	if len(errs) == 0 && form.NewPassword != form.ConfirmPassword {
		errs["confirmPassword"] = "Passwords do not match."
	}

	if len(errs) == 0 {
		if err := h.service.UpdatePassword(r.Context(), sess.Token(), form.CurrentPassword, form.NewPassword); err != nil {
			if HandleUpstreamAuthFailure(w, r, err) {
				return
			}
			errs["general"] = upstream.UserMessage(err, "Failed to update password.")
		} else {
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Password updated successfully."})
			http.Redirect(w, r, "/settings", http.StatusSeeOther)
			return
		}
	}

	user, _ := UserFromContext(r.Context())
	data := settingsPageData{
		Details:        detailsForm{Name: user.Name, Email: user.Email},
		PasswordErrors: errs,
	}
	h.renderSettings(w, r, data, http.StatusBadRequest)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, data loginPageData, status int) {
	h.renderPage(w, r, "pages/login.html", "Sign In", data, status)
}

func (h *Handler) renderSettings(w http.ResponseWriter, r *http.Request, data settingsPageData, status int) {
	h.renderPage(w, r, "pages/settings.html", "Account Settings", data, status)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, template, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	var currentUser any
	if user, ok := UserFromContext(r.Context()); ok {
		currentUser = user
	}
	viewData := view.TemplateData{
		Title:       title,
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
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}
