package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lims-dash/lims-dash/internal/auth"
	"github.com/lims-dash/lims-dash/internal/platform/upstream"
	"github.com/lims-dash/lims-dash/internal/shared"
	"github.com/lims-dash/lims-dash/internal/view"
)

// Roles selectable when creating or editing a user.
var Roles = []string{
	auth.RoleAdmin,
	auth.RoleUser,
	auth.RoleLabTechnician,
	auth.RoleResearcher,
	auth.RoleManufacturingEngineer,
}

// Handler wires the admin user management pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	validator *validator.Validate
}

// NewHandler constructs the users handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, validator: validator.New()}
}

// MountRoutes registers user admin routes. Callers mount this behind
// RequireAdmin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showList)
	r.Post("/", h.handleCreate)
	r.Post("/{id}", h.handleUpdate)
}

type createForm struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Role     string `validate:"required"`
}

type listPageData struct {
	Users  []auth.User
	Roles  []string
	Form   createForm
	Errors map[string]string
	Error  string
}

func (h *Handler) showList(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, createForm{Role: auth.RoleUser}, nil, http.StatusOK)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := createForm{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Role:     r.PostFormValue("role"),
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
				case "Password":
					errs["password"] = "Password must be at least 6 characters."
				case "Role":
					errs["role"] = "Role is required."
				}
			}
		}
	}
	if len(errs) == 0 && !validRole(form.Role) {
		errs["role"] = "Unknown role."
	}

	if len(errs) == 0 {
		user, err := h.service.Create(r.Context(), sess.Token(), CreateRequest{
			Name:     form.Name,
			Email:    form.Email,
			Password: form.Password,
			Role:     form.Role,
		})
		if err != nil {
			if auth.HandleUpstreamAuthFailure(w, r, err) {
				return
			}
			errs["general"] = upstream.UserMessage(err, "Failed to create user.")
		} else {
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "User " + user.Name + " created successfully."})
			http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
			return
		}
	}

	form.Password = ""
	h.renderList(w, r, form, errs, http.StatusBadRequest)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	req := UpdateRequest{}
	if role := r.PostFormValue("role"); role != "" {
		if !validRole(role) {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Unknown role."})
			http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
			return
		}
		req.Role = role
	}
	if active := r.PostFormValue("isActive"); active != "" {
		value := active == "true"
		req.IsActive = &value
	}

	user, err := h.service.Update(r.Context(), sess.Token(), id, req)
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: upstream.UserMessage(err, "Failed to update user.")})
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "User " + user.Name + " updated successfully."})
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, form createForm, errs map[string]string, status int) {
	sess := shared.SessionFromContext(r.Context())
	data := listPageData{Roles: Roles, Form: form, Errors: errs}

	users, err := h.service.List(r.Context(), sess.Token())
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.logger.Error("list users", slog.Any("error", err))
		data.Error = upstream.UserMessage(err, "Failed to load users.")
	} else {
		data.Users = users
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
		Title:       "User Management",
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
	if err := h.templates.Render(w, "pages/users.html", viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", "pages/users.html"))
	}
}

func validRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
