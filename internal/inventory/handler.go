package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lims-dash/lims-dash/internal/auth"
	"github.com/lims-dash/lims-dash/internal/platform/upstream"
	"github.com/lims-dash/lims-dash/internal/shared"
	"github.com/lims-dash/lims-dash/internal/view"
)

// SnapshotWarmer schedules a background refresh of the dashboard snapshot
// after a stock-changing operation stales it.
type SnapshotWarmer interface {
	EnqueueDashboardWarmup(ctx context.Context, scope string) error
}

// Handler wires HTTP endpoints for the inventory pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	warmer    SnapshotWarmer
}

// NewHandler constructs the inventory handler. The warmer is optional.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, warmer SnapshotWarmer) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, warmer: warmer}
}

func (h *Handler) warmDashboard(ctx context.Context) {
	if h.warmer == nil {
		return
	}
	if err := h.warmer.EnqueueDashboardWarmup(ctx, "all"); err != nil {
		h.logger.Warn("enqueue dashboard warmup", slog.Any("error", err))
	}
}

// MountRoutes registers inventory routes. Callers mount this behind the
// authenticated group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/export", h.handleExport)
	r.Get("/lookup", h.handleLookup)
	r.Get("/new", h.showAddForm)
	r.Post("/", h.handleCreate)
	r.Get("/{id}/edit", h.showEditForm)
	r.Post("/{id}", h.handleUpdate)
	r.Post("/{id}/delete", h.handleDelete)
	r.Get("/{id}/inward", h.showInwardForm)
	r.Post("/{id}/inward", h.handleInward)
	r.Get("/{id}/outward", h.showOutwardForm)
	r.Post("/{id}/outward", h.handleOutward)
}

type listPageData struct {
	Components []Component
	Filters    Filters
	Pagination shared.Pagination
	Categories []string
	Statuses   []string
	Error      string
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	filters := ParseFilters(r.URL.Query())
	data := listPageData{Filters: filters, Statuses: Statuses}

	categories, err := h.service.Categories(r.Context(), sess.Token())
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.logger.Warn("load categories", slog.Any("error", err))
	}
	data.Categories = categories

	result, err := h.service.List(r.Context(), sess.Token(), filters)
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.logger.Error("list components", slog.Any("error", err))
		// Keep the submitted filter state visible alongside the error.
		data.Error = upstream.UserMessage(err, "Failed to load inventory data. Please try again.")
		h.render(w, r, "pages/inventory_list.html", "Inventory", data, http.StatusOK)
		return
	}
	data.Components = result.Components
	data.Pagination = result.Pagination
	h.render(w, r, "pages/inventory_list.html", "Inventory", data, http.StatusOK)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	filters := ParseFilters(r.URL.Query())

	components, err := h.service.Export(r.Context(), sess.Token(), filters)
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.logger.Error("export components", slog.Any("error", err))
		h.redirectWithFlash(w, r, "/inventory", "error", upstream.UserMessage(err, "Failed to export inventory."))
		return
	}
	if len(components) == 0 {
		h.redirectWithFlash(w, r, "/inventory", "error", "No components found to export with current filters.")
		return
	}

	filename := fmt.Sprintf("inventory-export-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := WriteComponentsCSV(w, components); err != nil {
		h.logger.Error("write csv", slog.Any("error", err))
	}
}

type lookupPageData struct {
	Query    string
	Searched bool
	Match    *Component
	Near     []Component
	Error    string
}

// handleLookup resolves a part number to an existing component so stock
// arriving at the bench goes through inward rather than a duplicate record.
// Misses land on the add form with the part number prefilled.
func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	query := strings.TrimSpace(r.URL.Query().Get("partNumber"))
	if query == "" {
		h.render(w, r, "pages/lookup.html", "Part Lookup", lookupPageData{}, http.StatusOK)
		return
	}

	match, near, err := h.service.Lookup(r.Context(), sess.Token(), query)
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.logger.Error("lookup components", slog.Any("error", err))
		data := lookupPageData{
			Query: query,
			Error: upstream.UserMessage(err, "Lookup failed. Please try again."),
		}
		h.render(w, r, "pages/lookup.html", "Part Lookup", data, http.StatusBadGateway)
		return
	}

	data := lookupPageData{Query: query, Searched: true, Match: match, Near: near}
	h.render(w, r, "pages/lookup.html", "Part Lookup", data, http.StatusOK)
}

type componentFormPage struct {
	Form       ComponentForm
	Errors     map[string]string
	Categories []string
	Statuses   []string
	Component  *Component
	IsEdit     bool
}

func (h *Handler) showAddForm(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	categories, err := h.service.Categories(r.Context(), sess.Token())
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.logger.Warn("load categories", slog.Any("error", err))
	}
	form := ComponentForm{Quantity: "0", UnitPrice: "0", CriticalLowThreshold: "0", Status: StatusActive}
	// The lookup page links here with the unmatched part number.
	form.PartNumber = strings.TrimSpace(r.URL.Query().Get("partNumber"))
	page := componentFormPage{
		Form:       form,
		Errors:     map[string]string{},
		Categories: categories,
		Statuses:   Statuses,
	}
	h.render(w, r, "pages/component_form.html", "Add Component", page, http.StatusOK)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form := componentFormFromRequest(r)

	req, errs := form.Validate(false)
	if len(errs) == 0 {
		if _, err := h.service.Create(r.Context(), sess.Token(), req); err != nil {
			if auth.HandleUpstreamAuthFailure(w, r, err) {
				return
			}
			errs["general"] = upstream.UserMessage(err, "Failed to add component. Please try again.")
		} else {
			h.warmDashboard(r.Context())
			h.redirectWithFlash(w, r, "/inventory", "success", fmt.Sprintf("Component %s added successfully!", req.ComponentName))
			return
		}
	}

	categories, _ := h.service.Categories(r.Context(), sess.Token())
	page := componentFormPage{Form: form, Errors: errs, Categories: categories, Statuses: Statuses}
	h.render(w, r, "pages/component_form.html", "Add Component", page, http.StatusBadRequest)
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	detail, err := h.service.Get(r.Context(), sess.Token(), chi.URLParam(r, "id"))
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.logger.Error("load component", slog.Any("error", err))
		h.redirectWithFlash(w, r, "/inventory", "error", upstream.UserMessage(err, "Component not found."))
		return
	}
	categories, _ := h.service.Categories(r.Context(), sess.Token())

	component := detail.Component
	page := componentFormPage{
		Form:       componentFormFromComponent(component),
		Errors:     map[string]string{},
		Categories: categories,
		Statuses:   Statuses,
		Component:  &component,
		IsEdit:     true,
	}
	h.render(w, r, "pages/component_form.html", "Edit Component", page, http.StatusOK)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")
	form := componentFormFromRequest(r)

	req, errs := form.Validate(true)
	if len(errs) == 0 {
		if _, err := h.service.Update(r.Context(), sess.Token(), id, req); err != nil {
			if auth.HandleUpstreamAuthFailure(w, r, err) {
				return
			}
			errs["general"] = upstream.UserMessage(err, "Failed to update component. Please try again.")
		} else {
			h.warmDashboard(r.Context())
			h.redirectWithFlash(w, r, "/inventory", "success", fmt.Sprintf("Component %s updated successfully!", req.ComponentName))
			return
		}
	}

	detail, err := h.service.Get(r.Context(), sess.Token(), id)
	if err != nil {
		h.redirectWithFlash(w, r, "/inventory", "error", "Component not found.")
		return
	}
	categories, _ := h.service.Categories(r.Context(), sess.Token())
	component := detail.Component
	page := componentFormPage{Form: form, Errors: errs, Categories: categories, Statuses: Statuses, Component: &component, IsEdit: true}
	h.render(w, r, "pages/component_form.html", "Edit Component", page, http.StatusBadRequest)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	message, err := h.service.Delete(r.Context(), sess.Token(), chi.URLParam(r, "id"))
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.redirectWithFlash(w, r, "/inventory", "error", upstream.UserMessage(err, "Failed to delete component."))
		return
	}
	if message == "" {
		message = "Component deleted successfully"
	}
	h.warmDashboard(r.Context())
	h.redirectWithFlash(w, r, "/inventory", "success", message)
}

type stockFormPage struct {
	Component Component
	Inward    bool
	InForm    InwardForm
	OutForm   OutwardForm
	Errors    map[string]string
	Preview   *StockPreview
}

func (h *Handler) showInwardForm(w http.ResponseWriter, r *http.Request) {
	h.showStockForm(w, r, true)
}

func (h *Handler) showOutwardForm(w http.ResponseWriter, r *http.Request) {
	h.showStockForm(w, r, false)
}

func (h *Handler) showStockForm(w http.ResponseWriter, r *http.Request, inward bool) {
	sess := shared.SessionFromContext(r.Context())
	detail, err := h.service.Get(r.Context(), sess.Token(), chi.URLParam(r, "id"))
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.redirectWithFlash(w, r, "/inventory", "error", upstream.UserMessage(err, "Component not found."))
		return
	}
	page := stockFormPage{Component: detail.Component, Inward: inward, Errors: map[string]string{}}
	title := "Outward Stock"
	template := "pages/stock_outward.html"
	if inward {
		title = "Inward Stock"
		template = "pages/stock_inward.html"
	}
	h.render(w, r, template, title, page, http.StatusOK)
}

func (h *Handler) handleInward(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	detail, err := h.service.Get(r.Context(), sess.Token(), id)
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.redirectWithFlash(w, r, "/inventory", "error", upstream.UserMessage(err, "Component not found."))
		return
	}
	component := detail.Component

	form := InwardForm{
		Quantity:      r.PostFormValue("quantity"),
		Supplier:      r.PostFormValue("supplier"),
		PurchasePrice: r.PostFormValue("purchasePrice"),
		InvoiceNumber: r.PostFormValue("invoiceNumber"),
		Notes:         r.PostFormValue("notes"),
	}
	req, errs := form.Validate()
	if len(errs) == 0 {
		if _, err := h.service.Inward(r.Context(), sess.Token(), id, req); err != nil {
			if auth.HandleUpstreamAuthFailure(w, r, err) {
				return
			}
			message := upstream.UserMessage(err, "Failed to inward stock. Please try again.")
			errs["general"] = message
			h.flash(r, "error", message)
		} else {
			h.warmDashboard(r.Context())
			h.redirectWithFlash(w, r, "/inventory", "success", fmt.Sprintf("Stock of %s inwarded successfully!", component.ComponentName))
			return
		}
	}

	page := stockFormPage{Component: component, Inward: true, InForm: form, Errors: errs}
	if qty, err := strconv.Atoi(form.Quantity); err == nil && qty > 0 {
		preview := PreviewInward(component.Quantity, qty)
		page.Preview = &preview
	}
	h.render(w, r, "pages/stock_inward.html", "Inward Stock", page, http.StatusBadRequest)
}

func (h *Handler) handleOutward(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	detail, err := h.service.Get(r.Context(), sess.Token(), id)
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.redirectWithFlash(w, r, "/inventory", "error", upstream.UserMessage(err, "Component not found."))
		return
	}
	component := detail.Component

	form := OutwardForm{
		Quantity:        r.PostFormValue("quantity"),
		ReasonOrProject: r.PostFormValue("reasonOrProject"),
		Notes:           r.PostFormValue("notes"),
		ApprovedBy:      r.PostFormValue("approvedBy"),
	}
	req, errs := form.Validate(component.Quantity)
	if len(errs) == 0 {
		if _, err := h.service.Outward(r.Context(), sess.Token(), id, req); err != nil {
			if auth.HandleUpstreamAuthFailure(w, r, err) {
				return
			}
			message := upstream.UserMessage(err, "Failed to outward stock. Please try again.")
			errs["general"] = message
			h.flash(r, "error", message)
		} else {
			h.warmDashboard(r.Context())
			h.redirectWithFlash(w, r, "/inventory", "success", fmt.Sprintf("Stock of %s outwarded successfully!", component.ComponentName))
			return
		}
	}

	page := stockFormPage{Component: component, Inward: false, OutForm: form, Errors: errs}
	if qty, err := strconv.Atoi(form.Quantity); err == nil && qty > 0 && qty <= component.Quantity {
		preview := PreviewOutward(component.Quantity, qty)
		page.Preview = &preview
	}
	h.render(w, r, "pages/stock_outward.html", "Outward Stock", page, http.StatusBadRequest)
}

func componentFormFromRequest(r *http.Request) ComponentForm {
	return ComponentForm{
		ComponentName:        r.PostFormValue("componentName"),
		Manufacturer:         r.PostFormValue("manufacturer"),
		PartNumber:           r.PostFormValue("partNumber"),
		Description:          r.PostFormValue("description"),
		Category:             r.PostFormValue("category"),
		Quantity:             r.PostFormValue("quantity"),
		UnitPrice:            r.PostFormValue("unitPrice"),
		Location:             r.PostFormValue("location"),
		CriticalLowThreshold: r.PostFormValue("criticalLowThreshold"),
		Tags:                 r.PostFormValue("tags"),
		DatasheetLink:        r.PostFormValue("datasheetLink"),
		Status:               r.PostFormValue("status"),
	}
}

func componentFormFromComponent(c Component) ComponentForm {
	tags := ""
	for i, tag := range c.Tags {
		if i > 0 {
			tags += ", "
		}
		tags += tag
	}
	return ComponentForm{
		ComponentName:        c.ComponentName,
		Manufacturer:         c.Manufacturer,
		PartNumber:           c.PartNumber,
		Description:          c.Description,
		Category:             c.Category,
		Quantity:             strconv.Itoa(c.Quantity),
		UnitPrice:            strconv.FormatFloat(c.UnitPrice, 'f', 2, 64),
		Location:             c.Location,
		CriticalLowThreshold: strconv.Itoa(c.CriticalLowThreshold),
		Tags:                 tags,
		DatasheetLink:        c.DatasheetLink,
		Status:               c.Status,
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data any, status int) {
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

func (h *Handler) flash(r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	h.flash(r, kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}
