package dashboard

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lims-dash/lims-dash/internal/auth"
	"github.com/lims-dash/lims-dash/internal/dashboard/svg"
	"github.com/lims-dash/lims-dash/internal/platform/upstream"
	"github.com/lims-dash/lims-dash/internal/shared"
	"github.com/lims-dash/lims-dash/internal/view"
)

// Handler wires HTTP endpoints for the dashboard page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers dashboard routes behind the authenticated group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showDashboard)
	r.Post("/assessment", h.handleAssessment)
}

type pageData struct {
	Snapshot     Snapshot
	MonthlyChart template.HTML
	TrendChart   template.HTML
	Assessment   *Assessment
	IsAdmin      bool
	Error        string
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	h.renderDashboard(w, r, nil)
}

func (h *Handler) handleAssessment(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	user, _ := auth.UserFromContext(r.Context())
	assessment, err := h.service.Assess(r.Context(), sess.Token(), user.IsAdmin())
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.logger.Error("stock assessment", slog.Any("error", err))
		if sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: upstream.UserMessage(err, "Failed to generate the stock assessment.")})
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.renderDashboard(w, r, &assessment)
}

func (h *Handler) renderDashboard(w http.ResponseWriter, r *http.Request, assessment *Assessment) {
	sess := shared.SessionFromContext(r.Context())
	user, _ := auth.UserFromContext(r.Context())
	data := pageData{IsAdmin: user.IsAdmin(), Assessment: assessment}

	snap, err := h.service.Load(r.Context(), sess.Token(), user.IsAdmin())
	if err != nil {
		if auth.HandleUpstreamAuthFailure(w, r, err) {
			return
		}
		h.logger.Error("load dashboard", slog.Any("error", err))
		data.Error = upstream.UserMessage(err, "Failed to load dashboard data. Please try again.")
		h.render(w, r, data)
		return
	}
	data.Snapshot = snap
	data.MonthlyChart = h.monthlyChart(snap.MonthlyStats)
	data.TrendChart = h.trendChart(snap.DailyTrends)
	h.render(w, r, data)
}

func (h *Handler) monthlyChart(stats []MonthlyStat) template.HTML {
	if len(stats) == 0 {
		return ""
	}
	inward := make([]float64, len(stats))
	outward := make([]float64, len(stats))
	labels := make([]string, len(stats))
	for i, s := range stats {
		inward[i] = float64(s.InwardQty)
		outward[i] = float64(s.OutwardQty)
		labels[i] = s.Month
	}
	chart, err := svg.Bars(0, 0, inward, outward, labels, svg.BarOpts{
		Title:       "Monthly stock movements",
		Description: "Inward and outward quantities for the last six months",
	})
	if err != nil {
		h.logger.Warn("render monthly chart", slog.Any("error", err))
		return ""
	}
	return chart
}

func (h *Handler) trendChart(trends []DailyTrend) template.HTML {
	if len(trends) == 0 {
		return ""
	}
	series := make([]float64, len(trends))
	labels := make([]string, len(trends))
	for i, t := range trends {
		series[i] = float64(t.OutwardQty)
		labels[i] = t.Date
	}
	chart, err := svg.Line(0, 0, series, labels, svg.LineOpts{
		Title:       "Daily usage",
		Description: "Outward quantity per day over the last week",
		ShowDots:    true,
	})
	if err != nil {
		h.logger.Warn("render trend chart", slog.Any("error", err))
		return ""
	}
	return chart
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data pageData) {
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
		Title:       "Dashboard",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		CurrentUser: currentUser,
		Data:        data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, "pages/dashboard.html", viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", "pages/dashboard.html"))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
