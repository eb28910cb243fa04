package http

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"leadlens/internal/dataprocessing"
	apierrors "leadlens/internal/errors"
	"leadlens/internal/services"
	"leadlens/internal/validation"
	"leadlens/pkg/contracts/domain"
)

// LeadsHandler runs the lead analyses over the configured workbook
type LeadsHandler struct {
	service      AnalysisServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewLeadsHandler creates a new leads handler with RFC 7807 error handling
func NewLeadsHandler(service AnalysisServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *LeadsHandler {
	return &LeadsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "leads_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the lead analysis routes. Reads are GET; every route that
// writes report files is POST.
func (h *LeadsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/profile", h.GetProfile)
	r.Get("/aggregate", h.GetAggregate)

	r.Post("/analyze", h.PostAnalyze)
	r.Post("/active", h.PostActive)
	r.Post("/bounced", h.PostBounced)
	r.Post("/roles", h.PostRoles)
	r.Post("/regions", h.PostRegions)
	r.Post("/deck", h.PostDeck)
	r.Post("/all", h.PostAll)
	return r
}

// load reads the workbook or answers with a problem response
func (h *LeadsHandler) load(w http.ResponseWriter, r *http.Request) (*dataprocessing.Dataset, bool) {
	ds, err := h.service.Load(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	h.logger.DebugContext(r.Context(), "dataset loaded",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", ds.Path),
		slog.Int("rows", ds.Table.Len()))
	return ds, true
}

// options reads ?csv=true
func (h *LeadsHandler) options(w http.ResponseWriter, r *http.Request) (services.Options, bool) {
	raw := r.URL.Query().Get("csv")
	if raw == "" {
		return services.Options{}, true
	}
	csv, err := strconv.ParseBool(raw)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewFieldError("csv", "must be a boolean"))
		return services.Options{}, false
	}
	return services.Options{CSV: csv}, true
}

// respond renders result or the error as a problem
func (h *LeadsHandler) respond(w http.ResponseWriter, r *http.Request, result interface{}, err error) {
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// GetProfile handles GET /api/leads/profile
func (h *LeadsHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.load(w, r)
	if !ok {
		return
	}
	profile, err := h.service.Profile(r.Context(), ds)
	h.respond(w, r, profile, err)
}

// GetAggregate handles GET /api/leads/aggregate?column=Country&subset=active&top=10
func (h *LeadsHandler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	q := validation.AggregateQuery{
		Column: r.URL.Query().Get("column"),
		Subset: r.URL.Query().Get("subset"),
	}
	if raw := r.URL.Query().Get("top"); raw != "" {
		top, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.NewFieldError("top", "must be an integer"))
			return
		}
		q.Top = top
	}
	if err := validation.Struct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	subset := domain.Subset(q.Subset)
	if subset == "" {
		subset = domain.SubsetAll
	}

	ds, ok := h.load(w, r)
	if !ok {
		return
	}
	agg, err := h.service.Aggregate(r.Context(), ds, q.Column, subset, q.Top)
	h.respond(w, r, agg, err)
}

// PostAnalyze handles POST /api/leads/analyze
func (h *LeadsHandler) PostAnalyze(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.load(w, r)
	if !ok {
		return
	}
	result, err := h.service.Analyze(r.Context(), ds)
	h.respond(w, r, result, err)
}

// PostActive handles POST /api/leads/active
func (h *LeadsHandler) PostActive(w http.ResponseWriter, r *http.Request) {
	opts, ok := h.options(w, r)
	if !ok {
		return
	}
	ds, ok := h.load(w, r)
	if !ok {
		return
	}
	result, err := h.service.Active(r.Context(), ds, opts)
	h.respond(w, r, result, err)
}

// PostBounced handles POST /api/leads/bounced
func (h *LeadsHandler) PostBounced(w http.ResponseWriter, r *http.Request) {
	opts, ok := h.options(w, r)
	if !ok {
		return
	}
	ds, ok := h.load(w, r)
	if !ok {
		return
	}
	result, err := h.service.Bounced(r.Context(), ds, opts)
	h.respond(w, r, result, err)
}

// PostRoles handles POST /api/leads/roles
func (h *LeadsHandler) PostRoles(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.load(w, r)
	if !ok {
		return
	}
	result, err := h.service.Roles(r.Context(), ds)
	h.respond(w, r, result, err)
}

// PostRegions handles POST /api/leads/regions with an optional body
// {"labels": ["GCC"]}; without labels every rule is applied
func (h *LeadsHandler) PostRegions(w http.ResponseWriter, r *http.Request) {
	var req validation.RegionsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && err != io.EOF {
		h.errorHandler.HandleError(w, r, apierrors.NewFieldError("body", "malformed JSON"))
		return
	}
	if err := validation.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ds, ok := h.load(w, r)
	if !ok {
		return
	}
	result, err := h.service.Regions(r.Context(), ds, req.Labels...)
	h.respond(w, r, result, err)
}

// PostDeck handles POST /api/leads/deck
func (h *LeadsHandler) PostDeck(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.load(w, r)
	if !ok {
		return
	}
	result, err := h.service.Deck(r.Context(), ds)
	h.respond(w, r, result, err)
}

// PostAll handles POST /api/leads/all
func (h *LeadsHandler) PostAll(w http.ResponseWriter, r *http.Request) {
	opts, ok := h.options(w, r)
	if !ok {
		return
	}
	ds, ok := h.load(w, r)
	if !ok {
		return
	}
	result, err := h.service.All(r.Context(), ds, opts)
	h.respond(w, r, result, err)
}
