package http

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/starfeu1331-jpg/MagicSysteme/internal/aggregate"
	apierrors "github.com/starfeu1331-jpg/MagicSysteme/internal/errors"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/services"
	"github.com/starfeu1331-jpg/MagicSysteme/pkg/contracts/domain"
)

// AnalyticsHandler exposes the aggregated batch as a JSON API
type AnalyticsHandler struct {
	service AnalyticsProvider
	logger  *slog.Logger
}

// NewAnalyticsHandler creates an analytics handler
func NewAnalyticsHandler(service AnalyticsProvider, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With(slog.String("component", "analytics_handler")),
	}
}

// Routes returns the analytics routes
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.GetSummary)

	r.Route("/rankings", func(r chi.Router) {
		r.Get("/families", h.GetFamilies)
		r.Get("/sub-families", h.GetSubFamilies)
		r.Get("/products", h.GetProducts)
		r.Get("/months", h.GetMonths)
		r.Get("/stores", h.GetStores)
		r.Get("/cities", h.GetCities)
		r.Get("/postal-codes", h.GetPostalCodes)
	})

	r.Get("/cohorts", h.GetCohorts)
	r.Get("/cross-sell", h.GetCrossSell)
	r.Get("/rfm", h.GetRFM)
	r.Get("/abc", h.GetABC)
	r.Get("/trend", h.GetTrend)
	r.Get("/catalog", h.GetCatalog)

	return r
}

// RankedEntry is one row of a revenue ranking
type RankedEntry struct {
	Rank    int     `json:"rank"`
	Key     string  `json:"key"`
	Revenue float64 `json:"revenue"`
	Volume  int64   `json:"volume"`
}

// RankedPair is one row of a cross-sell ranking
type RankedPair struct {
	Rank    int    `json:"rank"`
	A       string `json:"a"`
	B       string `json:"b"`
	Tickets int    `json:"tickets"`
}

// rankEntries orders an accumulator by revenue descending, key
// ascending on ties, so rankings are stable across runs.
func rankEntries(acc aggregate.Accumulator) []RankedEntry {
	ranked := make([]RankedEntry, 0, len(acc))
	for key, e := range acc {
		ranked = append(ranked, RankedEntry{Key: key, Revenue: e.Revenue, Volume: e.Volume})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].Key < ranked[j].Key
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func rankPairs(counts aggregate.PairCounts) []RankedPair {
	ranked := make([]RankedPair, 0, len(counts))
	for pair, n := range counts {
		ranked = append(ranked, RankedPair{A: pair.A, B: pair.B, Tickets: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Tickets != ranked[j].Tickets {
			return ranked[i].Tickets > ranked[j].Tickets
		}
		if ranked[i].A != ranked[j].A {
			return ranked[i].A < ranked[j].A
		}
		return ranked[i].B < ranked[j].B
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// scopeParam parses the optional ?scope= query value
func scopeParam(r *http.Request) (domain.Scope, *apierrors.APIError) {
	scope, err := domain.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		return "", apierrors.InvalidParameterError("scope", err)
	}
	return scope, nil
}

// GetSummary handles GET /api/analytics/summary
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary := h.service.Summarize()
	if summary == nil {
		render.Render(w, r, apierrors.ErrNoDataset)
		return
	}
	render.JSON(w, r, summary)
}

func (h *AnalyticsHandler) GetFamilies(w http.ResponseWriter, r *http.Request) {
	h.renderChannelRanking(w, r, func(res *aggregate.Result) aggregate.ChannelSet {
		return res.Families
	})
}

func (h *AnalyticsHandler) GetSubFamilies(w http.ResponseWriter, r *http.Request) {
	h.renderChannelRanking(w, r, func(res *aggregate.Result) aggregate.ChannelSet {
		return res.SubFamilies
	})
}

// GetProducts handles GET /api/analytics/rankings/products. An
// optional ?month=YYYY-MM restricts the ranking to one month and an
// optional ?limit= caps it, giving the top sellers of that month.
func (h *AnalyticsHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		h.renderChannelRanking(w, r, func(res *aggregate.Result) aggregate.ChannelSet {
			return res.Products
		})
		return
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		render.Render(w, r, apierrors.InvalidParameterError("month", errInvalidMonth))
		return
	}

	scope, apiErr := scopeParam(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}
	res := h.service.Result()
	if res == nil {
		render.Render(w, r, apierrors.ErrNoDataset)
		return
	}

	ranked := rankEntries(res.MonthlyProducts.ForScope(scope)[month])
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			render.Render(w, r, apierrors.InvalidParameterError("limit", errInvalidLimit))
			return
		}
		if limit < len(ranked) {
			ranked = ranked[:limit]
		}
	}
	render.JSON(w, r, map[string]any{"scope": scope, "month": month, "entries": ranked})
}

func (h *AnalyticsHandler) GetMonths(w http.ResponseWriter, r *http.Request) {
	scope, apiErr := scopeParam(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}
	res := h.service.Result()
	if res == nil {
		render.Render(w, r, apierrors.ErrNoDataset)
		return
	}

	// Months read better in calendar order than by revenue.
	ranked := rankEntries(res.Months.ForScope(scope))
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Key < ranked[j].Key })
	render.JSON(w, r, map[string]any{"scope": scope, "entries": ranked})
}

func (h *AnalyticsHandler) renderChannelRanking(w http.ResponseWriter, r *http.Request, pick func(*aggregate.Result) aggregate.ChannelSet) {
	scope, apiErr := scopeParam(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}
	res := h.service.Result()
	if res == nil {
		render.Render(w, r, apierrors.ErrNoDataset)
		return
	}
	render.JSON(w, r, map[string]any{
		"scope":   scope,
		"entries": rankEntries(pick(res).ForScope(scope)),
	})
}

// GetStores handles GET /api/analytics/rankings/stores. The web
// pseudo-store and logistics depots are excluded.
func (h *AnalyticsHandler) GetStores(w http.ResponseWriter, r *http.Request) {
	stores := h.service.PhysicalStores()
	if stores == nil {
		render.Render(w, r, apierrors.ErrNoDataset)
		return
	}
	render.JSON(w, r, map[string]any{"entries": rankEntries(stores)})
}

func (h *AnalyticsHandler) GetCities(w http.ResponseWriter, r *http.Request) {
	h.renderPlainRanking(w, r, func(res *aggregate.Result) aggregate.Accumulator {
		return res.Cities
	})
}

func (h *AnalyticsHandler) GetPostalCodes(w http.ResponseWriter, r *http.Request) {
	h.renderPlainRanking(w, r, func(res *aggregate.Result) aggregate.Accumulator {
		return res.PostalCodes
	})
}

func (h *AnalyticsHandler) renderPlainRanking(w http.ResponseWriter, r *http.Request, pick func(*aggregate.Result) aggregate.Accumulator) {
	res := h.service.Result()
	if res == nil {
		render.Render(w, r, apierrors.ErrNoDataset)
		return
	}
	render.JSON(w, r, map[string]any{"entries": rankEntries(pick(res))})
}

// GetCohorts handles GET /api/analytics/cohorts
func (h *AnalyticsHandler) GetCohorts(w http.ResponseWriter, r *http.Request) {
	cohorts := h.service.Cohorts()
	if cohorts == nil {
		render.Render(w, r, apierrors.ErrNoDataset)
		return
	}
	render.JSON(w, r, map[string]any{"cohorts": cohorts})
}

// GetCrossSell handles GET /api/analytics/cross-sell with optional
// scope and limit parameters.
func (h *AnalyticsHandler) GetCrossSell(w http.ResponseWriter, r *http.Request) {
	scope, apiErr := scopeParam(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}
	res := h.service.Result()
	if res == nil {
		render.Render(w, r, apierrors.ErrNoDataset)
		return
	}

	ranked := rankPairs(res.CrossSell.ForScope(scope))

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			render.Render(w, r, apierrors.InvalidParameterError("limit", errInvalidLimit))
			return
		}
		if limit < len(ranked) {
			ranked = ranked[:limit]
		}
	}

	render.JSON(w, r, map[string]any{"scope": scope, "pairs": ranked})
}

// GetRFM handles GET /api/analytics/rfm
func (h *AnalyticsHandler) GetRFM(w http.ResponseWriter, r *http.Request) {
	scope, apiErr := scopeParam(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}
	analysis := h.service.RFM(scope)
	if analysis == nil {
		render.Render(w, r, apierrors.ErrNoDataset)
		return
	}
	render.JSON(w, r, analysis)
}

// GetABC handles GET /api/analytics/abc with ?level= selecting the
// ranked dimension.
func (h *AnalyticsHandler) GetABC(w http.ResponseWriter, r *http.Request) {
	scope, apiErr := scopeParam(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}

	level := services.ABCLevel(r.URL.Query().Get("level"))
	switch level {
	case "":
		level = services.ABCFamilies
	case services.ABCFamilies, services.ABCSubFamilies, services.ABCProducts:
	default:
		render.Render(w, r, apierrors.InvalidParameterError("level", errInvalidLevel))
		return
	}

	items := h.service.ABC(level, scope)
	if items == nil {
		render.Render(w, r, apierrors.ErrNoDataset)
		return
	}
	render.JSON(w, r, map[string]any{"scope": scope, "level": level, "items": items})
}

// GetTrend handles GET /api/analytics/trend
func (h *AnalyticsHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	scope, apiErr := scopeParam(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}
	report := h.service.Trend(scope)
	if report == nil {
		render.Render(w, r, apierrors.ErrNoDataset)
		return
	}
	render.JSON(w, r, report)
}

// GetCatalog handles GET /api/analytics/catalog
func (h *AnalyticsHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := h.service.Catalog()
	if catalog == nil {
		render.Render(w, r, apierrors.NotFoundError("catalog"))
		return
	}
	render.JSON(w, r, map[string]any{"items": catalog})
}
