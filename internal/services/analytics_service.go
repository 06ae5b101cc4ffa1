// Package services wires the ingestion pipeline together and serves
// the derived analytics views to the transport layer.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/starfeu1331-jpg/MagicSysteme/internal/abc"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/aggregate"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/cohort"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/config"
	apierrors "github.com/starfeu1331-jpg/MagicSysteme/internal/errors"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/infrastructure"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/ingest"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/rfm"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/trend"
	"github.com/starfeu1331-jpg/MagicSysteme/pkg/contracts/domain"
)

// BatchSpec names the input files of one import session. Store files
// are `;`-delimited, web files `,`-delimited; the catalog file is
// optional.
type BatchSpec struct {
	StoreFiles  []string
	WebFiles    []string
	CatalogFile string
}

// AnalyticsService owns the state of one import session: the
// aggregation result plus everything derived from it. Loading a new
// batch replaces the previous state entirely; there is no
// incremental update across imports.
type AnalyticsService struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *infrastructure.Metrics
	tracer  trace.Tracer
	cfg     config.IngestConfig

	result   *aggregate.Result
	skips    apierrors.SkipStats
	catalog  map[string]ingest.CatalogItem
	refNow   time.Time
	loadedAt time.Time
}

// NewAnalyticsService creates the service. Metrics may be nil (tests).
func NewAnalyticsService(cfg config.IngestConfig, logger *slog.Logger, metrics *infrastructure.Metrics) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		logger:  logger.With(slog.String("component", "analytics_service")),
		metrics: metrics,
		tracer:  infrastructure.Tracer(),
		cfg:     cfg,
	}
}

// LoadBatch ingests the batch files, runs the aggregation pass and
// swaps the service state. Progress, when non-nil, is called with the
// running count of normalized rows.
func (s *AnalyticsService) LoadBatch(ctx context.Context, spec BatchSpec, progress func(rows int)) error {
	ctx, span := s.tracer.Start(ctx, "pipeline.load_batch")
	defer span.End()

	var (
		records []domain.TransactionRecord
		skips   apierrors.SkipStats
	)

	readFile := func(path string, slot ingest.Format) error {
		_, rspan := s.tracer.Start(ctx, "pipeline.read",
			trace.WithAttributes(attribute.String("file", path)))
		defer rspan.End()

		var rows []ingest.Row
		headers, count, err := ingest.ReadFile(path, slot.Delimiter(), func(row ingest.Row) error {
			rows = append(rows, row)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		// The schema is decided once per file from its header row.
		format := ingest.DetectFormat(headers)
		normalizer := ingest.NewNormalizer(format)
		for _, row := range rows {
			rec, err := normalizer.Normalize(row)
			if err != nil {
				reason := skips.Count(err)
				if s.metrics != nil {
					s.metrics.RowsSkipped.WithLabelValues(reason).Inc()
				}
				continue
			}
			records = append(records, rec)
			if s.metrics != nil {
				s.metrics.RowsIngested.Inc()
			}
			if progress != nil {
				progress(len(records))
			}
		}

		s.logger.Info("File ingested",
			slog.String("file", path),
			slog.String("format", format.String()),
			slog.Int("rows", count))
		return nil
	}

	for _, path := range spec.StoreFiles {
		if err := readFile(path, ingest.FormatStore); err != nil {
			return err
		}
	}
	for _, path := range spec.WebFiles {
		if err := readFile(path, ingest.FormatWeb); err != nil {
			return err
		}
	}

	var catalog map[string]ingest.CatalogItem
	if spec.CatalogFile != "" {
		f, err := os.Open(spec.CatalogFile)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		catalog, err = ingest.LoadCatalog(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		s.logger.Info("Catalog loaded", slog.Int("products", len(catalog)))
	}

	_, aspan := s.tracer.Start(ctx, "pipeline.aggregate",
		trace.WithAttributes(attribute.Int("records", len(records))))
	result, err := aggregate.AggregateParallel(ctx, records, s.cfg.Workers)
	aspan.End()
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}

	refNow := time.Now()
	if s.cfg.RFMReference != "" {
		if d, ok := ingest.ParseDate(s.cfg.RFMReference); ok {
			refNow = d
		} else {
			s.logger.Warn("Ignoring unparseable RFM reference date",
				slog.String("value", s.cfg.RFMReference))
		}
	}

	s.mu.Lock()
	s.result = result
	s.skips = skips
	s.catalog = catalog
	s.refNow = refNow
	s.loadedAt = time.Now()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.BatchesRun.Inc()
	}
	s.logger.Info("Batch loaded",
		slog.Int64("rows", result.Rows),
		slog.Int64("skipped", skips.Total()),
		slog.Int("customers", len(result.Customers)))
	return nil
}

// Result returns the current aggregation result, or nil before the
// first batch.
func (s *AnalyticsService) Result() *aggregate.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// PhysicalStores returns the store ranking without the web pseudo-store
// and without logistics depots.
func (s *AnalyticsService) PhysicalStores() aggregate.Accumulator {
	res := s.Result()
	if res == nil {
		return nil
	}
	filtered := make(aggregate.Accumulator, len(res.Stores))
	for key, e := range res.Stores {
		if key == domain.WebStoreID || hasAnyPrefix(key, s.cfg.ExcludedStorePrefixes) {
			continue
		}
		filtered[key] = e
	}
	return filtered
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Skips returns the normalization skip counters of the current batch
func (s *AnalyticsService) Skips() apierrors.SkipStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skips
}

// Catalog returns the web catalog of the current batch, possibly nil
func (s *AnalyticsService) Catalog() map[string]ingest.CatalogItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// ReferenceTime returns the pinned "now" used for recency
func (s *AnalyticsService) ReferenceTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refNow
}

// Cohorts derives the first-purchase cohort table
func (s *AnalyticsService) Cohorts() []cohort.Bucket {
	res := s.Result()
	if res == nil {
		return nil
	}
	return cohort.Build(res.Customers)
}

// RFM scores the customer ledger under the given channel scope
func (s *AnalyticsService) RFM(scope domain.Scope) *rfm.Analysis {
	res := s.Result()
	if res == nil {
		return nil
	}
	engine := rfm.NewEngine(s.ReferenceTime(), s.logger)
	return engine.Analyze(res.Customers, scope)
}

// ABCLevel selects which dimension an ABC classification ranks
type ABCLevel string

const (
	ABCFamilies    ABCLevel = "families"
	ABCSubFamilies ABCLevel = "sub_families"
	ABCProducts    ABCLevel = "products"
)

// ABC ranks one dimension under one scope into Pareto categories
func (s *AnalyticsService) ABC(level ABCLevel, scope domain.Scope) []abc.Item {
	res := s.Result()
	if res == nil {
		return nil
	}
	var set aggregate.ChannelSet
	switch level {
	case ABCSubFamilies:
		set = res.SubFamilies
	case ABCProducts:
		set = res.Products
	default:
		set = res.Families
	}
	return abc.Classify(set.ForScope(scope))
}

// TrendReport bundles the trend estimator outputs for one scope
type TrendReport struct {
	Scope     domain.Scope          `json:"scope"`
	Series    []trend.MAPoint       `json:"series"`
	Forecast  []trend.ForecastPoint `json:"forecast"`
	Anomalies []trend.Anomaly       `json:"anomalies"`
}

// Trend runs the moving-average / forecast / anomaly estimation over
// the monthly revenue series of the scope.
func (s *AnalyticsService) Trend(scope domain.Scope) *TrendReport {
	res := s.Result()
	if res == nil {
		return nil
	}
	series := trend.SeriesFromTotals(res.MonthlyFamilies.ForScope(scope).MonthlyTotals())
	return &TrendReport{
		Scope:     scope,
		Series:    trend.MovingAverage(series, s.cfg.MovingAverageWindow),
		Forecast:  trend.Forecast(series, s.cfg.ForecastPeriods),
		Anomalies: trend.DetectAnomalies(series, s.cfg.MovingAverageWindow, s.cfg.AnomalyThreshold),
	}
}

// Summary is the headline view of the current batch
type Summary struct {
	Rows          int64                  `json:"rows"`
	Skipped       apierrors.SkipStats    `json:"skipped"`
	Customers     int                    `json:"customers"`
	Families      int                    `json:"families"`
	TotalRevenue  float64                `json:"total_revenue"`
	Loyalty       aggregate.LoyaltySplit `json:"loyalty"`
	Web           aggregate.WebStats     `json:"web"`
	DateRange     aggregate.DateRange    `json:"date_range"`
	LoadedAt      time.Time              `json:"loaded_at"`
	ReferenceTime time.Time              `json:"reference_time"`
}

// Summarize builds the headline view, or nil before the first batch
func (s *AnalyticsService) Summarize() *Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil
	}
	return &Summary{
		Rows:          s.result.Rows,
		Skipped:       s.skips,
		Customers:     len(s.result.Customers),
		Families:      len(s.result.Families.Global),
		TotalRevenue:  s.result.Families.Global.TotalRevenue(),
		Loyalty:       s.result.Loyalty,
		Web:           s.result.Web,
		DateRange:     s.result.DateRange,
		LoadedAt:      s.loadedAt,
		ReferenceTime: s.refNow,
	}
}
