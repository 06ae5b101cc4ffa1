package http

import (
	"github.com/starfeu1331-jpg/MagicSysteme/internal/abc"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/aggregate"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/cohort"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/ingest"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/rfm"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/services"
	"github.com/starfeu1331-jpg/MagicSysteme/pkg/contracts/domain"
)

// AnalyticsProvider is the read surface the HTTP layer needs from the
// analytics service. All methods return nil before the first batch.
type AnalyticsProvider interface {
	Summarize() *services.Summary
	Result() *aggregate.Result
	PhysicalStores() aggregate.Accumulator
	Catalog() map[string]ingest.CatalogItem
	Cohorts() []cohort.Bucket
	RFM(scope domain.Scope) *rfm.Analysis
	ABC(level services.ABCLevel, scope domain.Scope) []abc.Item
	Trend(scope domain.Scope) *services.TrendReport
}
