package rfm

import (
	"log/slog"
	"sort"
	"time"

	"github.com/starfeu1331-jpg/MagicSysteme/pkg/contracts/domain"
)

// RecencySentinel is the recency assigned to customers whose tickets
// all lack a parseable date. They stay in the population with a very
// old last purchase instead of being excluded.
const RecencySentinel = 9999

// Profile is one scored customer
type Profile struct {
	Card           string    `json:"card"`
	City           string    `json:"city,omitempty"`
	Recency        int       `json:"recency"`
	Frequency      int       `json:"frequency"`
	Monetary       float64   `json:"monetary"`
	DaysSinceFirst int       `json:"days_since_first"`
	FirstDate      time.Time `json:"first_date,omitempty"`
	R              int       `json:"r"`
	F              int       `json:"f"`
	M              int       `json:"m"`
	Code           int       `json:"rfm"` // R*100 + F*10 + M, display/sort only
	Segment        Segment   `json:"segment"`
}

// SegmentStat aggregates one segment of the scored population
type SegmentStat struct {
	Customers int     `json:"customers"`
	Revenue   float64 `json:"revenue"`
}

// Analysis is the scored population of one run under one scope
type Analysis struct {
	Scope               domain.Scope             `json:"scope"`
	Profiles            []Profile                `json:"profiles"`
	Segments            map[Segment]*SegmentStat `json:"segments"`
	RecencyThresholds   [4]float64               `json:"recency_thresholds"`
	FrequencyThresholds [4]float64               `json:"frequency_thresholds"`
	MonetaryThresholds  [4]float64               `json:"monetary_thresholds"`
	TotalRevenue        float64                  `json:"total_revenue"`
}

// Engine scores a customer ledger against a fixed reference time
type Engine struct {
	now    time.Time
	logger *slog.Logger
}

// NewEngine creates an RFM engine. The reference time pins recency so
// repeated runs over the same ledger stay identical.
func NewEngine(now time.Time, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{now: now, logger: logger.With(slog.String("component", "rfm"))}
}

// Analyze extracts per-customer metrics under the scope, derives the
// quintile thresholds from that population, scores everyone and
// classifies them. An empty qualifying population yields a well-formed
// all-zero analysis, never an error.
func (e *Engine) Analyze(customers map[string]*domain.Customer, scope domain.Scope) *Analysis {
	a := &Analysis{
		Scope:    scope,
		Segments: make(map[Segment]*SegmentStat, len(Segments)),
	}
	for _, s := range Segments {
		a.Segments[s] = &SegmentStat{}
	}

	for card, c := range customers {
		p, ok := e.profile(card, c, scope)
		if !ok {
			continue
		}
		a.Profiles = append(a.Profiles, p)
	}
	if len(a.Profiles) == 0 {
		return a
	}

	// Thresholds are relative to this population: recency ascending
	// (low is good), frequency and monetary descending (high is good).
	recency := make([]float64, len(a.Profiles))
	frequency := make([]float64, len(a.Profiles))
	monetary := make([]float64, len(a.Profiles))
	for i, p := range a.Profiles {
		recency[i] = float64(p.Recency)
		frequency[i] = float64(p.Frequency)
		monetary[i] = p.Monetary
	}
	sort.Float64s(recency)
	sort.Sort(sort.Reverse(sort.Float64Slice(frequency)))
	sort.Sort(sort.Reverse(sort.Float64Slice(monetary)))

	a.RecencyThresholds = Thresholds(recency)
	a.FrequencyThresholds = Thresholds(frequency)
	a.MonetaryThresholds = Thresholds(monetary)

	for i := range a.Profiles {
		p := &a.Profiles[i]
		p.R = Score(float64(p.Recency), a.RecencyThresholds, true)
		p.F = Score(float64(p.Frequency), a.FrequencyThresholds, false)
		p.M = Score(p.Monetary, a.MonetaryThresholds, false)
		p.Code = p.R*100 + p.F*10 + p.M
		p.Segment = Classify(p.R, p.F, p.M)

		stat := a.Segments[p.Segment]
		stat.Customers++
		stat.Revenue += p.Monetary
		a.TotalRevenue += p.Monetary
	}

	sort.Slice(a.Profiles, func(i, j int) bool { return a.Profiles[i].Card < a.Profiles[j].Card })

	e.logger.Debug("RFM analysis complete",
		slog.String("scope", string(scope)),
		slog.Int("population", len(a.Profiles)))
	return a
}

// profile extracts one customer's raw metrics under the scope. The
// second return value is false when the customer does not qualify: no
// ticket inside the scope, or a non-positive scoped total.
func (e *Engine) profile(card string, c *domain.Customer, scope domain.Scope) (Profile, bool) {
	var (
		last, first time.Time
		frequency   int
		monetary    float64
	)
	for _, t := range c.Tickets {
		if !scope.Matches(t.Channel) {
			continue
		}
		frequency++
		monetary += t.Total
		if t.HasDate() {
			if last.IsZero() || t.Date.After(last) {
				last = t.Date
			}
			if first.IsZero() || t.Date.Before(first) {
				first = t.Date
			}
		}
	}
	if frequency == 0 || monetary <= 0 {
		return Profile{}, false
	}

	p := Profile{
		Card:           card,
		City:           c.City,
		Recency:        RecencySentinel,
		Frequency:      frequency,
		Monetary:       monetary,
		DaysSinceFirst: RecencySentinel,
		FirstDate:      first,
	}
	if !last.IsZero() {
		p.Recency = daysBetween(last, e.now)
	}
	if !first.IsZero() {
		p.DaysSinceFirst = daysBetween(first, e.now)
	}
	return p, true
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
