package aggregate

import (
	"strings"
	"time"

	"github.com/starfeu1331-jpg/MagicSysteme/pkg/contracts/domain"
)

// Entry is the value of one accumulator cell
type Entry struct {
	Revenue float64 `json:"revenue"`
	Volume  int64   `json:"volume"`
}

// Accumulator maps a dimension key to its revenue and line volume
type Accumulator map[string]*Entry

// Add credits an amount to the key, counting one line
func (a Accumulator) Add(key string, amount float64) {
	e := a[key]
	if e == nil {
		e = &Entry{}
		a[key] = e
	}
	e.Revenue += amount
	e.Volume++
}

// Get returns the entry value for a key, zero when absent
func (a Accumulator) Get(key string) Entry {
	if e := a[key]; e != nil {
		return *e
	}
	return Entry{}
}

// TotalRevenue sums revenue across all keys
func (a Accumulator) TotalRevenue() float64 {
	var total float64
	for _, e := range a {
		total += e.Revenue
	}
	return total
}

func (a Accumulator) merge(o Accumulator) {
	for k, e := range o {
		dst := a[k]
		if dst == nil {
			dst = &Entry{}
			a[k] = dst
		}
		dst.Revenue += e.Revenue
		dst.Volume += e.Volume
	}
}

// ChannelSet keeps one global accumulator plus the two
// channel-restricted variants for the same dimension. Every record
// contributes to the global accumulator and to exactly one variant, so
// for any key global = store + web.
type ChannelSet struct {
	Global Accumulator `json:"global"`
	Store  Accumulator `json:"store"`
	Web    Accumulator `json:"web"`
}

func newChannelSet() ChannelSet {
	return ChannelSet{
		Global: make(Accumulator),
		Store:  make(Accumulator),
		Web:    make(Accumulator),
	}
}

// Add credits an amount under the key globally and in the channel's
// restricted accumulator.
func (s ChannelSet) Add(key string, amount float64, ch domain.Channel) {
	s.Global.Add(key, amount)
	if ch == domain.ChannelWeb {
		s.Web.Add(key, amount)
	} else {
		s.Store.Add(key, amount)
	}
}

// ForScope returns the accumulator restricted to the given scope
func (s ChannelSet) ForScope(scope domain.Scope) Accumulator {
	switch scope {
	case domain.ScopeStore:
		return s.Store
	case domain.ScopeWeb:
		return s.Web
	default:
		return s.Global
	}
}

func (s ChannelSet) merge(o ChannelSet) {
	s.Global.merge(o.Global)
	s.Store.merge(o.Store)
	s.Web.merge(o.Web)
}

// subFamilySep joins family and sub-family into one composite key
const subFamilySep = "|||"

// SubFamilyKey builds the composite accumulator key for a sub-family
func SubFamilyKey(family, subFamily string) string {
	return family + subFamilySep + subFamily
}

// SplitSubFamilyKey splits a composite sub-family key back into its
// family and sub-family parts.
func SplitSubFamilyKey(key string) (family, subFamily string) {
	parts := strings.SplitN(key, subFamilySep, 2)
	if len(parts) != 2 {
		return key, ""
	}
	return parts[0], parts[1]
}

// Series accumulates revenue per month per family ("YYYY-MM" keys)
type Series map[string]map[string]float64

func (s Series) add(month, family string, amount float64) {
	byFamily := s[month]
	if byFamily == nil {
		byFamily = make(map[string]float64)
		s[month] = byFamily
	}
	byFamily[family] += amount
}

func (s Series) merge(o Series) {
	for month, byFamily := range o {
		for family, amount := range byFamily {
			s.add(month, family, amount)
		}
	}
}

// MonthlyTotals sums each month across families, useful as trend input
func (s Series) MonthlyTotals() map[string]float64 {
	totals := make(map[string]float64, len(s))
	for month, byFamily := range s {
		for _, amount := range byFamily {
			totals[month] += amount
		}
	}
	return totals
}

// ScopedSeries keeps the global series next to its channel variants
type ScopedSeries struct {
	Global Series `json:"global"`
	Store  Series `json:"store"`
	Web    Series `json:"web"`
}

func newScopedSeries() ScopedSeries {
	return ScopedSeries{Global: make(Series), Store: make(Series), Web: make(Series)}
}

func (s ScopedSeries) add(month, family string, amount float64, ch domain.Channel) {
	s.Global.add(month, family, amount)
	if ch == domain.ChannelWeb {
		s.Web.add(month, family, amount)
	} else {
		s.Store.add(month, family, amount)
	}
}

// ForScope returns the series restricted to the given scope
func (s ScopedSeries) ForScope(scope domain.Scope) Series {
	switch scope {
	case domain.ScopeStore:
		return s.Store
	case domain.ScopeWeb:
		return s.Web
	default:
		return s.Global
	}
}

func (s ScopedSeries) merge(o ScopedSeries) {
	s.Global.merge(o.Global)
	s.Store.merge(o.Store)
	s.Web.merge(o.Web)
}

// MonthlyAccumulator keys an accumulator per month ("YYYY-MM")
type MonthlyAccumulator map[string]Accumulator

func (m MonthlyAccumulator) add(month, key string, amount float64) {
	acc := m[month]
	if acc == nil {
		acc = make(Accumulator)
		m[month] = acc
	}
	acc.Add(key, amount)
}

func (m MonthlyAccumulator) merge(o MonthlyAccumulator) {
	for month, acc := range o {
		dst := m[month]
		if dst == nil {
			dst = make(Accumulator)
			m[month] = dst
		}
		dst.merge(acc)
	}
}

// ScopedMonthly keeps per-month product accumulators per channel scope
type ScopedMonthly struct {
	Global MonthlyAccumulator `json:"global"`
	Store  MonthlyAccumulator `json:"store"`
	Web    MonthlyAccumulator `json:"web"`
}

func newScopedMonthly() ScopedMonthly {
	return ScopedMonthly{
		Global: make(MonthlyAccumulator),
		Store:  make(MonthlyAccumulator),
		Web:    make(MonthlyAccumulator),
	}
}

func (s ScopedMonthly) add(month, key string, amount float64, ch domain.Channel) {
	s.Global.add(month, key, amount)
	if ch == domain.ChannelWeb {
		s.Web.add(month, key, amount)
	} else {
		s.Store.add(month, key, amount)
	}
}

// ForScope returns the monthly accumulators restricted to the scope
func (s ScopedMonthly) ForScope(scope domain.Scope) MonthlyAccumulator {
	switch scope {
	case domain.ScopeStore:
		return s.Store
	case domain.ScopeWeb:
		return s.Web
	default:
		return s.Global
	}
}

func (s ScopedMonthly) merge(o ScopedMonthly) {
	s.Global.merge(o.Global)
	s.Store.merge(o.Store)
	s.Web.merge(o.Web)
}

// ProductInfo is the first-seen classification of a product code
type ProductInfo struct {
	Family    string `json:"family"`
	SubFamily string `json:"sub_family,omitempty"`
}

// LoyaltyCounts splits line volume and revenue by card ownership
type LoyaltyCounts struct {
	WithCard         int64   `json:"with_card"`
	WithCardRevenue  float64 `json:"with_card_revenue"`
	Anonymous        int64   `json:"anonymous"`
	AnonymousRevenue float64 `json:"anonymous_revenue"`
}

func (c *LoyaltyCounts) add(amount float64, loyal bool) {
	if loyal {
		c.WithCard++
		c.WithCardRevenue += amount
	} else {
		c.Anonymous++
		c.AnonymousRevenue += amount
	}
}

func (c *LoyaltyCounts) merge(o LoyaltyCounts) {
	c.WithCard += o.WithCard
	c.WithCardRevenue += o.WithCardRevenue
	c.Anonymous += o.Anonymous
	c.AnonymousRevenue += o.AnonymousRevenue
}

// LoyaltySplit keeps the loyalty split globally and per channel
type LoyaltySplit struct {
	Global LoyaltyCounts `json:"global"`
	Store  LoyaltyCounts `json:"store"`
	Web    LoyaltyCounts `json:"web"`
}

// WebStats summarizes the web channel of the batch
type WebStats struct {
	Revenue       float64 `json:"revenue"`
	Volume        int64   `json:"volume"`
	UniqueTickets int     `json:"unique_tickets"`
}

// Pair is a canonicalized unordered family pair (A sorts before B)
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NewPair canonicalizes two families into an unordered pair key
func NewPair(x, y string) Pair {
	if y < x {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

// PairCounts counts distinct tickets containing both families of a pair
type PairCounts map[Pair]int

// CrossSellCounts keeps pair counts globally and per channel
type CrossSellCounts struct {
	Global PairCounts `json:"global"`
	Store  PairCounts `json:"store"`
	Web    PairCounts `json:"web"`
}

// ForScope returns the pair counts restricted to the scope
func (c CrossSellCounts) ForScope(scope domain.Scope) PairCounts {
	switch scope {
	case domain.ScopeStore:
		return c.Store
	case domain.ScopeWeb:
		return c.Web
	default:
		return c.Global
	}
}

// DateRange is the span of parseable transaction dates in the batch
type DateRange struct {
	Min time.Time `json:"min,omitempty"`
	Max time.Time `json:"max,omitempty"`
}

func (d *DateRange) observe(t time.Time) {
	if d.Min.IsZero() || t.Before(d.Min) {
		d.Min = t
	}
	if t.After(d.Max) {
		d.Max = t
	}
}

func (d *DateRange) merge(o DateRange) {
	if !o.Min.IsZero() {
		d.observe(o.Min)
	}
	if !o.Max.IsZero() {
		d.observe(o.Max)
	}
}

// Result is the finalized, read-only output of one aggregation pass
type Result struct {
	Rows int64 `json:"rows"`

	Families    ChannelSet `json:"families"`
	SubFamilies ChannelSet `json:"sub_families"`
	Products    ChannelSet `json:"products"`
	Months      ChannelSet `json:"months"`

	Stores      Accumulator `json:"stores"`
	PostalCodes Accumulator `json:"postal_codes"`
	Cities      Accumulator `json:"cities"`

	MonthlyFamilies ScopedSeries  `json:"monthly_families"`
	MonthlyProducts ScopedMonthly `json:"monthly_products"`

	ProductInfo  map[string]ProductInfo `json:"product_info"`
	CityByPostal map[string]string      `json:"city_by_postal"`

	Loyalty   LoyaltySplit    `json:"loyalty"`
	Web       WebStats        `json:"web"`
	CrossSell CrossSellCounts `json:"cross_sell"`

	Customers map[string]*domain.Customer `json:"customers"`
	DateRange DateRange                   `json:"date_range"`
}
