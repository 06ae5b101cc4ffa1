// Package cohort groups customers by the calendar month of their
// first purchase and aggregates per-cohort totals. It runs strictly
// after aggregation, over the finalized customer ledger.
package cohort

import (
	"sort"

	"github.com/starfeu1331-jpg/MagicSysteme/pkg/contracts/domain"
)

// Bucket is one first-purchase cohort ("YYYY-MM")
type Bucket struct {
	Month     string  `json:"month"`
	Customers int     `json:"customers"`
	Revenue   float64 `json:"revenue"`
	Tickets   int     `json:"tickets"`
}

// RevenuePerCustomer guards the zero-member case
func (b Bucket) RevenuePerCustomer() float64 {
	if b.Customers == 0 {
		return 0
	}
	return b.Revenue / float64(b.Customers)
}

// TicketsPerCustomer guards the zero-member case
func (b Bucket) TicketsPerCustomer() float64 {
	if b.Customers == 0 {
		return 0
	}
	return float64(b.Tickets) / float64(b.Customers)
}

// Build derives cohort buckets from the customer ledger. A customer
// joins the cohort of their earliest dated ticket; customers with no
// parseable ticket date are excluded from cohorts (they stay in the
// ledger for other analyses). Buckets come back sorted by month.
func Build(customers map[string]*domain.Customer) []Bucket {
	byMonth := make(map[string]*Bucket)
	for _, c := range customers {
		if c.FirstPurchase.IsZero() {
			continue
		}
		month := c.FirstPurchase.Format("2006-01")
		b := byMonth[month]
		if b == nil {
			b = &Bucket{Month: month}
			byMonth[month] = b
		}
		b.Customers++
		b.Revenue += c.Total
		b.Tickets += len(c.Tickets)
	}

	buckets := make([]Bucket, 0, len(byMonth))
	for _, b := range byMonth {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Month < buckets[j].Month })
	return buckets
}
