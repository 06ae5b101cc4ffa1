package cohort

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starfeu1331-jpg/MagicSysteme/pkg/contracts/domain"
)

func cust(card string, first time.Time, total float64, tickets int) *domain.Customer {
	c := &domain.Customer{Card: card, Total: total, FirstPurchase: first}
	for i := 0; i < tickets; i++ {
		c.Tickets = append(c.Tickets, domain.Ticket{ID: card, Date: first})
	}
	return c
}

func TestBuild(t *testing.T) {
	jan := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, time.February, 3, 0, 0, 0, 0, time.UTC)

	customers := map[string]*domain.Customer{
		"A": cust("A", jan, 100, 2),
		"B": cust("B", jan, 50, 1),
		"C": cust("C", feb, 200, 4),
		"D": cust("D", time.Time{}, 999, 3), // undated, excluded
	}

	buckets := Build(customers)
	require.Len(t, buckets, 2)

	assert.Equal(t, "2024-01", buckets[0].Month)
	assert.Equal(t, 2, buckets[0].Customers)
	assert.InDelta(t, 150, buckets[0].Revenue, 1e-9)
	assert.Equal(t, 3, buckets[0].Tickets)
	assert.InDelta(t, 75, buckets[0].RevenuePerCustomer(), 1e-9)
	assert.InDelta(t, 1.5, buckets[0].TicketsPerCustomer(), 1e-9)

	assert.Equal(t, "2024-02", buckets[1].Month)
	assert.Equal(t, 1, buckets[1].Customers)
}

func TestBuild_SortedByMonth(t *testing.T) {
	customers := map[string]*domain.Customer{
		"LATE":  cust("LATE", time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), 1, 1),
		"EARLY": cust("EARLY", time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC), 1, 1),
		"MID":   cust("MID", time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), 1, 1),
	}

	buckets := Build(customers)
	require.Len(t, buckets, 3)
	assert.Equal(t, "2023-03", buckets[0].Month)
	assert.Equal(t, "2024-06", buckets[1].Month)
	assert.Equal(t, "2024-12", buckets[2].Month)
}

func TestBuild_Empty(t *testing.T) {
	assert.Empty(t, Build(nil))
}

func TestBucket_ZeroGuards(t *testing.T) {
	var b Bucket
	assert.Zero(t, b.RevenuePerCustomer())
	assert.Zero(t, b.TicketsPerCustomer())
}
