package domain

import (
	"time"
)

// LineItem is one product line inside a ticket
type LineItem struct {
	Product   string  `json:"product,omitempty"`
	Family    string  `json:"family"`
	SubFamily string  `json:"sub_family,omitempty"`
	Amount    float64 `json:"amount"`
}

// Ticket is one logical purchase: every line item sharing the same
// ticket identifier for the same customer. Store, city and postal code
// carry the first-seen values for that ticket.
type Ticket struct {
	ID         string     `json:"id"`
	Date       time.Time  `json:"date,omitempty"`
	Store      string     `json:"store"`
	Channel    Channel    `json:"channel"`
	City       string     `json:"city,omitempty"`
	PostalCode string     `json:"postal_code,omitempty"`
	Lines      []LineItem `json:"lines"`
	Total      float64    `json:"total"`
}

// HasDate reports whether the ticket carries a parseable date
func (t Ticket) HasDate() bool {
	return !t.Date.IsZero()
}

// Families returns the distinct product families touched by the
// ticket, in first-seen order.
func (t Ticket) Families() []string {
	seen := make(map[string]struct{}, len(t.Lines))
	var out []string
	for _, l := range t.Lines {
		if _, ok := seen[l.Family]; ok {
			continue
		}
		seen[l.Family] = struct{}{}
		out = append(out, l.Family)
	}
	return out
}

// Customer aggregates all activity tied to one loyalty card over the
// batch. Anonymous purchases never produce a Customer.
type Customer struct {
	Card          string    `json:"card"`
	City          string    `json:"city,omitempty"`
	PostalCode    string    `json:"postal_code,omitempty"`
	Tickets       []Ticket  `json:"tickets"`
	Total         float64   `json:"total"`
	FirstPurchase time.Time `json:"first_purchase,omitempty"` // zero when no ticket has a date
}

// LastPurchase returns the most recent dated ticket, or the zero time
// when no ticket carries a date.
func (c *Customer) LastPurchase() time.Time {
	var last time.Time
	for _, t := range c.Tickets {
		if t.HasDate() && t.Date.After(last) {
			last = t.Date
		}
	}
	return last
}
