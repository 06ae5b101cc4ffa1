package domain

import (
	"time"
)

// WebStoreID is the sentinel store identifier marking e-commerce rows.
// Every other store identifier, including depot codes, counts as the
// physical-store channel.
const WebStoreID = "WEB"

// Channel identifies where a transaction originated
type Channel string

const (
	ChannelStore Channel = "store"
	ChannelWeb   Channel = "web"
)

// ChannelFor maps a store identifier to its sales channel
func ChannelFor(storeID string) Channel {
	if storeID == WebStoreID {
		return ChannelWeb
	}
	return ChannelStore
}

// TransactionRecord is the canonical transaction line after
// normalization. One record corresponds to one line item of a ticket;
// several records sharing a ticket identifier form one logical
// purchase.
type TransactionRecord struct {
	Family     string    `json:"family" validate:"required"`
	SubFamily  string    `json:"sub_family,omitempty"`
	Store      string    `json:"store"`
	Card       string    `json:"card,omitempty"` // empty = anonymous purchase
	PostalCode string    `json:"postal_code,omitempty"`
	City       string    `json:"city,omitempty"`
	Amount     float64   `json:"amount" validate:"required"` // negative = refund/credit
	TicketID   string    `json:"ticket_id"`
	Product    string    `json:"product,omitempty"`
	Date       time.Time `json:"date,omitempty"` // zero when unparseable
	Loyalty    bool      `json:"loyalty"`
	Channel    Channel   `json:"channel"`
}

// HasDate reports whether the transaction carries a parseable date
func (r TransactionRecord) HasDate() bool {
	return !r.Date.IsZero()
}

// HasCard reports whether the transaction is tied to a loyalty card
func (r TransactionRecord) HasCard() bool {
	return r.Card != ""
}

// YearMonth returns the sortable "YYYY-MM" bucket key for the
// transaction date, or "" when the date is unknown.
func (r TransactionRecord) YearMonth() string {
	if !r.HasDate() {
		return ""
	}
	return r.Date.Format("2006-01")
}
