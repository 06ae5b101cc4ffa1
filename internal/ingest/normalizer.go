package ingest

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/starfeu1331-jpg/MagicSysteme/pkg/contracts/domain"
)

// Skip reasons returned by Normalize. They classify why a row was
// dropped; callers count them and keep going.
var (
	ErrMissingFamily = errors.New("missing family")
	ErrMissingAmount = errors.New("missing amount")
	ErrBadAmount     = errors.New("unparseable amount")
	ErrZeroAmount    = errors.New("zero amount")
)

// dateLayout is the DD/MM/YYYY form both exports use
const dateLayout = "02/01/2006"

// Normalizer maps raw rows of one detected format into canonical
// transaction records.
type Normalizer struct {
	format Format
}

// NewNormalizer creates a normalizer for the given batch format
func NewNormalizer(format Format) *Normalizer {
	return &Normalizer{format: format}
}

// Format returns the batch format this normalizer was built for
func (n *Normalizer) Format() Format {
	return n.format
}

// Normalize converts one raw row into a canonical record. A non-nil
// error is a skip signal (one of the Err* sentinels), never a batch
// failure.
func (n *Normalizer) Normalize(row map[string]string) (domain.TransactionRecord, error) {
	var rec domain.TransactionRecord

	var rawAmount, rawDate, loyalty string
	if n.format == FormatWeb {
		rec.Family = field(row, webColCategory)
		rec.Store = field(row, webColStore)
		rec.Card = field(row, webColCard)
		rec.PostalCode = field(row, webColPostal)
		rec.City = field(row, webColCity)
		rec.TicketID = field(row, webColTicket)
		rec.Product = field(row, webColProduct)
		rawAmount = field(row, webColAmount)
		rawDate = field(row, webColDate)
		// The web export has no loyalty caption; holding a card is the flag.
		if rec.Card != "" {
			loyalty = "Oui"
		}
	} else {
		rec.Family = field(row, storeColFamily)
		rec.SubFamily = field(row, storeColSubFamily)
		rec.Store = field(row, storeColStore)
		rec.Card = field(row, storeColCard)
		rec.PostalCode = field(row, storeColPostal)
		rec.City = field(row, storeColCity)
		rec.TicketID = field(row, storeColTicket)
		rec.Product = field(row, storeColProduct)
		rawAmount = field(row, storeColAmount)
		rawDate = field(row, storeColDate)
		loyalty = field(row, storeColLoyalty)
	}

	if rec.Family == "" {
		return domain.TransactionRecord{}, ErrMissingFamily
	}
	if rawAmount == "" {
		return domain.TransactionRecord{}, ErrMissingAmount
	}

	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return domain.TransactionRecord{}, ErrBadAmount
	}
	if amount == 0 {
		return domain.TransactionRecord{}, ErrZeroAmount
	}
	rec.Amount = amount

	if d, ok := ParseDate(rawDate); ok {
		rec.Date = d
	}
	rec.Loyalty = loyalty == "Oui"
	rec.Channel = domain.ChannelFor(rec.Store)

	return rec, nil
}

// field fetches a column value, folding the "-" placeholder both
// exports use for absent optional fields into the empty string.
func field(row map[string]string, name string) string {
	v := strings.TrimSpace(row[name])
	if v == "-" {
		return ""
	}
	return v
}

// ParseAmount parses a monetary amount as the exports write them:
// decimal comma, optional space or NBSP thousands separators.
// Negative amounts (credits, refunds) are valid.
func ParseAmount(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ' ', ' ':
			return -1
		}
		return r
	}, s)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0, ErrMissingAmount
	}
	return strconv.ParseFloat(cleaned, 64)
}

// ParseDate parses a DD/MM/YYYY date field. The second return value is
// false when the field is empty or malformed; such records stay in the
// batch with an unknown date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
