package aggregate

import (
	"time"

	"github.com/starfeu1331-jpg/MagicSysteme/pkg/contracts/domain"
)

// familySet is the set of distinct families touched by one ticket
type familySet map[string]struct{}

// ticketBuilder accumulates the line items of one logical purchase.
// Metadata fields keep the first recorded value for the ticket.
type ticketBuilder struct {
	id      string
	date    time.Time
	store   string
	channel domain.Channel
	city    string
	postal  string
	lines   []domain.LineItem
	total   float64
}

// customerBuilder accumulates one card's activity; tickets stay in
// first-seen order.
type customerBuilder struct {
	card   string
	city   string
	postal string
	total  float64
	order  []*ticketBuilder
	byID   map[string]*ticketBuilder
}

// Engine consumes normalized transaction records and produces a
// Result. All updates are additive; the engine is not safe for
// concurrent use; partition the input and Merge instead.
type Engine struct {
	rows int64

	families    ChannelSet
	subFamilies ChannelSet
	products    ChannelSet
	months      ChannelSet

	stores      Accumulator
	postalCodes Accumulator
	cities      Accumulator

	monthlyFamilies ScopedSeries
	monthlyProducts ScopedMonthly

	productInfo  map[string]ProductInfo
	cityByPostal map[string]string

	loyalty    LoyaltySplit
	webRevenue float64
	webVolume  int64
	webTickets map[string]struct{}

	crossGlobal map[string]familySet
	crossStore  map[string]familySet
	crossWeb    map[string]familySet

	customers map[string]*customerBuilder

	dateRange DateRange
}

// NewEngine allocates an empty aggregation engine
func NewEngine() *Engine {
	return &Engine{
		families:        newChannelSet(),
		subFamilies:     newChannelSet(),
		products:        newChannelSet(),
		months:          newChannelSet(),
		stores:          make(Accumulator),
		postalCodes:     make(Accumulator),
		cities:          make(Accumulator),
		monthlyFamilies: newScopedSeries(),
		monthlyProducts: newScopedMonthly(),
		productInfo:     make(map[string]ProductInfo),
		cityByPostal:    make(map[string]string),
		webTickets:      make(map[string]struct{}),
		crossGlobal:     make(map[string]familySet),
		crossStore:      make(map[string]familySet),
		crossWeb:        make(map[string]familySet),
		customers:       make(map[string]*customerBuilder),
	}
}

// Add folds one record into every accumulator it belongs to. The
// record is assumed normalized: family present, amount non-zero.
func (e *Engine) Add(rec domain.TransactionRecord) {
	e.rows++
	month := rec.YearMonth()

	e.families.Add(rec.Family, rec.Amount, rec.Channel)

	if rec.SubFamily != "" {
		e.subFamilies.Add(SubFamilyKey(rec.Family, rec.SubFamily), rec.Amount, rec.Channel)
	}

	e.loyalty.Global.add(rec.Amount, rec.Loyalty)
	if rec.Channel == domain.ChannelWeb {
		e.loyalty.Web.add(rec.Amount, rec.Loyalty)
	} else {
		e.loyalty.Store.add(rec.Amount, rec.Loyalty)
	}

	// Every store identifier ranks here, web sentinel and depot codes
	// included; presentation-side exclusions happen downstream.
	if rec.Store != "" {
		e.stores.Add(rec.Store, rec.Amount)
	}

	if rec.Channel == domain.ChannelWeb {
		e.webRevenue += rec.Amount
		e.webVolume++
		if rec.TicketID != "" {
			e.webTickets[rec.TicketID] = struct{}{}
		}
	}

	if rec.PostalCode != "" {
		e.postalCodes.Add(rec.PostalCode, rec.Amount)
		if _, ok := e.cityByPostal[rec.PostalCode]; !ok && rec.City != "" {
			e.cityByPostal[rec.PostalCode] = rec.City
		}
	}
	if rec.City != "" {
		e.cities.Add(rec.City, rec.Amount)
	}

	if rec.Product != "" {
		e.products.Add(rec.Product, rec.Amount, rec.Channel)
		if _, ok := e.productInfo[rec.Product]; !ok {
			e.productInfo[rec.Product] = ProductInfo{Family: rec.Family, SubFamily: rec.SubFamily}
		}
		if month != "" {
			e.monthlyProducts.add(month, rec.Product, rec.Amount, rec.Channel)
		}
	}

	if month != "" {
		e.months.Add(month, rec.Amount, rec.Channel)
		e.monthlyFamilies.add(month, rec.Family, rec.Amount, rec.Channel)
	}

	if rec.TicketID != "" {
		addFamily(e.crossGlobal, rec.TicketID, rec.Family)
		if rec.Channel == domain.ChannelWeb {
			addFamily(e.crossWeb, rec.TicketID, rec.Family)
		} else {
			addFamily(e.crossStore, rec.TicketID, rec.Family)
		}
	}

	if rec.HasCard() && rec.TicketID != "" {
		e.addToLedger(rec)
	}

	if rec.HasDate() {
		e.dateRange.observe(rec.Date)
	}
}

func addFamily(m map[string]familySet, ticketID, family string) {
	set := m[ticketID]
	if set == nil {
		set = make(familySet)
		m[ticketID] = set
	}
	set[family] = struct{}{}
}

func (e *Engine) addToLedger(rec domain.TransactionRecord) {
	c := e.customers[rec.Card]
	if c == nil {
		c = &customerBuilder{
			card: rec.Card,
			byID: make(map[string]*ticketBuilder),
		}
		e.customers[rec.Card] = c
	}
	if c.city == "" {
		c.city = rec.City
	}
	if c.postal == "" {
		c.postal = rec.PostalCode
	}

	t := c.byID[rec.TicketID]
	if t == nil {
		t = &ticketBuilder{
			id:      rec.TicketID,
			store:   rec.Store,
			channel: rec.Channel,
		}
		c.byID[rec.TicketID] = t
		c.order = append(c.order, t)
	}
	if t.date.IsZero() && rec.HasDate() {
		t.date = rec.Date
	}
	if t.city == "" {
		t.city = rec.City
	}
	if t.postal == "" {
		t.postal = rec.PostalCode
	}
	t.lines = append(t.lines, domain.LineItem{
		Product:   rec.Product,
		Family:    rec.Family,
		SubFamily: rec.SubFamily,
		Amount:    rec.Amount,
	})
	t.total += rec.Amount
	c.total += rec.Amount
}

// Result finalizes the accumulated state into a read-only Result. The
// builder maps are discarded; call it once per engine.
func (e *Engine) Result() *Result {
	res := &Result{
		Rows:            e.rows,
		Families:        e.families,
		SubFamilies:     e.subFamilies,
		Products:        e.products,
		Months:          e.months,
		Stores:          e.stores,
		PostalCodes:     e.postalCodes,
		Cities:          e.cities,
		MonthlyFamilies: e.monthlyFamilies,
		MonthlyProducts: e.monthlyProducts,
		ProductInfo:     e.productInfo,
		CityByPostal:    e.cityByPostal,
		Loyalty:         e.loyalty,
		Web: WebStats{
			Revenue:       e.webRevenue,
			Volume:        e.webVolume,
			UniqueTickets: len(e.webTickets),
		},
		CrossSell: CrossSellCounts{
			Global: pairCounts(e.crossGlobal),
			Store:  pairCounts(e.crossStore),
			Web:    pairCounts(e.crossWeb),
		},
		Customers: make(map[string]*domain.Customer, len(e.customers)),
		DateRange: e.dateRange,
	}

	for card, cb := range e.customers {
		cust := &domain.Customer{
			Card:       card,
			City:       cb.city,
			PostalCode: cb.postal,
			Total:      cb.total,
			Tickets:    make([]domain.Ticket, 0, len(cb.order)),
		}
		for _, tb := range cb.order {
			cust.Tickets = append(cust.Tickets, domain.Ticket{
				ID:         tb.id,
				Date:       tb.date,
				Store:      tb.store,
				Channel:    tb.channel,
				City:       tb.city,
				PostalCode: tb.postal,
				Lines:      tb.lines,
				Total:      tb.total,
			})
			if !tb.date.IsZero() && (cust.FirstPurchase.IsZero() || tb.date.Before(cust.FirstPurchase)) {
				cust.FirstPurchase = tb.date
			}
		}
		res.Customers[card] = cust
	}
	return res
}

// pairCounts converts per-ticket family sets into unordered pair
// counts. A ticket touching families {A,B,C} counts once for each of
// AB, AC and BC; tickets with fewer than two families contribute
// nothing.
func pairCounts(tickets map[string]familySet) PairCounts {
	counts := make(PairCounts)
	for _, set := range tickets {
		if len(set) < 2 {
			continue
		}
		families := make([]string, 0, len(set))
		for f := range set {
			families = append(families, f)
		}
		for i := 0; i < len(families); i++ {
			for j := i + 1; j < len(families); j++ {
				counts[NewPair(families[i], families[j])]++
			}
		}
	}
	return counts
}
