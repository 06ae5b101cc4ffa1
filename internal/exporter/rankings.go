package exporter

import (
	"sort"
	"strings"

	"github.com/starfeu1331-jpg/MagicSysteme/internal/abc"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/aggregate"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/cohort"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/rfm"
	"github.com/starfeu1331-jpg/MagicSysteme/pkg/contracts/domain"
)

type rankedEntry struct {
	Key string
	aggregate.Entry
}

// rankedEntries sorts an accumulator descending by revenue; ties fall
// back to the key so exports are reproducible.
func rankedEntries(acc aggregate.Accumulator) []rankedEntry {
	entries := make([]rankedEntry, 0, len(acc))
	for key, e := range acc {
		entries = append(entries, rankedEntry{Key: key, Entry: *e})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Revenue != entries[j].Revenue {
			return entries[i].Revenue > entries[j].Revenue
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// ExportRanking writes one accumulator as a ranked list
func (w *CSVWriter) ExportRanking(name, keyHeader string, acc aggregate.Accumulator) error {
	entries := rankedEntries(acc)
	records := make([][]string, 0, len(entries))
	for i, e := range entries {
		records = append(records, []string{
			formatInt(int64(i + 1)),
			e.Key,
			formatFloat(e.Revenue),
			formatInt(e.Volume),
		})
	}
	return w.WriteSimpleCSV(name, []string{"Rang", keyHeader, "CA", "Volume"}, records)
}

// ExportStores writes the store ranking, leaving out the web sentinel
// and the depot prefixes that only exist for logistics.
func (w *CSVWriter) ExportStores(name string, stores aggregate.Accumulator, excludedPrefixes []string) error {
	filtered := make(aggregate.Accumulator, len(stores))
	for key, e := range stores {
		if key == domain.WebStoreID || hasAnyPrefix(key, excludedPrefixes) {
			continue
		}
		filtered[key] = e
	}
	return w.ExportRanking(name, "Magasin", filtered)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// ExportMonthlyProducts writes the best-selling products of each month,
// months ascending, products by revenue descending within a month. A
// positive topN caps how many products each month keeps.
func (w *CSVWriter) ExportMonthlyProducts(name string, monthly aggregate.MonthlyAccumulator, topN int) error {
	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)

	var records [][]string
	for _, m := range months {
		entries := rankedEntries(monthly[m])
		if topN > 0 && len(entries) > topN {
			entries = entries[:topN]
		}
		for i, e := range entries {
			records = append(records, []string{
				m,
				formatInt(int64(i + 1)),
				e.Key,
				formatFloat(e.Revenue),
				formatInt(e.Volume),
			})
		}
	}
	return w.WriteSimpleCSV(name, []string{"Mois", "Rang", "Produit", "CA", "Volume"}, records)
}

// ExportABC writes a classified Pareto list
func (w *CSVWriter) ExportABC(name string, items []abc.Item) error {
	records := make([][]string, 0, len(items))
	for _, it := range items {
		records = append(records, []string{
			formatInt(int64(it.Rank)),
			it.Key,
			formatFloat(it.Revenue),
			formatInt(it.Volume),
			formatPercent(it.CumulativeShare),
			it.Category,
		})
	}
	return w.WriteSimpleCSV(name,
		[]string{"Rang", "Entité", "CA", "Volume", "Part cumulée %", "Catégorie"},
		records)
}

// ExportRFM writes the scored customer list with segment labels
func (w *CSVWriter) ExportRFM(name string, a *rfm.Analysis) error {
	records := make([][]string, 0, len(a.Profiles))
	for _, p := range a.Profiles {
		records = append(records, []string{
			p.Card,
			p.City,
			formatInt(int64(p.Recency)),
			formatInt(int64(p.Frequency)),
			formatFloat(p.Monetary),
			formatInt(int64(p.Code)),
			string(p.Segment),
		})
	}
	return w.WriteSimpleCSV(name,
		[]string{"Carte", "Ville", "Récence (jours)", "Fréquence", "CA Total", "Score RFM", "Segment"},
		records)
}

// ExportCohorts writes the cohort table sorted by month
func (w *CSVWriter) ExportCohorts(name string, buckets []cohort.Bucket) error {
	records := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		records = append(records, []string{
			b.Month,
			formatInt(int64(b.Customers)),
			formatFloat(b.Revenue),
			formatInt(int64(b.Tickets)),
			formatFloat(b.RevenuePerCustomer()),
		})
	}
	return w.WriteSimpleCSV(name,
		[]string{"Cohorte", "Clients", "CA Total", "Achats", "CA / Client"},
		records)
}

// ExportCrossSell writes family pair counts descending
func (w *CSVWriter) ExportCrossSell(name string, counts aggregate.PairCounts) error {
	type pairCount struct {
		pair  aggregate.Pair
		count int
	}
	pairs := make([]pairCount, 0, len(counts))
	for p, c := range counts {
		pairs = append(pairs, pairCount{pair: p, count: c})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		if pairs[i].pair.A != pairs[j].pair.A {
			return pairs[i].pair.A < pairs[j].pair.A
		}
		return pairs[i].pair.B < pairs[j].pair.B
	})

	records := make([][]string, 0, len(pairs))
	for _, pc := range pairs {
		records = append(records, []string{pc.pair.A, pc.pair.B, formatInt(int64(pc.count))})
	}
	return w.WriteSimpleCSV(name, []string{"Famille 1", "Famille 2", "Tickets"}, records)
}
