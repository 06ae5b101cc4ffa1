package ingest

import (
	"io"
	"strconv"
)

// CatalogItem is one product of the web shop catalog export. The core
// never needs it to compute aggregates; it is carried as opaque
// enrichment data for downstream consumers.
type CatalogItem struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
}

// Web catalog export columns
const (
	catalogColCode     = "code_article"
	catalogColName     = "nom_article"
	catalogColCategory = "categorie"
	catalogColPrice    = "prix_ht"
	catalogColStock    = "stock"
)

// LoadCatalog reads the optional comma-delimited web catalog export.
// Rows without a product code are ignored; numeric fields default to
// zero when malformed.
func LoadCatalog(r io.Reader) (map[string]CatalogItem, error) {
	catalog := make(map[string]CatalogItem)
	_, _, err := ReadCSV(r, ',', func(row Row) error {
		code := field(row, catalogColCode)
		if code == "" {
			return nil
		}
		item := CatalogItem{
			Code:     code,
			Name:     field(row, catalogColName),
			Category: field(row, catalogColCategory),
		}
		if item.Name == "" {
			item.Name = code
		}
		if price, err := ParseAmount(field(row, catalogColPrice)); err == nil {
			item.Price = price
		}
		if stock, err := strconv.Atoi(field(row, catalogColStock)); err == nil {
			item.Stock = stock
		}
		catalog[code] = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}
