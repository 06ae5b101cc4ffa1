package ingest

// Format identifies which of the two known export schemas a batch uses
type Format int

const (
	// FormatStore is the store chain export: `;`-delimited, one row per
	// ticket line, French column captions.
	FormatStore Format = iota
	// FormatWeb is the web shop export: `,`-delimited, snake_case
	// columns, no sub-family level.
	FormatWeb
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatStore:
		return "store"
	case FormatWeb:
		return "web"
	default:
		return "unknown"
	}
}

// Store export column captions
const (
	storeColFamily    = "Famille Produit"
	storeColSubFamily = "S/Famille Produit"
	storeColStore     = "Magasin"
	storeColLoyalty   = "Client Fidélité"
	storeColCard      = "N° Carte de fidélité"
	storeColPostal    = "C.P Fidélité"
	storeColCity      = "Ville Fidélité"
	storeColAmount    = "CA Ventes TTC Période 1"
	storeColTicket    = "N° Ticket"
	storeColProduct   = "N° Produit"
	storeColDate      = "Date"
)

// Web export column names
const (
	webColCategory = "categorie"
	webColStore    = "magasin"
	webColCard     = "carte_fidelite"
	webColPostal   = "cp"
	webColCity     = "ville"
	webColAmount   = "ca_ttc"
	webColTicket   = "numero_ticket"
	webColProduct  = "code_article"
	webColDate     = "date"
)

// DetectFormat decides which schema a batch uses by sniffing its
// header row. The web export is recognized by its marker columns
// ("categorie" / "magasin" in lowercase); anything else is treated as
// the store export. The decision is made once per batch.
func DetectFormat(headers []string) Format {
	for _, h := range headers {
		if h == webColCategory || h == webColStore {
			return FormatWeb
		}
	}
	return FormatStore
}

// Delimiter returns the field separator used by the format
func (f Format) Delimiter() rune {
	if f == FormatWeb {
		return ','
	}
	return ';'
}
