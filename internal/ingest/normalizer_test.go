package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starfeu1331-jpg/MagicSysteme/pkg/contracts/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "decimal comma", input: "12,50", want: 12.50},
		{name: "plain integer", input: "45", want: 45},
		{name: "space thousands separator", input: "1 234,56", want: 1234.56},
		{name: "nbsp thousands separator", input: "1 234,56", want: 1234.56},
		{name: "narrow nbsp separator", input: "1 234,56", want: 1234.56},
		{name: "negative refund", input: "-50,00", want: -50},
		{name: "zero parses", input: "0", want: 0},
		{name: "dot decimal passes through", input: "99.90", want: 99.90},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "only separators", input: " ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("15/03/2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "N/A", "2024-03-15", "32/01/2024", "garbage"} {
		_, ok := ParseDate(bad)
		assert.False(t, ok, "input %q", bad)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    Format
	}{
		{
			name:    "web by categorie column",
			headers: []string{"categorie", "ca_ttc", "date"},
			want:    FormatWeb,
		},
		{
			name:    "web by magasin column",
			headers: []string{"magasin", "ca_ttc"},
			want:    FormatWeb,
		},
		{
			name:    "store by french captions",
			headers: []string{"Famille Produit", "Magasin", "CA Ventes TTC Période 1"},
			want:    FormatStore,
		},
		{
			name:    "empty headers default to store",
			headers: nil,
			want:    FormatStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.headers))
		})
	}
}

func storeRow() Row {
	return Row{
		"Famille Produit":         "Meubles",
		"S/Famille Produit":       "Canapés",
		"Magasin":                 "M12",
		"Client Fidélité":         "Oui",
		"N° Carte de fidélité":    "C001",
		"C.P Fidélité":            "75011",
		"Ville Fidélité":          "Paris",
		"CA Ventes TTC Période 1": "1 234,56",
		"N° Ticket":               "T-1",
		"N° Produit":              "P-9",
		"Date":                    "02/01/2024",
	}
}

func TestNormalizer_StoreRow(t *testing.T) {
	n := NewNormalizer(FormatStore)

	rec, err := n.Normalize(storeRow())
	require.NoError(t, err)

	assert.Equal(t, "Meubles", rec.Family)
	assert.Equal(t, "Canapés", rec.SubFamily)
	assert.Equal(t, "M12", rec.Store)
	assert.Equal(t, "C001", rec.Card)
	assert.Equal(t, "75011", rec.PostalCode)
	assert.Equal(t, "Paris", rec.City)
	assert.InDelta(t, 1234.56, rec.Amount, 1e-9)
	assert.Equal(t, "T-1", rec.TicketID)
	assert.Equal(t, "P-9", rec.Product)
	assert.True(t, rec.Loyalty)
	assert.Equal(t, domain.ChannelStore, rec.Channel)
	assert.Equal(t, "2024-01", rec.YearMonth())
}

func TestNormalizer_StoreRowSkips(t *testing.T) {
	n := NewNormalizer(FormatStore)

	tests := []struct {
		name   string
		mutate func(Row)
		want   error
	}{
		{
			name:   "missing family",
			mutate: func(r Row) { r["Famille Produit"] = "" },
			want:   ErrMissingFamily,
		},
		{
			name:   "dash family placeholder",
			mutate: func(r Row) { r["Famille Produit"] = "-" },
			want:   ErrMissingFamily,
		},
		{
			name:   "missing amount",
			mutate: func(r Row) { r["CA Ventes TTC Période 1"] = "" },
			want:   ErrMissingAmount,
		},
		{
			name:   "unparseable amount",
			mutate: func(r Row) { r["CA Ventes TTC Période 1"] = "n/a" },
			want:   ErrBadAmount,
		},
		{
			name:   "zero amount",
			mutate: func(r Row) { r["CA Ventes TTC Période 1"] = "0,00" },
			want:   ErrZeroAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := storeRow()
			tt.mutate(row)
			_, err := n.Normalize(row)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalizer_NegativeAmountKept(t *testing.T) {
	n := NewNormalizer(FormatStore)
	row := storeRow()
	row["CA Ventes TTC Période 1"] = "-89,90"

	rec, err := n.Normalize(row)
	require.NoError(t, err)
	assert.InDelta(t, -89.90, rec.Amount, 1e-9)
}

func TestNormalizer_BadDateKeepsRecord(t *testing.T) {
	n := NewNormalizer(FormatStore)
	row := storeRow()
	row["Date"] = "pas une date"

	rec, err := n.Normalize(row)
	require.NoError(t, err)
	assert.False(t, rec.HasDate())
	assert.Equal(t, "", rec.YearMonth())
}

func TestNormalizer_WebRow(t *testing.T) {
	n := NewNormalizer(FormatWeb)

	rec, err := n.Normalize(Row{
		"categorie":      "Déco",
		"magasin":        "WEB",
		"carte_fidelite": "C002",
		"cp":             "69001",
		"ville":          "Lyon",
		"ca_ttc":         "59,90",
		"numero_ticket":  "W-7",
		"code_article":   "SKU-1",
		"date":           "10/02/2024",
	})
	require.NoError(t, err)

	assert.Equal(t, "Déco", rec.Family)
	assert.Empty(t, rec.SubFamily)
	assert.Equal(t, domain.ChannelWeb, rec.Channel)
	assert.True(t, rec.Loyalty, "holding a card marks web rows loyal")
}

func TestNormalizer_WebAnonymous(t *testing.T) {
	n := NewNormalizer(FormatWeb)

	rec, err := n.Normalize(Row{
		"categorie": "Déco",
		"magasin":   "WEB",
		"ca_ttc":    "10,00",
	})
	require.NoError(t, err)
	assert.False(t, rec.Loyalty)
	assert.False(t, rec.HasCard())
}
