package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starfeu1331-jpg/MagicSysteme/internal/config"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/shared/testutil"
	"github.com/starfeu1331-jpg/MagicSysteme/pkg/contracts/domain"
)

const storeHeader = "Famille Produit;S/Famille Produit;Magasin;Client Fidélité;N° Carte de fidélité;C.P Fidélité;Ville Fidélité;CA Ventes TTC Période 1;N° Ticket;N° Produit;Date"

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fixtureBatch(t *testing.T) BatchSpec {
	t.Helper()
	dir := t.TempDir()

	store := writeFixture(t, dir, "ventes_mag.csv",
		"\uFEFF"+storeHeader+"\n"+
			"Meubles;Canapés;M01;Oui;C1;75001;Paris;150,00;T1;P100;05/01/2024\n"+
			"Déco;Vases;M41-DEPOT;Non;-;-;-;1 250,50;T2;P200;10/01/2024\n"+
			";Vases;M01;Non;-;-;-;10,00;T3;P300;10/01/2024\n"+
			"Déco;Vases;M01;Non;-;-;-;abc;T4;P300;10/01/2024\n"+
			"Déco;Vases;M01;Non;-;-;-;0;T5;P300;10/01/2024\n")

	web := writeFixture(t, dir, "ventes_web.csv",
		"categorie,magasin,carte_fidelite,cp,ville,ca_ttc,numero_ticket,code_article,date\n"+
			"Luminaires,WEB,C1,75001,Paris,\"99,90\",WT1,A100,15/01/2024\n")

	catalog := writeFixture(t, dir, "catalogue.csv",
		"code_article,nom_article,categorie,prix_ht,stock\n"+
			"A100,Lampe sur pied,Luminaires,\"83,25\",12\n")

	return BatchSpec{
		StoreFiles:  []string{store},
		WebFiles:    []string{web},
		CatalogFile: catalog,
	}
}

func newTestService(t *testing.T, cfg config.IngestConfig) *AnalyticsService {
	t.Helper()
	logger, _ := testutil.TestLogger(t)
	return NewAnalyticsService(cfg, logger, nil)
}

func TestAnalyticsService_BeforeFirstBatch(t *testing.T) {
	svc := newTestService(t, config.IngestConfig{})

	assert.Nil(t, svc.Result())
	assert.Nil(t, svc.Summarize())
	assert.Nil(t, svc.PhysicalStores())
	assert.Nil(t, svc.Cohorts())
	assert.Nil(t, svc.RFM(domain.ScopeAll))
	assert.Nil(t, svc.ABC(ABCFamilies, domain.ScopeAll))
	assert.Nil(t, svc.Trend(domain.ScopeAll))
}

func TestAnalyticsService_LoadBatch(t *testing.T) {
	svc := newTestService(t, config.IngestConfig{
		RFMReference:        "01/06/2024",
		MovingAverageWindow: 3,
		ForecastPeriods:     3,
		AnomalyThreshold:    0.20,
	})

	var lastProgress int
	err := svc.LoadBatch(context.Background(), fixtureBatch(t), func(rows int) {
		lastProgress = rows
	})
	require.NoError(t, err)
	assert.Equal(t, 3, lastProgress)

	summary := svc.Summarize()
	require.NotNil(t, summary)
	assert.Equal(t, int64(3), summary.Rows)
	assert.Equal(t, int64(3), summary.Skipped.Total())
	assert.InDelta(t, 1500.40, summary.TotalRevenue, 0.001)
	assert.Equal(t, 1, summary.Customers) // only C1 holds a card
	assert.Equal(t, 3, summary.Families)

	skips := svc.Skips()
	assert.Equal(t, int64(1), skips.MissingFamily)
	assert.Equal(t, int64(1), skips.BadAmount)
	assert.Equal(t, int64(1), skips.ZeroAmount)

	ref := svc.ReferenceTime()
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), ref)

	catalog := svc.Catalog()
	require.Contains(t, catalog, "A100")
	assert.Equal(t, "Lampe sur pied", catalog["A100"].Name)
	assert.InDelta(t, 83.25, catalog["A100"].Price, 0.001)
	assert.Equal(t, 12, catalog["A100"].Stock)
}

func TestAnalyticsService_PhysicalStores(t *testing.T) {
	svc := newTestService(t, config.IngestConfig{
		ExcludedStorePrefixes: []string{"M41", "M42"},
	})
	require.NoError(t, svc.LoadBatch(context.Background(), fixtureBatch(t), nil))

	stores := svc.PhysicalStores()
	assert.Contains(t, stores, "M01")
	assert.NotContains(t, stores, "M41-DEPOT")
	assert.NotContains(t, stores, domain.WebStoreID)
}

func TestAnalyticsService_DerivedViews(t *testing.T) {
	svc := newTestService(t, config.IngestConfig{
		RFMReference:        "01/06/2024",
		MovingAverageWindow: 3,
		AnomalyThreshold:    0.20,
	})
	require.NoError(t, svc.LoadBatch(context.Background(), fixtureBatch(t), nil))

	analysis := svc.RFM(domain.ScopeAll)
	require.NotNil(t, analysis)
	assert.Len(t, analysis.Profiles, 1)

	items := svc.ABC(ABCFamilies, domain.ScopeStore)
	require.NotEmpty(t, items)
	assert.Equal(t, "Déco", items[0].Key) // largest store-channel family

	cohorts := svc.Cohorts()
	require.Len(t, cohorts, 1)
	assert.Equal(t, "2024-01", cohorts[0].Month)

	report := svc.Trend(domain.ScopeAll)
	require.NotNil(t, report)
	assert.Equal(t, domain.ScopeAll, report.Scope)
	require.Len(t, report.Series, 1)
	assert.Equal(t, "2024-01", report.Series[0].Month)
}

func TestAnalyticsService_LoadBatchReplacesState(t *testing.T) {
	svc := newTestService(t, config.IngestConfig{})
	require.NoError(t, svc.LoadBatch(context.Background(), fixtureBatch(t), nil))

	dir := t.TempDir()
	store := writeFixture(t, dir, "second.csv",
		storeHeader+"\n"+
			"Jardin;Mobilier;M02;Non;-;-;-;42,00;T9;P900;01/03/2024\n")

	require.NoError(t, svc.LoadBatch(context.Background(), BatchSpec{StoreFiles: []string{store}}, nil))

	summary := svc.Summarize()
	require.NotNil(t, summary)
	assert.Equal(t, int64(1), summary.Rows)
	assert.Equal(t, int64(0), summary.Skipped.Total())
	assert.Nil(t, svc.Catalog())
}

func TestAnalyticsService_MissingFile(t *testing.T) {
	svc := newTestService(t, config.IngestConfig{})
	err := svc.LoadBatch(context.Background(), BatchSpec{
		StoreFiles: []string{filepath.Join(t.TempDir(), "missing.csv")},
	}, nil)
	assert.Error(t, err)
}

func TestAnalyticsService_BadReferenceDateFallsBackToNow(t *testing.T) {
	svc := newTestService(t, config.IngestConfig{RFMReference: "not-a-date"})
	before := time.Now()
	require.NoError(t, svc.LoadBatch(context.Background(), fixtureBatch(t), nil))

	ref := svc.ReferenceTime()
	assert.False(t, ref.Before(before))
	assert.False(t, ref.After(time.Now()))
}
