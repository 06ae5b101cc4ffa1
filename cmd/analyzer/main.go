// Command analyzer runs the full analysis pipeline once: it ingests the
// given transaction exports, aggregates them and writes the ranking,
// RFM, ABC, cohort and cross-sell reports as CSV files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/starfeu1331-jpg/MagicSysteme/internal/config"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/exporter"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/files"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/infrastructure"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/services"
	"github.com/starfeu1331-jpg/MagicSysteme/internal/validation"
	"github.com/starfeu1331-jpg/MagicSysteme/pkg/contracts/domain"
)

func main() {
	inputDir := flag.String("dir", "", "directory to scan for input files; schemas are detected per file")
	storeFiles := flag.String("store", "", "comma-separated store transaction files (CSV or XLSX)")
	webFiles := flag.String("web", "", "comma-separated web transaction files (CSV or XLSX)")
	catalogFile := flag.String("catalog", "", "optional web catalog file")
	outputDir := flag.String("out", "", "output directory for CSV reports (defaults to config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	spec := services.BatchSpec{
		StoreFiles:  splitFiles(*storeFiles),
		WebFiles:    splitFiles(*webFiles),
		CatalogFile: *catalogFile,
	}
	if *inputDir != "" {
		discovered, err := files.NewDiscovery("").DiscoverInputs(*inputDir)
		if err != nil {
			logger.Error("Input discovery failed", "error", err, "dir", *inputDir)
			os.Exit(1)
		}
		spec.StoreFiles = append(spec.StoreFiles, discovered.StoreFiles...)
		spec.WebFiles = append(spec.WebFiles, discovered.WebFiles...)
		if spec.CatalogFile == "" {
			spec.CatalogFile = discovered.CatalogFile
		}
	}
	if len(spec.StoreFiles) == 0 && len(spec.WebFiles) == 0 {
		fmt.Fprintln(os.Stderr, "no input files: pass -dir, -store and/or -web")
		flag.Usage()
		os.Exit(2)
	}

	validator := validation.NewInputValidator(logger)
	if err := validator.ValidateInputFiles(append(spec.StoreFiles, spec.WebFiles...)...); err != nil {
		logger.Error("Input validation failed", "error", err)
		os.Exit(1)
	}

	shutdownTracing, err := infrastructure.InitTracing(context.Background(), "analyzer")
	if err != nil {
		logger.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	service := services.NewAnalyticsService(cfg.Ingest, logger, infrastructure.NewMetrics())

	bar := progressbar.Default(-1, "ingesting rows")
	err = service.LoadBatch(context.Background(), spec, func(rows int) {
		_ = bar.Set(rows)
	})
	_ = bar.Finish()
	if err != nil {
		logger.Error("Batch load failed", "error", err)
		os.Exit(1)
	}

	if *outputDir == "" {
		*outputDir = cfg.Export.Dir
	}
	if err := validator.ValidateOutputDirectory(*outputDir); err != nil {
		logger.Error("Output directory check failed", "error", err)
		os.Exit(1)
	}

	if err := writeReports(service, cfg, *outputDir, logger); err != nil {
		logger.Error("Export failed", "error", err)
		os.Exit(1)
	}

	printSummary(service)
}

func splitFiles(s string) []string {
	if s == "" {
		return nil
	}
	var files []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files
}

func writeReports(service *services.AnalyticsService, cfg *config.Config, dir string, logger *slog.Logger) error {
	w := exporter.NewCSVWriter(dir, logger)
	res := service.Result()

	if err := w.ExportRanking("familles.csv", "Famille", res.Families.Global); err != nil {
		return err
	}
	if err := w.ExportRanking("sous_familles.csv", "Sous-famille", res.SubFamilies.Global); err != nil {
		return err
	}
	if err := w.ExportRanking("produits.csv", "Produit", res.Products.Global); err != nil {
		return err
	}
	if err := w.ExportRanking("mois.csv", "Mois", res.Months.Global); err != nil {
		return err
	}
	if err := w.ExportMonthlyProducts("produits_mensuels.csv", res.MonthlyProducts.Global, 10); err != nil {
		return err
	}
	if err := w.ExportStores("magasins.csv", res.Stores, cfg.Ingest.ExcludedStorePrefixes); err != nil {
		return err
	}
	if err := w.ExportRanking("villes.csv", "Ville", res.Cities); err != nil {
		return err
	}
	if err := w.ExportRanking("codes_postaux.csv", "Code postal", res.PostalCodes); err != nil {
		return err
	}

	for _, scope := range []domain.Scope{domain.ScopeAll, domain.ScopeStore, domain.ScopeWeb} {
		name := fmt.Sprintf("rfm_%s.csv", scope)
		if err := w.ExportRFM(name, service.RFM(scope)); err != nil {
			return err
		}
	}

	if err := w.ExportABC("abc_familles.csv", service.ABC(services.ABCFamilies, domain.ScopeAll)); err != nil {
		return err
	}
	if err := w.ExportABC("abc_produits.csv", service.ABC(services.ABCProducts, domain.ScopeAll)); err != nil {
		return err
	}
	if err := w.ExportCohorts("cohortes.csv", service.Cohorts()); err != nil {
		return err
	}
	return w.ExportCrossSell("cross_sell.csv", res.CrossSell.Global)
}

func printSummary(service *services.AnalyticsService) {
	s := service.Summarize()
	if s == nil {
		return
	}
	fmt.Printf("\n")
	fmt.Printf("Rows ingested:   %d (skipped %d)\n", s.Rows, s.Skipped.Total())
	fmt.Printf("Customers:       %d\n", s.Customers)
	fmt.Printf("Families:        %d\n", s.Families)
	fmt.Printf("Total revenue:   %.2f\n", s.TotalRevenue)
	if !s.DateRange.Min.IsZero() {
		fmt.Printf("Date range:      %s .. %s\n",
			s.DateRange.Min.Format("02/01/2006"), s.DateRange.Max.Format("02/01/2006"))
	}
	fmt.Printf("Web tickets:     %d (revenue %.2f)\n", s.Web.UniqueTickets, s.Web.Revenue)
}
