// Package files discovers transaction export files on disk and sorts
// them into the two ingestion schemas.
package files

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo describes one discovered input file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Inputs is the outcome of scanning an input directory: transaction
// files split by schema, plus an optional catalog file.
type Inputs struct {
	StoreFiles  []string
	WebFiles    []string
	CatalogFile string
}

// Discovery scans a base directory for batch input files
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery rooted at basePath
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindInputFiles lists the CSV and XLSX files of a directory, oldest
// first so batches replay in upload order.
func (d *Discovery) FindInputFiles(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}
		// Excel lock files left behind by open workbooks.
		if strings.HasPrefix(name, "~$") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// DiscoverInputs scans a directory and splits its files into the store
// and web schemas. CSV files are classified by sniffing the header
// delimiter; XLSX files always carry the store schema. A file named
// like a catalog ("catalogue*" or "catalog*") is set aside.
func (d *Discovery) DiscoverInputs(dir string) (Inputs, error) {
	files, err := d.FindInputFiles(dir)
	if err != nil {
		return Inputs{}, err
	}

	var in Inputs
	for _, f := range files {
		lower := strings.ToLower(f.Name)
		if strings.HasPrefix(lower, "catalogue") || strings.HasPrefix(lower, "catalog") {
			in.CatalogFile = f.Path
			continue
		}

		if strings.ToLower(filepath.Ext(f.Name)) == ".xlsx" {
			in.StoreFiles = append(in.StoreFiles, f.Path)
			continue
		}

		comma, err := SniffDelimiter(f.Path)
		if err != nil {
			return Inputs{}, err
		}
		if comma == ',' {
			in.WebFiles = append(in.WebFiles, f.Path)
		} else {
			in.StoreFiles = append(in.StoreFiles, f.Path)
		}
	}
	return in, nil
}

// SniffDelimiter reads the header line of a CSV file and decides
// whether it is `;`- or `,`-delimited. Semicolons win ties because the
// store exports quote no fields and never contain commas in headers.
func SniffDelimiter(path string) (rune, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, fmt.Errorf("failed to read header of %s: %w", path, err)
		}
		return ';', nil
	}

	header := scanner.Text()
	if strings.Count(header, ";") >= strings.Count(header, ",") {
		return ';', nil
	}
	return ',', nil
}
