// Package exporter writes the ranked analytics artifacts as
// semicolon-separated, UTF-8 BOM prefixed CSV files, the layout the
// downstream spreadsheet tooling expects.
package exporter
