// Package ingest normalizes raw point-of-sale and e-commerce export
// rows into canonical transaction records.
//
// Two source schemas exist: the store chain export (semicolon-delimited,
// French column captions) and the web shop export (comma-delimited,
// snake_case columns). The schema is sniffed once per batch from the
// header row, not per row; every row of a batch is then dispatched
// through the same field mapping.
//
// Malformed rows (missing family, blank/unparseable/zero amount) are
// skipped and counted, never fatal: a bad line must not abort an
// import.
package ingest
