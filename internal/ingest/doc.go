// Package ingest implements the transaction-export ingestion pipeline:
// reading spreadsheet or delimited-text giving exports, normalizing noisy
// cell values, folding accepted rows into per-account fiscal-year totals,
// merging totals across independently parsed files, and building the final
// year-over-year comparison rows.
//
// The pipeline is strictly staged:
//
//	ReadTable -> DetectFormat (gate) -> ParseRows -> Combine -> BuildRows
//
// Each per-file parse owns its aggregation state exclusively, so multiple
// files may be parsed concurrently; Combine is the single serialization
// point and runs only after every per-file parse has completed.
//
// Expected bad input is never raised as an error from the row loop: rejected
// rows and excluded accounts are collected as domain.ParseError values and
// returned alongside whatever parsed successfully. Only structural problems
// (unreadable file, no sheets, unrecognized format, fewer than two fiscal
// years across the whole upload set) abort an import.
package ingest
