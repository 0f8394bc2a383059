// Package dataprocessing turns a raw survey export into a typed tabular
// frame with reliable column names and resolved filter columns.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Reader: loads CSV or XLSX exports into a RawTable with no header assumption
// 2. Header Locator: finds the true header row by pattern-matching normalized cells
// 3. Column Classifier: maps header names to the program / graduation-year roles
//
// # Data Flow
//
//	CSV/XLSX file → RawTable → LocateHeader → Frame → ClassifyColumns → RoleColumns
//
// Header detection scans at most the first 50 rows; a row qualifies when one
// cell matches the program patterns and another matches a graduation-year
// spelling variant. When no row qualifies, the first row is treated as the
// header and missing role columns surface later as a MissingColumnsError.
//
// # Error Handling
//
// Frame lookups fail with a typed ErrColumnNotFound instead of panicking,
// and ClassifyColumns reports every discovered header on failure so the
// operator can fix the export.
package dataprocessing
