// Package core ties spreadsheet decoding, column detection, persistence and
// card export into the operations the web layer exposes.
//
// # Import
//
// [Service.Import] reads an uploaded file under a size limit, decodes it with
// the sheet package, selects the sheet with the largest used range and runs
// the extractor over it. Imports run under an [ImportLimiter] slot so that a
// burst of large workbooks cannot exhaust memory; shutdown waits for running
// imports with [Service.WaitForImports].
//
// # Card sets
//
// A card set is a named, saved batch of records. Every card set operation is
// scoped to the user carried by the context (see [ContextWithUser]); a set
// owned by someone else is reported as not found.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Each
// category has a code for support reference:
//
//   - FILE001-FILE006: file errors (size, format, decoding, reading)
//   - IMP001-IMP004: import errors (busy, cancelled, timed out, account busy)
//   - SET001-SET002: card set errors
//   - AUTH001-AUTH003: authentication errors
//   - EXP001-EXP002: export errors
package core
