// Package extract turns a decoded spreadsheet into contributor records.
//
// Real registration files are messy: the header row is not always the first
// row, titles are accented, misspelled or pasted into a single merged cell,
// and several columns may carry the same kind of value (three telephone
// columns for driver, emergency contact and owner). The extraction runs in
// four steps, each a pure function over the rows:
//
//  1. [Normalize] reduces every header cell and alias to [a-z0-9].
//  2. [DetectHeaderRow] picks the row among the first ten that names the
//     most distinct fields.
//  3. [AssignColumns] maps each [FieldKey] to a column index, with
//     duplicate-telephone disambiguation and a late "prenom" fallback.
//  4. [ExtractRecords] builds one [ContributorRecord] per non-blank row,
//     filling missing values with [Sentinel].
//
// The vocabulary lives in an immutable [AliasTable]. [DefaultAliases] holds
// the production vocabulary; tests and callers may inject their own via
// [WithAliases].
//
// Nothing here reads files. Decoding bytes into rows is the job of the sheet
// package; extraction never fails, it degrades to warnings.
package extract
