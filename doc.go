// Package finance is the bookkeeping core of a personal finance tool.
//
// It stores accounts, money movements between them (events) and the spot
// prices of investment accounts, each in a change-tracked list of package
// item, grouped in a DataSet:
//   - Editing: working copies are extracted from the CORE data set, edited,
//     validated and merged back with ApplyChanges, or discarded.
//   - Persistence: lists are encoded as JSONL, one item per line.
//   - Backup: a data set is saved to, and restored from, an encrypted and
//     signed archive (package archive) with keys held by package secure.
package finance
