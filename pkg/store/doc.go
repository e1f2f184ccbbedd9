// Package store implements the document store: loading policy documents
// from their source files and holding an immutable, name-indexed snapshot.
//
// A store is constructed in one shot from a batch of parsed documents.
// Construction validates the batch as a whole: names must be unique and
// every relation target must resolve within the same batch. On any failure
// no store is produced; there is no partial store.
//
// Once built a store is read-only. Content changes are handled by building
// a fresh store and swapping it wholesale (see pkg/manager), never by
// mutating an existing one.
package store
