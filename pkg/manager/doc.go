// Package manager coordinates the document lifecycle: loading sources into
// a store, building the precedence graph, and swapping the resulting
// snapshot into the engine atomically.
//
// Reloads are all-or-nothing. A new snapshot is fully loaded and validated
// (schema, relation targets, acyclicity) before the engine sees it; on any
// failure the previous snapshot stays active and the error is retained for
// inspection. A file watcher with debouncing triggers reloads when document
// files change.
package manager
