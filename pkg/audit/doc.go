// Package audit records an audit trail of resolution queries: which context
// was asked, which snapshot answered, which documents applied, and whether
// conflicts surfaced.
//
// Records are written to pluggable storage (SQLite in pkg/audit/storage) and
// pruned on a schedule (pkg/audit/retention). The recorder attaches to the
// engine as an observer; the engine itself stays free of I/O concerns.
package audit
