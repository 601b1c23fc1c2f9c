// Package domain defines the core types shared across archwise: the problem
// description a client submits, the recommendation an external model returns,
// the project configuration the wizard edits and the errors surfaced at the
// API boundary.
//
// This package has no dependencies outside the Go standard library. Packages
// that do I/O (recommend, storage, server) depend on it, never the reverse.
package domain
