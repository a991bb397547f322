// Package session owns the mutable state of one compilation: the module being
// assembled, the current function and its builder, and the per-function
// variable tables.
//
// A Session is not safe for concurrent use. Independent compilations each
// create their own Session and share nothing mutable.
package session
