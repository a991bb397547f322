// Package target parses target triples and maps them to descriptors holding
// the data layout and object format a backend needs.
//
// Descriptors come from a static registry and are immutable, so one
// *Descriptor may be shared by concurrent compilations.
package target
