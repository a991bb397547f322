// Package ir defines the in-memory intermediate representation produced by a
// compilation session: typed immutable values, instructions grouped into basic
// blocks, functions and modules.
//
// Mutable source variables are modelled with stack slots: an alloca placed at
// the head of the entry block, then store/load instructions at the point of
// use. Every other instruction produces a single-assignment value.
//
// The package also owns the structural verifier, the textual dumper and a small
// reference evaluator used by tests and the `eval` command.
package ir
