// Package diag defines the diagnostic model shared by the compilation stages.
//
// Local failures (an unsupported operator, a poisoned operand, a read of an
// unknown variable) are recorded as Diagnostics through a Reporter and do not
// stop the session, so several independent mistakes surface in one pass.
// Fatal conditions (verification, target resolution, I/O) are returned as Go
// errors by the pipeline and may additionally be mirrored into the Bag.
//
// Location identifies a statement inside a function; there are no source spans
// because the session input is already structured.
package diag
