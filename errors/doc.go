// Package errors provides the error taxonomy used across the pipeline.
//
// Every failure is an *AppError carrying a machine-readable code. The Fatal
// flag separates run-aborting conditions (missing input directory, an
// unrecognized pair naming convention, an unreadable reference database)
// from sample-local ones (a tool exiting non-zero, a missing output file),
// which end processing for a single sample while the run continues.
package errors
