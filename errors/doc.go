// Package errors provides the structured error type used across livecoll.
//
// Every failure surfaced by the reactive substrate and the pipeline engines
// is an *AppError carrying a machine-readable ErrorCode, a message, and
// optional details. Errors are returned synchronously to the caller whose
// mutation triggered them; nothing is retried internally.
//
//	if errors.HasCode(err, errors.ErrCodeDuplicateKey) {
//	    key := err.(*errors.AppError).Details["key"]
//	}
package errors
