// Package errors provides the structured error type used across audiotext.
// AppError carries a machine-readable code, an HTTP status mapping, and a
// retryable flag; ToResponse renders the RFC 7807 style client body.
package errors
