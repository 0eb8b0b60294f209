package validation

import "errors"

// ErrPayloadTooLarge is returned when the request body exceeds size limits
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrInvalidMimeType is returned when an uploaded file has a disallowed MIME type
var ErrInvalidMimeType = errors.New("invalid MIME type")

// ErrTooManyFiles is returned when a batch holds more files than allowed
var ErrTooManyFiles = errors.New("too many files")

// ErrFileTooLarge is returned when a single input file exceeds the per-file cap
var ErrFileTooLarge = errors.New("file too large")

// ErrEmptyBatch is returned when an ingestion batch holds no files
var ErrEmptyBatch = errors.New("empty batch")
