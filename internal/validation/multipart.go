package validation

import (
	"fmt"
	"net/http"
)

// ValidateAndParseMultipart validates request size and parses the multipart form.
// It sets up MaxBytesReader to enforce the size limit and attempts to parse the form.
// Returns an error if the size limit is exceeded or parsing fails.
//
// MaxBytesReader only reads up to the limit and then stops, so an oversized
// upload never exhausts server resources no matter what the client sends.
func ValidateAndParseMultipart(r *http.Request, w http.ResponseWriter, maxSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return fmt.Errorf("%w: failed to parse multipart form", ErrPayloadTooLarge)
	}

	return nil
}

// CalculateMaxRequestSize returns the maximum request size including overhead buffer.
// It adds a buffer (typically 1 MiB) for form fields and multipart overhead.
func CalculateMaxRequestSize(maxBatchSize int64, bufferSize int64) int64 {
	return maxBatchSize + bufferSize
}

// FormatSizeMB converts bytes to megabytes for user-friendly error messages.
func FormatSizeMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}
