package validation

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"

	"github.com/flipper-app/flipper/internal/domain"
)

// ValidateBatch checks an uploaded file batch against the ingestion policy and
// buffers each file into a PendingFile. It fails before any file is processed
// further, so a rejected batch has no side effects.
func ValidateBatch(fileHeaders []*multipart.FileHeader, allowedMimes []string, maxFileSize int64, maxFiles int) ([]domain.PendingFile, error) {
	if len(fileHeaders) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(fileHeaders) > maxFiles {
		return nil, fmt.Errorf("%w: got %d, maximum is %d", ErrTooManyFiles, len(fileHeaders), maxFiles)
	}

	allowed := BuildAllowedMimeMap(allowedMimes)

	// Check declared sizes and types for the whole batch first
	for _, fileHeader := range fileHeaders {
		if fileHeader.Size > maxFileSize {
			return nil, fmt.Errorf("%w: %s is %.1f MB, maximum is %.0f MB",
				ErrFileTooLarge, fileHeader.Filename, FormatSizeMB(fileHeader.Size), FormatSizeMB(maxFileSize))
		}
		mimeType, err := DetectMimeType(fileHeader)
		if err != nil {
			return nil, err
		}
		if !allowed[mimeType] {
			return nil, fmt.Errorf("%w: %s (file: %s)", ErrInvalidMimeType, mimeType, fileHeader.Filename)
		}
	}

	pending := make([]domain.PendingFile, 0, len(fileHeaders))
	for _, fileHeader := range fileHeaders {
		file, err := fileHeader.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded file: %w", err)
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read uploaded file %s: %w", fileHeader.Filename, err)
		}

		mimeType, _ := DetectMimeType(fileHeader)
		pending = append(pending, domain.PendingFile{
			Filename:  fileHeader.Filename,
			SizeBytes: int64(len(data)),
			MimeType:  mimeType,
			Data:      data,
		})
	}

	return pending, nil
}

func BuildAllowedMimeMap(mimes []string) map[string]bool {
	allowed := make(map[string]bool)
	for _, m := range mimes {
		allowed[m] = true
	}
	return allowed
}

func DetectMimeType(fileHeader *multipart.FileHeader) (string, error) {
	mimeType := fileHeader.Header.Get("Content-Type")

	// If no Content-Type or it's generic, detect from extension
	if mimeType == "" || mimeType == "application/octet-stream" {
		ext := filepath.Ext(fileHeader.Filename)
		detectedType := mime.TypeByExtension(ext)
		if detectedType != "" {
			mimeType = detectedType
		}
	}

	if mimeType == "" {
		return "", fmt.Errorf("could not detect MIME type for file: %s", fileHeader.Filename)
	}

	return mimeType, nil
}
