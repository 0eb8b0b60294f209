package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"
)

// ErrUpload wraps any failure to push an asset to the remote host. A failed
// call leaves nothing usable under the destination path.
var ErrUpload = errors.New("asset upload failed")

// HTTPStorage pushes page images to an external image host via unsigned
// multipart upload and returns the durable public URL from the response.
type HTTPStorage struct {
	uploadURL    string
	uploadPreset string
	folder       string
	client       *http.Client
}

func NewHTTP(uploadURL, uploadPreset, folder string) *HTTPStorage {
	return &HTTPStorage{
		uploadURL:    uploadURL,
		uploadPreset: uploadPreset,
		folder:       folder,
		client:       &http.Client{Timeout: 60 * time.Second},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends a single asset and returns its public URL. There is no
// internal retry; the orchestrator owns the retry budget.
func (s *HTTPStorage) Upload(ctx context.Context, data []byte, destPath, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload for %s", ErrUpload, destPath)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	filename := path.Base(destPath)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	fields := map[string]string{
		"upload_preset": s.uploadPreset,
		"folder":        path.Join(s.folder, path.Dir(destPath)),
		"public_id":     strings.TrimSuffix(filename, path.Ext(filename)),
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUpload, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: unexpected response (status %d)", ErrUpload, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "unknown error"
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("%w: %s (status %d)", ErrUpload, msg, resp.StatusCode)
	}

	url := parsed.SecureURL
	if url == "" {
		url = parsed.URL
	}
	if url == "" {
		return "", fmt.Errorf("%w: response carries no asset url", ErrUpload)
	}

	return url, nil
}
