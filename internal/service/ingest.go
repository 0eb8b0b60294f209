package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flipper-app/flipper/internal/config"
	"github.com/flipper-app/flipper/internal/domain"
	"github.com/flipper-app/flipper/internal/errors"
	"github.com/flipper-app/flipper/internal/logger"
	"github.com/flipper-app/flipper/internal/rasterizer"
)

// ProgressFunc receives ingestion progress. completedPages is monotonically
// non-decreasing and equals the number of uploaded pages on completion;
// totalPages may grow while PDFs are being opened.
type ProgressFunc func(completedPages, totalPages int, status string)

type IngestService interface {
	Create(ctx context.Context, owner domain.User, title, description string, files []domain.PendingFile, progress ProgressFunc) (domain.FlipbookId, error)
}

type AssetStorage interface {
	Upload(ctx context.Context, data []byte, destPath, contentType string) (url string, err error)
}

type Rasterizer interface {
	Rasterize(data []byte, fileName string, progress rasterizer.ProgressFunc) ([]domain.PageImage, error)
	Passthrough(data []byte, fileName, mimeType string) (domain.PageImage, error)
}

type IngestStorage interface {
	CreateFlipbook(fb *domain.Flipbook) error
}

type FlipbookValidator interface {
	Title(title string) error
	Description(description string) error
}

// Ingest drives one publication batch: validate, rasterize and upload every
// page in input order, then write the record in one atomic insert. Any
// failure aborts the batch without a record; already-uploaded assets stay
// orphaned in the asset host.
type Ingest struct {
	storage   IngestStorage
	assets    AssetStorage
	raster    Rasterizer
	validator FlipbookValidator
	cfg       config.Public
}

func NewIngest(storage IngestStorage, assets AssetStorage, raster Rasterizer, validator FlipbookValidator, cfg config.Public) *Ingest {
	return &Ingest{storage, assets, raster, validator, cfg}
}

func (s *Ingest) Create(ctx context.Context, owner domain.User, title, description string, files []domain.PendingFile, progress ProgressFunc) (domain.FlipbookId, error) {
	if err := s.validator.Title(title); err != nil {
		return "", err
	}
	if err := s.validator.Description(description); err != nil {
		return "", err
	}
	if err := s.validateBatch(files); err != nil {
		return "", err
	}

	// Record id is fixed before any upload so the asset namespace
	// {ownerId}/{flipbookId}/ never collides across batches.
	id := uuid.NewString()

	completed := 0
	// Every file yields at least one page; the total grows once a PDF's
	// real page count is known.
	total := len(files)
	report := func(status string) {
		safeProgress(progress, completed, total, status)
	}

	var urls domain.PageUrls
	for _, file := range files {
		pages, err := s.renderFile(file, &total, completed, progress)
		if err != nil {
			return "", err
		}

		for _, page := range pages {
			ordinal := len(urls)
			report(fmt.Sprintf("Uploading %s...", file.Filename))

			destPath := fmt.Sprintf("%s/%s/page-%03d%s", owner.Id, id, ordinal, extForContentType(page.ContentType))
			url, err := s.assets.Upload(ctx, page.Data, destPath, page.ContentType)
			if err != nil {
				logger.Log.Warn("batch aborted, uploaded assets orphaned",
					"flipbook", id, "uploaded", len(urls), "err", err)
				return "", fmt.Errorf("failed to upload page %d of %s: %w", page.Ordinal+1, file.Filename, err)
			}

			urls = append(urls, url)
			completed++
			report(fmt.Sprintf("Uploaded %d/%d", completed, total))
		}
	}

	// Unreachable if batch validation is correct; defense-in-depth.
	if len(urls) == 0 {
		return "", &errors.ErrorWithStatusCode{Message: "Publication must have at least one page", StatusCode: 400}
	}

	fb := &domain.Flipbook{
		Id:          id,
		OwnerId:     owner.Id,
		Author:      owner.Name,
		Title:       title,
		Description: description,
		PageUrls:    urls,
		CreatedAt:   time.Now(),
		Published:   false,
	}
	if err := s.storage.CreateFlipbook(fb); err != nil {
		return "", err
	}

	return id, nil
}

// validateBatch rejects the whole batch before any rendering or network work.
func (s *Ingest) validateBatch(files []domain.PendingFile) error {
	if len(files) == 0 {
		return &errors.ErrorWithStatusCode{Message: "No files to upload", StatusCode: 400}
	}
	if len(files) > s.cfg.MaxBatchFiles {
		return &errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("Maximum %d files allowed", s.cfg.MaxBatchFiles),
			StatusCode: 400,
		}
	}

	allowed := make(map[string]bool, len(s.cfg.AllowedMimeTypes))
	for _, m := range s.cfg.AllowedMimeTypes {
		allowed[m] = true
	}

	for _, file := range files {
		if file.SizeBytes > s.cfg.MaxFileSizeBytes {
			return &errors.ErrorWithStatusCode{
				Message:    fmt.Sprintf("File %s exceeds the %d MB limit", file.Filename, s.cfg.MaxFileSizeBytes>>20),
				StatusCode: 400,
			}
		}
		if !allowed[file.MimeType] {
			return &errors.ErrorWithStatusCode{
				Message:    fmt.Sprintf("Unsupported media type %s (file: %s)", file.MimeType, file.Filename),
				StatusCode: 415,
			}
		}
	}
	return nil
}

func (s *Ingest) renderFile(file domain.PendingFile, total *int, completed int, progress ProgressFunc) ([]domain.PageImage, error) {
	if file.MimeType == "application/pdf" {
		counted := false
		pages, err := s.raster.Rasterize(file.Data, file.Filename, func(current, pageCount int) {
			if !counted && pageCount > 1 {
				*total += pageCount - 1 // one slot was already reserved for this file
				counted = true
			}
			safeProgress(progress, completed, *total,
				fmt.Sprintf("Processing %s: page %d of %d...", file.Filename, current, pageCount))
		})
		if err != nil {
			return nil, err
		}
		return pages, nil
	}

	safeProgress(progress, completed, *total, fmt.Sprintf("Processing %s...", file.Filename))
	page, err := s.raster.Passthrough(file.Data, file.Filename, file.MimeType)
	if err != nil {
		return nil, err
	}
	return []domain.PageImage{page}, nil
}

func extForContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	default:
		return ".png"
	}
}

// safeProgress invokes an advisory callback; absence or panic never affects
// the batch outcome.
func safeProgress(progress ProgressFunc, completed, total int, status string) {
	if progress == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	progress(completed, total, status)
}
