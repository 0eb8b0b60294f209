package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/flipper-app/flipper/internal/config"
	"github.com/flipper-app/flipper/internal/domain"
	internal_errors "github.com/flipper-app/flipper/internal/errors"
	"github.com/flipper-app/flipper/internal/rasterizer"
)

// Mock structs
type MockIngestStorage struct {
	CreateFlipbookFunc func(fb *domain.Flipbook) error
	Created            []*domain.Flipbook
}

func (m *MockIngestStorage) CreateFlipbook(fb *domain.Flipbook) error {
	m.Created = append(m.Created, fb)
	if m.CreateFlipbookFunc != nil {
		return m.CreateFlipbookFunc(fb)
	}
	return nil
}

type MockAssetStorage struct {
	UploadFunc func(ctx context.Context, data []byte, destPath, contentType string) (string, error)
	Uploaded   []string // destPaths in call order
}

func (m *MockAssetStorage) Upload(ctx context.Context, data []byte, destPath, contentType string) (string, error) {
	m.Uploaded = append(m.Uploaded, destPath)
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, data, destPath, contentType)
	}
	return "https://assets.test/" + destPath, nil
}

type MockRasterizer struct {
	RasterizeFunc   func(data []byte, fileName string, progress rasterizer.ProgressFunc) ([]domain.PageImage, error)
	PassthroughFunc func(data []byte, fileName, mimeType string) (domain.PageImage, error)
}

func (m *MockRasterizer) Rasterize(data []byte, fileName string, progress rasterizer.ProgressFunc) ([]domain.PageImage, error) {
	if m.RasterizeFunc != nil {
		return m.RasterizeFunc(data, fileName, progress)
	}
	return []domain.PageImage{{Data: data, ContentType: "image/png", SourceFile: fileName}}, nil
}

func (m *MockRasterizer) Passthrough(data []byte, fileName, mimeType string) (domain.PageImage, error) {
	if m.PassthroughFunc != nil {
		return m.PassthroughFunc(data, fileName, mimeType)
	}
	return domain.PageImage{Data: data, ContentType: mimeType, SourceFile: fileName}, nil
}

type MockFlipbookValidator struct {
	TitleFunc       func(title string) error
	DescriptionFunc func(description string) error
}

func (m *MockFlipbookValidator) Title(title string) error {
	if m.TitleFunc != nil {
		return m.TitleFunc(title)
	}
	return nil
}

func (m *MockFlipbookValidator) Description(description string) error {
	if m.DescriptionFunc != nil {
		return m.DescriptionFunc(description)
	}
	return nil
}

func testPublicConfig() config.Public {
	return config.Public{
		MaxFileSizeBytes: 10 << 20,
		MaxBatchFiles:    10,
		AllowedMimeTypes: []string{"application/pdf", "image/jpeg", "image/png"},
		RenderScale:      2.0,
	}
}

func newTestIngest() (*Ingest, *MockIngestStorage, *MockAssetStorage, *MockRasterizer, *MockFlipbookValidator) {
	storage := &MockIngestStorage{}
	assets := &MockAssetStorage{}
	raster := &MockRasterizer{}
	validator := &MockFlipbookValidator{}
	return NewIngest(storage, assets, raster, validator, testPublicConfig()), storage, assets, raster, validator
}

func pngFile(name string) domain.PendingFile {
	return domain.PendingFile{Filename: name, SizeBytes: 4, MimeType: "image/png", Data: []byte{1, 2, 3, 4}}
}

func pdfFile(name string) domain.PendingFile {
	return domain.PendingFile{Filename: name, SizeBytes: 4, MimeType: "application/pdf", Data: []byte("%PDF")}
}

func TestIngestCreate(t *testing.T) {
	service, storage, assets, raster, _ := newTestIngest()
	owner := domain.User{Id: "user-1", Name: "Alice"}

	// A 3-page pdf followed by a single image
	raster.RasterizeFunc = func(data []byte, fileName string, progress rasterizer.ProgressFunc) ([]domain.PageImage, error) {
		pages := make([]domain.PageImage, 3)
		for i := range pages {
			if progress != nil {
				progress(i+1, 3)
			}
			pages[i] = domain.PageImage{Data: []byte{byte(i)}, ContentType: "image/png", Ordinal: i, SourceFile: fileName}
		}
		return pages, nil
	}

	id, err := service.Create(context.Background(), owner, "My book", "desc",
		[]domain.PendingFile{pdfFile("doc.pdf"), pngFile("cover.png")}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if id == "" {
		t.Error("Expected non-empty flipbook id")
	}

	if len(assets.Uploaded) != 4 {
		t.Fatalf("Expected 4 uploads, got %d", len(assets.Uploaded))
	}
	// Pages are numbered file-major, in input order
	for i, destPath := range assets.Uploaded {
		wantPrefix := fmt.Sprintf("user-1/%s/page-%03d", id, i)
		if !strings.HasPrefix(destPath, wantPrefix) {
			t.Errorf("Upload %d: got destPath %q, expected prefix %q", i, destPath, wantPrefix)
		}
	}

	if len(storage.Created) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(storage.Created))
	}
	fb := storage.Created[0]
	if fb.Id != id {
		t.Errorf("Record id %q differs from returned id %q", fb.Id, id)
	}
	if fb.Published {
		t.Error("New flipbook must start unpublished")
	}
	if fb.OwnerId != "user-1" || fb.Author != "Alice" || fb.Title != "My book" || fb.Description != "desc" {
		t.Errorf("Unexpected record fields: %+v", fb)
	}
	if len(fb.PageUrls) != 4 {
		t.Fatalf("Expected 4 page urls, got %d", len(fb.PageUrls))
	}
	for i, url := range fb.PageUrls {
		if url != "https://assets.test/"+assets.Uploaded[i] {
			t.Errorf("Page url %d out of order: got %q", i, url)
		}
	}
	if fb.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestIngestCreateValidation(t *testing.T) {
	owner := domain.User{Id: "user-1", Name: "Alice"}

	tests := []struct {
		name       string
		files      []domain.PendingFile
		setup      func(v *MockFlipbookValidator)
		wantStatus int
	}{
		{
			name:  "invalid title",
			files: []domain.PendingFile{pngFile("a.png")},
			setup: func(v *MockFlipbookValidator) {
				v.TitleFunc = func(string) error {
					return &internal_errors.ErrorWithStatusCode{Message: "Title is required", StatusCode: 400}
				}
			},
			wantStatus: 400,
		},
		{
			name:  "invalid description",
			files: []domain.PendingFile{pngFile("a.png")},
			setup: func(v *MockFlipbookValidator) {
				v.DescriptionFunc = func(string) error {
					return &internal_errors.ErrorWithStatusCode{Message: "Description is too long", StatusCode: 400}
				}
			},
			wantStatus: 400,
		},
		{
			name:       "empty batch",
			files:      nil,
			wantStatus: 400,
		},
		{
			name: "too many files",
			files: func() []domain.PendingFile {
				files := make([]domain.PendingFile, 11)
				for i := range files {
					files[i] = pngFile(fmt.Sprintf("f%d.png", i))
				}
				return files
			}(),
			wantStatus: 400,
		},
		{
			name: "oversized file",
			files: []domain.PendingFile{{
				Filename: "big.png", SizeBytes: 11 << 20, MimeType: "image/png",
			}},
			wantStatus: 400,
		},
		{
			name: "unsupported type",
			files: []domain.PendingFile{{
				Filename: "movie.gif", SizeBytes: 4, MimeType: "image/gif", Data: []byte{1},
			}},
			wantStatus: 415,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, storage, assets, _, validator := newTestIngest()
			if tt.setup != nil {
				tt.setup(validator)
			}

			_, err := service.Create(context.Background(), owner, "Title", "", tt.files, nil)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var statusErr *internal_errors.ErrorWithStatusCode
			if !errors.As(err, &statusErr) || statusErr.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got: %v", tt.wantStatus, err)
			}
			// A rejected batch must have no side effects
			if len(assets.Uploaded) != 0 {
				t.Errorf("Expected no uploads, got %d", len(assets.Uploaded))
			}
			if len(storage.Created) != 0 {
				t.Errorf("Expected no record, got %d", len(storage.Created))
			}
		})
	}
}

func TestIngestCreateUploadFailure(t *testing.T) {
	service, storage, assets, _, _ := newTestIngest()
	owner := domain.User{Id: "user-1", Name: "Alice"}

	mockError := errors.New("Mock UploadFunc")
	assets.UploadFunc = func(ctx context.Context, data []byte, destPath, contentType string) (string, error) {
		if len(assets.Uploaded) == 2 { // fail on the second page
			return "", mockError
		}
		return "https://assets.test/" + destPath, nil
	}

	_, err := service.Create(context.Background(), owner, "Title", "",
		[]domain.PendingFile{pngFile("a.png"), pngFile("b.png"), pngFile("c.png")}, nil)
	if err == nil || !errors.Is(err, mockError) {
		t.Errorf("Expected %v, got: %v", mockError, err)
	}
	if len(storage.Created) != 0 {
		t.Error("A failed batch must not produce a record")
	}
}

func TestIngestCreateRenderFailure(t *testing.T) {
	service, storage, assets, raster, _ := newTestIngest()
	owner := domain.User{Id: "user-1", Name: "Alice"}

	mockError := errors.New("Mock RasterizeFunc")
	raster.RasterizeFunc = func(data []byte, fileName string, progress rasterizer.ProgressFunc) ([]domain.PageImage, error) {
		return nil, mockError
	}

	_, err := service.Create(context.Background(), owner, "Title", "",
		[]domain.PendingFile{pdfFile("broken.pdf")}, nil)
	if err == nil || !errors.Is(err, mockError) {
		t.Errorf("Expected %v, got: %v", mockError, err)
	}
	if len(assets.Uploaded) != 0 || len(storage.Created) != 0 {
		t.Error("A failed render must abort before uploads and record creation")
	}
}

func TestIngestCreateStorageFailure(t *testing.T) {
	service, storage, _, _, _ := newTestIngest()
	owner := domain.User{Id: "user-1", Name: "Alice"}

	mockError := errors.New("Mock CreateFlipbookFunc")
	storage.CreateFlipbookFunc = func(fb *domain.Flipbook) error { return mockError }

	_, err := service.Create(context.Background(), owner, "Title", "",
		[]domain.PendingFile{pngFile("a.png")}, nil)
	if err == nil || !errors.Is(err, mockError) {
		t.Errorf("Expected %v, got: %v", mockError, err)
	}
}

func TestIngestCreateProgress(t *testing.T) {
	service, _, _, raster, _ := newTestIngest()
	owner := domain.User{Id: "user-1", Name: "Alice"}

	raster.RasterizeFunc = func(data []byte, fileName string, progress rasterizer.ProgressFunc) ([]domain.PageImage, error) {
		pages := make([]domain.PageImage, 3)
		for i := range pages {
			if progress != nil {
				progress(i+1, 3)
			}
			pages[i] = domain.PageImage{Data: []byte{byte(i)}, ContentType: "image/png"}
		}
		return pages, nil
	}

	lastCompleted := -1
	lastTotal := 0
	calls := 0
	_, err := service.Create(context.Background(), owner, "Title", "",
		[]domain.PendingFile{pdfFile("doc.pdf"), pngFile("cover.png")},
		func(completed, total int, status string) {
			calls++
			if completed < lastCompleted {
				t.Errorf("completed went backwards: %d -> %d", lastCompleted, completed)
			}
			if total < lastTotal {
				t.Errorf("total shrank: %d -> %d", lastTotal, total)
			}
			if completed > total {
				t.Errorf("completed %d exceeds total %d", completed, total)
			}
			lastCompleted = completed
			lastTotal = total
		})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if calls == 0 {
		t.Fatal("Progress callback never invoked")
	}
	// 3 pdf pages + 1 image
	if lastTotal != 4 {
		t.Errorf("Final total: got %d, expected 4", lastTotal)
	}
	if lastCompleted != 4 {
		t.Errorf("Final completed: got %d, expected 4", lastCompleted)
	}
}

func TestIngestCreatePanickyProgress(t *testing.T) {
	service, storage, _, _, _ := newTestIngest()
	owner := domain.User{Id: "user-1", Name: "Alice"}

	// A broken callback must never affect the batch outcome
	_, err := service.Create(context.Background(), owner, "Title", "",
		[]domain.PendingFile{pngFile("a.png")},
		func(completed, total int, status string) {
			panic("broken observer")
		})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(storage.Created) != 1 {
		t.Error("Record not created despite panicky progress callback")
	}
}
