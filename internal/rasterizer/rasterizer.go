package rasterizer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"

	"github.com/flipper-app/flipper/internal/domain"
)

// pdfBaseDPI is the PDF coordinate space resolution; rendering at
// scale*pdfBaseDPI reproduces the viewer's upscale factor.
const pdfBaseDPI = 72

// RenderError reports a page that could not be rasterized. The whole file is
// discarded when any page fails.
type RenderError struct {
	FileName string
	Page     int
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render page %d of %s: %v", e.Page+1, e.FileName, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// ProgressFunc reports rendering progress. Advisory only: a nil or panicking
// callback never affects the result.
type ProgressFunc func(currentPage, totalPages int)

type Rasterizer struct {
	scale float64
}

func New(scale float64) *Rasterizer {
	if scale < 1 {
		scale = 1
	}
	return &Rasterizer{scale: scale}
}

// Rasterize renders every page of a PDF in document order into PNG page
// images. Ordinal i corresponds to document page i+1. On any page failure all
// pages of the file are discarded and a RenderError is returned.
func (r *Rasterizer) Rasterize(data []byte, fileName string, progress ProgressFunc) ([]domain.PageImage, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, &RenderError{FileName: fileName, Page: 0, Err: err}
	}
	defer doc.Close()

	total := doc.NumPage()
	pages := make([]domain.PageImage, 0, total)

	for i := 0; i < total; i++ {
		reportProgress(progress, i+1, total)

		img, err := doc.ImageDPI(i, r.scale*pdfBaseDPI)
		if err != nil {
			return nil, &RenderError{FileName: fileName, Page: i, Err: err}
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, &RenderError{FileName: fileName, Page: i, Err: err}
		}

		pages = append(pages, domain.PageImage{
			Data:        buf.Bytes(),
			ContentType: "image/png",
			Ordinal:     i,
			SourceFile:  fileName,
		})
	}

	return pages, nil
}

// Passthrough validates an already-raster input and wraps it as a single page
// image without re-encoding.
func (r *Rasterizer) Passthrough(data []byte, fileName, mimeType string) (domain.PageImage, error) {
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return domain.PageImage{}, &RenderError{FileName: fileName, Page: 0, Err: err}
	}

	return domain.PageImage{
		Data:        data,
		ContentType: mimeType,
		Ordinal:     0,
		SourceFile:  fileName,
	}, nil
}

func reportProgress(progress ProgressFunc, current, total int) {
	if progress == nil {
		return
	}
	defer func() {
		_ = recover() // a broken progress callback must not fail rendering
	}()
	progress(current, total)
}
