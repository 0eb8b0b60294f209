package domain

import (
	"time"

	"github.com/lib/pq"
)

type FlipbookId = string

// PageUrls maps to a postgres TEXT[] column. Order is page order.
type PageUrls = pq.StringArray

// Flipbook is the persisted publication record: an ordered set of page
// image URLs plus metadata and counters.
type Flipbook struct {
	Id          FlipbookId `json:"id"`
	OwnerId     UserId     `json:"ownerId"`
	Author      string     `json:"author"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	PageUrls    PageUrls   `json:"pageUrls"`
	CreatedAt   time.Time  `json:"createdAt"`
	Published   bool       `json:"published"`
	Likes       int64      `json:"likes"`
	Views       int64      `json:"views"`
	Shares      int64      `json:"shares"`
}

// PendingFile is a validated input file waiting for ingestion.
// Data is fully buffered; the per-file size cap keeps this bounded.
type PendingFile struct {
	Filename  string
	SizeBytes int64
	MimeType  string
	Data      []byte
}

// PageImage is a single rendered page. Ordinal i corresponds to document
// page i+1 within its source file; the orchestrator renumbers ordinals
// file-major before upload.
type PageImage struct {
	Data        []byte
	ContentType string
	Ordinal     int
	SourceFile  string
}

// RemoteAsset is the durable reference returned by the uploader.
type RemoteAsset struct {
	Url     string `json:"url"`
	Ordinal int    `json:"ordinal"`
}
