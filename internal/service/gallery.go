package service

import (
	"github.com/flipper-app/flipper/internal/domain"
	"github.com/flipper-app/flipper/internal/errors"
	"github.com/flipper-app/flipper/internal/logger"
)

type GalleryStorage interface {
	GetFlipbook(id domain.FlipbookId) (*domain.Flipbook, error)
	ListPublished() ([]domain.Flipbook, error)
	ListByOwner(ownerId domain.UserId) ([]domain.Flipbook, error)
	ListAllFlipbooks() ([]domain.Flipbook, error)
	IncrementViews(id domain.FlipbookId) (int64, error)
	IncrementShares(id domain.FlipbookId) (int64, error)
	ToggleLike(id domain.FlipbookId, userId domain.UserId) (bool, int64, error)
	SetPublished(id domain.FlipbookId, published bool) error
	DeleteFlipbook(id domain.FlipbookId) error
}

type DescriptionRenderer interface {
	Render(text string) (string, error)
}

// FlipbookView is a flipbook plus its description rendered to sanitized HTML.
// HTML is produced at the read boundary and never stored.
type FlipbookView struct {
	domain.Flipbook
	DescriptionHTML string `json:"descriptionHtml,omitempty"`
}

type Gallery struct {
	storage  GalleryStorage
	renderer DescriptionRenderer
}

func NewGallery(storage GalleryStorage, renderer DescriptionRenderer) *Gallery {
	return &Gallery{storage, renderer}
}

func (g *Gallery) ListPublished() ([]FlipbookView, error) {
	flipbooks, err := g.storage.ListPublished()
	if err != nil {
		return nil, err
	}
	return g.toViews(flipbooks), nil
}

func (g *Gallery) ListByOwner(ownerId domain.UserId) ([]FlipbookView, error) {
	flipbooks, err := g.storage.ListByOwner(ownerId)
	if err != nil {
		return nil, err
	}
	return g.toViews(flipbooks), nil
}

func (g *Gallery) ListAll() ([]FlipbookView, error) {
	flipbooks, err := g.storage.ListAllFlipbooks()
	if err != nil {
		return nil, err
	}
	return g.toViews(flipbooks), nil
}

// Get returns a flipbook if it is published or the caller owns it (or is
// admin). Unpublished records are reported as not found to other callers.
func (g *Gallery) Get(id domain.FlipbookId, caller *domain.User) (*FlipbookView, error) {
	fb, err := g.storage.GetFlipbook(id)
	if err != nil {
		return nil, err
	}
	if !fb.Published && !canModify(fb, caller) {
		return nil, &errors.ErrorWithStatusCode{Message: "Flipbook not found", StatusCode: 404}
	}
	view := g.toView(*fb)
	return &view, nil
}

// View registers one view. Every call increments; there is no dedup by
// viewer identity.
func (g *Gallery) View(id domain.FlipbookId) (int64, error) {
	return g.storage.IncrementViews(id)
}

// Share registers one completed share action.
func (g *Gallery) Share(id domain.FlipbookId) (int64, error) {
	return g.storage.IncrementShares(id)
}

// ToggleLike flips the caller's like. Two calls in a row by the same user
// restore the original count.
func (g *Gallery) ToggleLike(id domain.FlipbookId, userId domain.UserId) (liked bool, likes int64, err error) {
	return g.storage.ToggleLike(id, userId)
}

func (g *Gallery) SetPublished(id domain.FlipbookId, caller *domain.User, published bool) error {
	fb, err := g.storage.GetFlipbook(id)
	if err != nil {
		return err
	}
	if !canModify(fb, caller) {
		return &errors.ErrorWithStatusCode{Message: "Access denied", StatusCode: 403}
	}
	return g.storage.SetPublished(id, published)
}

func (g *Gallery) Delete(id domain.FlipbookId, caller *domain.User) error {
	fb, err := g.storage.GetFlipbook(id)
	if err != nil {
		return err
	}
	if !canModify(fb, caller) {
		return &errors.ErrorWithStatusCode{Message: "Access denied", StatusCode: 403}
	}
	return g.storage.DeleteFlipbook(id)
}

func canModify(fb *domain.Flipbook, caller *domain.User) bool {
	if caller == nil {
		return false
	}
	return caller.Admin || caller.Id == fb.OwnerId
}

func (g *Gallery) toViews(flipbooks []domain.Flipbook) []FlipbookView {
	views := make([]FlipbookView, 0, len(flipbooks))
	for _, fb := range flipbooks {
		views = append(views, g.toView(fb))
	}
	return views
}

func (g *Gallery) toView(fb domain.Flipbook) FlipbookView {
	view := FlipbookView{Flipbook: fb}
	if fb.Description != "" {
		html, err := g.renderer.Render(fb.Description)
		if err != nil {
			// Rendering is presentational; a broken description never
			// hides the record.
			logger.Log.Warn("failed to render description", "flipbook", fb.Id, "err", err)
		} else {
			view.DescriptionHTML = html
		}
	}
	return view
}
