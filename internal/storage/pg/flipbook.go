package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flipper-app/flipper/internal/domain"
	internal_errors "github.com/flipper-app/flipper/internal/errors"
)

// CreateFlipbook persists the full record in a single INSERT: either the
// whole record appears or nothing does.
func (s *Storage) CreateFlipbook(fb *domain.Flipbook) error {
	createdTs := fb.CreatedAt.UTC().Round(time.Microsecond) // database anyway round to microsecond
	_, err := s.db.Exec(`
	INSERT INTO flipbooks(id, owner_id, author, title, description, page_urls, created, published, likes, views, shares)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, 0)`,
		fb.Id, fb.OwnerId, fb.Author, fb.Title, fb.Description, fb.PageUrls, createdTs, fb.Published)
	if err != nil {
		return fmt.Errorf("failed to create flipbook: %w", err)
	}
	return nil
}

func (s *Storage) GetFlipbook(id domain.FlipbookId) (*domain.Flipbook, error) {
	var fb domain.Flipbook
	err := s.db.QueryRow(`
	SELECT id, owner_id, author, title, description, page_urls, created, published, likes, views, shares
	FROM flipbooks
	WHERE id = $1`, id).Scan(
		&fb.Id, &fb.OwnerId, &fb.Author, &fb.Title, &fb.Description, &fb.PageUrls,
		&fb.CreatedAt, &fb.Published, &fb.Likes, &fb.Views, &fb.Shares)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Flipbook not found", StatusCode: 404}
		}
		return nil, err
	}
	return &fb, nil
}

// ListPublished returns published flipbooks, newest first.
func (s *Storage) ListPublished() ([]domain.Flipbook, error) {
	return s.listFlipbooks(`WHERE published`, nil)
}

// ListByOwner returns all of an owner's flipbooks including unpublished ones.
func (s *Storage) ListByOwner(ownerId domain.UserId) ([]domain.Flipbook, error) {
	return s.listFlipbooks(`WHERE owner_id = $1`, []interface{}{ownerId})
}

// ListAllFlipbooks returns every record for admin moderation.
func (s *Storage) ListAllFlipbooks() ([]domain.Flipbook, error) {
	return s.listFlipbooks(``, nil)
}

func (s *Storage) listFlipbooks(where string, args []interface{}) ([]domain.Flipbook, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
	SELECT id, owner_id, author, title, description, page_urls, created, published, likes, views, shares
	FROM flipbooks
	%s
	ORDER BY created DESC`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flipbooks []domain.Flipbook
	for rows.Next() {
		var fb domain.Flipbook
		if err := rows.Scan(
			&fb.Id, &fb.OwnerId, &fb.Author, &fb.Title, &fb.Description, &fb.PageUrls,
			&fb.CreatedAt, &fb.Published, &fb.Likes, &fb.Views, &fb.Shares); err != nil {
			return nil, err
		}
		flipbooks = append(flipbooks, fb)
	}
	return flipbooks, rows.Err()
}

// IncrementViews is an unconditional atomic increment: two simultaneous calls
// both land without a lost update.
func (s *Storage) IncrementViews(id domain.FlipbookId) (int64, error) {
	var views int64
	err := s.db.QueryRow(`
	UPDATE flipbooks SET views = views + 1 WHERE id = $1 RETURNING views`, id).Scan(&views)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, &internal_errors.ErrorWithStatusCode{Message: "Flipbook not found", StatusCode: 404}
		}
		return 0, err
	}
	return views, nil
}

func (s *Storage) IncrementShares(id domain.FlipbookId) (int64, error) {
	var shares int64
	err := s.db.QueryRow(`
	UPDATE flipbooks SET shares = shares + 1 WHERE id = $1 RETURNING shares`, id).Scan(&shares)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, &internal_errors.ErrorWithStatusCode{Message: "Flipbook not found", StatusCode: 404}
		}
		return 0, err
	}
	return shares, nil
}

// ToggleLike flips the user's membership in flipbook_likes and adjusts the
// counter by one inside a single transaction, so two toggles in a row always
// restore the original count.
func (s *Storage) ToggleLike(id domain.FlipbookId, userId domain.UserId) (liked bool, likes int64, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	result, err := tx.Exec(`
	DELETE FROM flipbook_likes WHERE flipbook_id = $1 AND user_id = $2`, id, userId)
	if err != nil {
		return false, 0, err
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	if removed > 0 {
		err = tx.QueryRow(`
		UPDATE flipbooks SET likes = GREATEST(likes - 1, 0) WHERE id = $1 RETURNING likes`, id).Scan(&likes)
		liked = false
	} else {
		err = tx.QueryRow(`
		UPDATE flipbooks SET likes = likes + 1 WHERE id = $1 RETURNING likes`, id).Scan(&likes)
		liked = true
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, 0, &internal_errors.ErrorWithStatusCode{Message: "Flipbook not found", StatusCode: 404}
		}
		return false, 0, err
	}

	if liked {
		if _, err := tx.Exec(`
		INSERT INTO flipbook_likes(flipbook_id, user_id) VALUES($1, $2)`, id, userId); err != nil {
			return false, 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return liked, likes, nil
}

// SetPublished flips the published flag. Publishing a record with zero pages
// is rejected in the same statement that performs the update.
func (s *Storage) SetPublished(id domain.FlipbookId, published bool) error {
	result, err := s.db.Exec(`
	UPDATE flipbooks
	SET published = $2
	WHERE id = $1 AND (NOT $2 OR cardinality(page_urls) > 0)`, id, published)
	if err != nil {
		return err
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		// Distinguish missing record from empty publication
		var pages int
		err := s.db.QueryRow(`SELECT cardinality(page_urls) FROM flipbooks WHERE id = $1`, id).Scan(&pages)
		if errors.Is(err, sql.ErrNoRows) {
			return &internal_errors.ErrorWithStatusCode{Message: "Flipbook not found", StatusCode: 404}
		}
		if err != nil {
			return err
		}
		return &internal_errors.ErrorWithStatusCode{Message: "Can't publish flipbook with no pages", StatusCode: 409}
	}
	return nil
}

// DeleteFlipbook removes the record. Remote assets are not cascaded; they
// stay orphaned in the asset host.
func (s *Storage) DeleteFlipbook(id domain.FlipbookId) error {
	result, err := s.db.Exec(`DELETE FROM flipbooks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Flipbook not found", StatusCode: 404}
	}
	return nil
}
