package pg

import (
	"database/sql"
	"errors"
	"time"

	"github.com/flipper-app/flipper/internal/domain"
	internal_errors "github.com/flipper-app/flipper/internal/errors"
)

// UpsertAccount creates or refreshes a user profile keyed by the external uid.
func (s *Storage) UpsertAccount(acc *domain.Account) error {
	createdTs := acc.CreatedAt.UTC().Round(time.Microsecond)
	_, err := s.db.Exec(`
	INSERT INTO users(uid, name, email, location, company, provider, created)
	VALUES($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (uid) DO UPDATE SET
		name = EXCLUDED.name,
		email = EXCLUDED.email,
		location = EXCLUDED.location,
		company = EXCLUDED.company,
		provider = EXCLUDED.provider`,
		acc.Uid, acc.Name, acc.Email, acc.Location, acc.Company, acc.Provider, createdTs)
	return err
}

func (s *Storage) GetAccount(uid domain.UserId) (*domain.Account, error) {
	var acc domain.Account
	err := s.db.QueryRow(`
	SELECT uid, name, email, location, company, provider, created
	FROM users
	WHERE uid = $1`, uid).Scan(
		&acc.Uid, &acc.Name, &acc.Email, &acc.Location, &acc.Company, &acc.Provider, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: 404}
		}
		return nil, err
	}
	return &acc, nil
}

func (s *Storage) ListAccounts() ([]domain.Account, error) {
	rows, err := s.db.Query(`
	SELECT uid, name, email, location, company, provider, created
	FROM users
	ORDER BY created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var acc domain.Account
		if err := rows.Scan(&acc.Uid, &acc.Name, &acc.Email, &acc.Location, &acc.Company, &acc.Provider, &acc.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// UpdateAccount applies an admin edit to the mutable profile fields.
func (s *Storage) UpdateAccount(acc *domain.Account) error {
	result, err := s.db.Exec(`
	UPDATE users SET
		name = $2,
		email = $3,
		location = $4,
		company = $5
	WHERE uid = $1`,
		acc.Uid, acc.Name, acc.Email, acc.Location, acc.Company)
	if err != nil {
		return err
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: 404}
	}
	return nil
}

func (s *Storage) DeleteAccount(uid domain.UserId) error {
	result, err := s.db.Exec(`DELETE FROM users WHERE uid = $1`, uid)
	if err != nil {
		return err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: 404}
	}
	return nil
}
