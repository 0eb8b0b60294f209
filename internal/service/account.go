package service

import (
	"time"

	"github.com/flipper-app/flipper/internal/domain"
)

type AccountStorage interface {
	UpsertAccount(acc *domain.Account) error
	GetAccount(uid domain.UserId) (*domain.Account, error)
	ListAccounts() ([]domain.Account, error)
	UpdateAccount(acc *domain.Account) error
	DeleteAccount(uid domain.UserId) error
}

// Account manages stored user profiles: self-service upsert plus the admin
// moderation surface.
type Account struct {
	storage AccountStorage
}

func NewAccount(storage AccountStorage) *Account {
	return &Account{storage}
}

// UpsertProfile stores the caller's own profile under their external uid.
func (a *Account) UpsertProfile(user domain.User, location, company, provider string) error {
	return a.storage.UpsertAccount(&domain.Account{
		Uid:       user.Id,
		Name:      user.Name,
		Email:     user.Email,
		Location:  location,
		Company:   company,
		Provider:  provider,
		CreatedAt: time.Now(),
	})
}

func (a *Account) Get(uid domain.UserId) (*domain.Account, error) {
	return a.storage.GetAccount(uid)
}

func (a *Account) List() ([]domain.Account, error) {
	return a.storage.ListAccounts()
}

func (a *Account) Update(acc *domain.Account) error {
	return a.storage.UpdateAccount(acc)
}

func (a *Account) Delete(uid domain.UserId) error {
	return a.storage.DeleteAccount(uid)
}
