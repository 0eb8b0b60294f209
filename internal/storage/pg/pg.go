package pg

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/flipper-app/flipper/internal/config"
	"github.com/flipper-app/flipper/internal/logger"
)

type Storage struct {
	db  *sql.DB
	cfg *config.Config
}

func New(cfg *config.Config) (*Storage, error) {
	logger.Log.Info("connecting to db")
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("successfully connected to db")

	storage := &Storage{db, cfg}

	if initPath := cfg.Public.Pg.InitPath; initPath != "" {
		if err := storage.applyInitScript(initPath); err != nil {
			db.Close()
			return nil, err
		}
	}

	return storage, nil
}

func Connect(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Public.Pg.Host, cfg.Public.Pg.Port, cfg.Public.Pg.User, cfg.Public.Pg.Password, cfg.Public.Pg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	return db, nil
}

func (s *Storage) applyInitScript(path string) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("can't read init script %s: %w", path, err)
	}
	if _, err := s.db.Exec(string(script)); err != nil {
		return fmt.Errorf("failed to apply init script: %w", err)
	}
	return nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}
