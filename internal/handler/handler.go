package handler

import (
	"net/http"

	"encoding/json"
	"log"

	"github.com/flipper-app/flipper/internal/config"
	"github.com/flipper-app/flipper/internal/service"
)

type Handler struct {
	auth    *service.Auth
	ingest  service.IngestService
	gallery *service.Gallery
	account *service.Account
	cfg     *config.Config
}

func New(auth *service.Auth, ingest service.IngestService, gallery *service.Gallery, account *service.Account, cfg *config.Config) *Handler {
	return &Handler{auth, ingest, gallery, account, cfg}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Print(err.Error())
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
}
