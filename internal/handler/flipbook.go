package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/flipper-app/flipper/internal/logger"
	"github.com/flipper-app/flipper/internal/middleware"
	"github.com/flipper-app/flipper/internal/utils"
)

// CreateFlipbook ingests a publication batch: multipart form with "title",
// optional "description" and one or more "files" entries. Pages are uploaded
// in input order; the record is written only after every page is stored.
func (h *Handler) CreateFlipbook(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	title, description, files, err := h.parseUploadRequest(w, r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	id, err := h.ingest.Create(r.Context(), *user, title, description, files,
		func(completed, total int, status string) {
			logger.Log.Debug("ingest progress", "owner", user.Id, "completed", completed, "total", total, "status", status)
		})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"id": id})
}

func (h *Handler) GetFlipbook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	fb, err := h.gallery.Get(id, middleware.GetUserFromContext(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, fb)
}

func (h *Handler) ListPublished(w http.ResponseWriter, r *http.Request) {
	flipbooks, err := h.gallery.ListPublished()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, flipbooks)
}

// MyFlipbooks lists the caller's own flipbooks, published or not.
func (h *Handler) MyFlipbooks(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	flipbooks, err := h.gallery.ListByOwner(user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, flipbooks)
}

func (h *Handler) DeleteFlipbook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	user := middleware.GetUserFromContext(r)

	if err := h.gallery.Delete(id, user); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) SetPublished(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	user := middleware.GetUserFromContext(r)

	var body struct {
		Published *bool `validate:"required" json:"published"`
	}
	if err := loadAndValidateRequestBody(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.gallery.SetPublished(id, user, *body.Published); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
