package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/flipper-app/flipper/internal/middleware"
	"github.com/flipper-app/flipper/internal/utils"
)

// View registers one view and returns the new count. Anonymous callers
// count too; every open of the reader is a view.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	views, err := h.gallery.View(id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, map[string]int64{"views": views})
}

// Like toggles the caller's like and returns the resulting state.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	liked, likes, err := h.gallery.ToggleLike(id, user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{"liked": liked, "likes": likes})
}

// Share registers one completed share action and returns the new count.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	shares, err := h.gallery.Share(id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, map[string]int64{"shares": shares})
}
