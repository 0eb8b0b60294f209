package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/flipper-app/flipper/internal/domain"
	"github.com/flipper-app/flipper/internal/middleware"
	"github.com/flipper-app/flipper/internal/utils"
)

type credentials struct {
	Email    string `validate:"required" json:"email"`
	Password string `validate:"required" json:"password"`
}

// AdminLogin checks the admin credentials and issues the admin token both as
// an httpOnly cookie and in the response body.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := loadAndValidateRequestBody(r, &creds); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	accessToken, err := h.auth.AdminLogin(creds.Email, creds.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	cookie := &http.Cookie{
		Path:     "/",
		Name:     "accessToken",
		Value:    accessToken,
		MaxAge:   int(h.cfg.JwtTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
	}
	http.SetCookie(w, cookie)

	writeJSON(w, map[string]string{"accessToken": accessToken})
}

// UpdateMe upserts the caller's profile under their token identity.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Location string `json:"location"`
		Company  string `json:"company"`
		Provider string `json:"provider"`
	}
	if err := loadAndValidateRequestBody(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.account.UpsertProfile(*user, body.Location, body.Company, body.Provider); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.account.List()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, accounts)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	account, err := h.account.Get(uid)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, account)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Location string `json:"location"`
		Company  string `json:"company"`
		Provider string `json:"provider"`
	}
	if err := loadAndValidateRequestBody(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	err := h.account.Update(&domain.Account{
		Uid:      uid,
		Name:     body.Name,
		Email:    body.Email,
		Location: body.Location,
		Company:  body.Company,
		Provider: body.Provider,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	if err := h.account.Delete(uid); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ListAllFlipbooks is the moderation view: every record regardless of
// publication state.
func (h *Handler) ListAllFlipbooks(w http.ResponseWriter, r *http.Request) {
	flipbooks, err := h.gallery.ListAll()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, flipbooks)
}
