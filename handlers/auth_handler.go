package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tournament-draws/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// TokenHandler обрабатывает POST /auth/token: API-ключ организатора в обмен на JWT.
func (h *AuthHandler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		APIKey string `json:"apiKey"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.APIKey == "" {
		badRequestResponse(w, r, errors.New("apiKey is required"))
		return
	}

	token, err := h.authService.IssueToken(r.Context(), input.APIKey)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, token, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
