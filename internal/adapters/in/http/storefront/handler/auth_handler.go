// internal/adapters/in/http/storefront/handler/auth_handler.go
package storefrontHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"luminaire/internal/application/usecase"
)

// AuthHandler serves the login state and the bounded commerce login.
type AuthHandler struct {
	auth *usecase.AuthUsecase
}

func NewAuthHandler(auth *usecase.AuthUsecase) http.Handler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimRight(r.URL.Path, "/")

	if h.auth == nil {
		writeErr(w, http.StatusInternalServerError, "auth handler is not configured")
		return
	}

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/session"):
		h.handleSession(w, r)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/login"):
		h.handleLogin(w, r)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *AuthHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	ident := h.auth.Identity(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"loggedIn":            ident.LoggedIn,
		"companyType":         ident.Company,
		"additionalPriceCall": ident.Company.NeedsAdditionalPriceCall(),
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form map[string]string
	if err := readJSON(r, &form); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	result, err := h.auth.Login(r.Context(), form)
	if err != nil {
		log.Printf("[auth_handler] POST login error: %v", err)
		switch {
		case errors.Is(err, usecase.ErrAuthInvalidArgument):
			writeErr(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, usecase.ErrLoginTimeout):
			writeErr(w, http.StatusGatewayTimeout, err.Error())
		default:
			writeErr(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}
