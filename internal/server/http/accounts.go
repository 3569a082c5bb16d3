package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"

	"github.com/dmitrijs2005/recipekeeper/internal/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/common"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func decodeCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("%w: decode body: %v", common.ErrorValidation, err)
	}
	return req, nil
}

func (httpserver *HttpServer) createAccount(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	req, err := decodeCredentials(r)
	if err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}

	if err := httpserver.accounts.CreateAccount(r.Context(), req.Username, req.Password); err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}

	writeJsonSuccessResponse(w, http.StatusCreated, map[string]string{"username": req.Username})
}

func (httpserver *HttpServer) createSession(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	req, err := decodeCredentials(r)
	if err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}

	acc, err := httpserver.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}

	issued := time.Now()
	token, err := auth.GenerateToken(acc.Username, httpserver.opts.JWTKey, httpserver.opts.SessionValidity)
	if err != nil {
		handleJsonSrvcError(logger, w, err)
		return
	}

	writeJsonSuccessResponse(w, http.StatusOK, sessionResponse{
		Token:     token,
		Username:  acc.Username,
		ExpiresAt: issued.Add(httpserver.opts.SessionValidity).UTC(),
	})
}
