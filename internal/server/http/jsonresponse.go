package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
)

type jsonResponse struct {
	Status  string `json:"status"` // "success" or "error"
	Data    any    `json:"data"`
	ErrCode string `json:"code,omitempty"`
	ErrMsg  string `json:"message,omitempty"`
}

func writeJsonSuccessResponse(w http.ResponseWriter, statusCode int, data any) {
	writeJson(w, statusCode, jsonResponse{Status: "success", Data: data})
}

func writeJsonErrorResponse(w http.ResponseWriter, statusCode int, errCode, errMsg string) {
	writeJson(w, statusCode, jsonResponse{Status: "error", ErrCode: errCode, ErrMsg: errMsg})
}

func writeJson(w http.ResponseWriter, statusCode int, resp jsonResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// errorMapping pairs a sentinel error with its response status and code.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{common.ErrorValidation, http.StatusBadRequest, "validation"},
	{common.ErrorUsernameTaken, http.StatusConflict, "username_taken"},
	{common.ErrorInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{common.ErrorNotFound, http.StatusNotFound, "not_found"},
	{common.ErrorAttachmentInUse, http.StatusConflict, "attachment_in_use"},
	{common.ErrorStorageWrite, http.StatusInternalServerError, "storage_failure"},
}

func handleJsonSrvcError(logger *slog.Logger, w http.ResponseWriter, err error) {
	for _, m := range errorMapping {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := m.err.Error()
		if m.status >= http.StatusInternalServerError {
			logger.Error("request failed", "error", err)
		} else {
			logger.Warn("request rejected", "error", err)
			if m.status == http.StatusBadRequest {
				msg = err.Error()
			}
		}
		writeJsonErrorResponse(w, m.status, m.code, msg)
		return
	}

	logger.Error("internal server error", "error", err)
	writeJsonErrorResponse(w, http.StatusInternalServerError, "internal", http.StatusText(http.StatusInternalServerError))
}
