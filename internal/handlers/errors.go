package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ArowuTest/sequence-draw-backend/internal/engine"
	"github.com/ArowuTest/sequence-draw-backend/internal/middleware"
	"github.com/ArowuTest/sequence-draw-backend/internal/services"
	"github.com/gin-gonic/gin"
)

var statusByCode = map[string]int{
	"INVALID_VALUE":                 http.StatusBadRequest,
	"INVALID_TOKEN":                 http.StatusBadRequest,
	"DUPLICATE_NAME":                http.StatusConflict,
	"CAPACITY_EXCEEDED":             http.StatusConflict,
	"STATUS_CONFLICT":               http.StatusConflict,
	"WINNER_COUNT_EXCEEDS_CAPACITY": http.StatusUnprocessableEntity,
	"NO_ELIGIBLE_PARTICIPANTS":      http.StatusUnprocessableEntity,
	"PARTICIPANT_NOT_FOUND":         http.StatusNotFound,
	"PERSISTENCE_ERROR":             http.StatusInternalServerError,
}

// respondError writes err as {"error": message, "code": tag}
func respondError(c *gin.Context, err error) {
	status, body := errorBody(c, err)
	c.JSON(status, body)
}

// respondErrorWithResult is respondError for operations that may have
// committed part of their work; result tells the client what was kept.
func respondErrorWithResult(c *gin.Context, err error, result interface{}) {
	status, body := errorBody(c, err)
	body["result"] = result
	c.JSON(status, body)
}

func errorBody(c *gin.Context, err error) (int, gin.H) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, services.ErrNotPrivileged):
		return http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "UNAUTHORIZED"}
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "INVALID_CREDENTIALS"}
	}

	code := engine.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err, "code", code, "requestId", c.GetString(middleware.RequestIDKey))
		msg = "Internal server error"
		if code == "PERSISTENCE_ERROR" {
			msg = "Storage is unavailable"
		}
	}
	return status, gin.H{"error": msg, "code": code}
}

// respondBindError reports a request body that could not be decoded
func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error(), "code": "INVALID_VALUE"})
}
