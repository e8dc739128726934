// Package http provides HTTP handlers for key lifecycle and rotation
// operations. Each route is scoped to one user via the user_id path
// parameter; the raw key material never leaves the service.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/allisson/keyring/internal/httputil"
	keysDomain "github.com/allisson/keyring/internal/keys/domain"
	"github.com/allisson/keyring/internal/keys/http/dto"
	keysUseCase "github.com/allisson/keyring/internal/keys/usecase"
	customValidation "github.com/allisson/keyring/internal/validation"
)

// KeyHandler handles HTTP requests for key lifecycle and rotation operations.
type KeyHandler struct {
	keyUseCase      keysUseCase.KeyUseCase
	rotationUseCase keysUseCase.RotationUseCase
	logger          *slog.Logger
}

// NewKeyHandler creates a new key handler with required dependencies.
func NewKeyHandler(
	keyUseCase keysUseCase.KeyUseCase,
	rotationUseCase keysUseCase.RotationUseCase,
	logger *slog.Logger,
) *KeyHandler {
	return &KeyHandler{
		keyUseCase:      keyUseCase,
		rotationUseCase: rotationUseCase,
		logger:          logger,
	}
}

// parseUserID extracts and validates the user_id path parameter.
func parseUserID(c *gin.Context) (int64, error) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("invalid user_id parameter: must be a positive integer")
	}
	return userID, nil
}

// GenerateHandler provisions a new key for a user.
// POST /v1/keys/:user_id
// Returns 201 Created with key metadata.
func (h *KeyHandler) GenerateHandler(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	key, err := h.keyUseCase.GenerateKey(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapKeyToResponse(key))
}

// GetHandler retrieves a user's active key metadata.
// GET /v1/keys/:user_id
// Returns 200 OK with key metadata.
func (h *KeyHandler) GetHandler(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	key, err := h.keyUseCase.GetActiveKey(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyToResponse(key))
}

// DeactivateHandler marks a user's key as inactive.
// DELETE /v1/keys/:user_id
// Returns 204 No Content.
func (h *KeyHandler) DeactivateHandler(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.keyUseCase.DeactivateKey(c.Request.Context(), userID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// RotateHandler atomically rotates a user's key.
// POST /v1/keys/:user_id/rotate
// Returns 200 OK with the new key metadata.
func (h *KeyHandler) RotateHandler(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.RotateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	initiatedBy := req.InitiatedBy
	if initiatedBy == "" {
		initiatedBy = keysDomain.InitiatorOperator
	}

	key, err := h.rotationUseCase.RotateKey(c.Request.Context(), userID, req.Reason, initiatedBy)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyToResponse(key))
}

// EmergencyRotateHandler rotates immediately, bypassing the rotation throttle.
// POST /v1/keys/:user_id/rotate/emergency
// Returns 200 OK with the new key metadata.
func (h *KeyHandler) EmergencyRotateHandler(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.EmergencyRotateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	key, err := h.rotationUseCase.EmergencyRotateKey(c.Request.Context(), userID, req.Reason)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyToResponse(key))
}

// ScheduleRotationHandler records an accepted future rotation request.
// POST /v1/keys/:user_id/rotate/schedule
// Returns 202 Accepted with the schedule.
func (h *KeyHandler) ScheduleRotationHandler(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.ScheduleRotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	schedule, err := h.rotationUseCase.ScheduleRotation(c.Request.Context(), userID, req.ScheduledAt, req.Reason)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.MapScheduleToResponse(schedule))
}

// HistoryHandler retrieves a user's rotation audit records with pagination.
// GET /v1/keys/:user_id/history?offset=0&limit=50
// Returns 200 OK with the paginated history, most recent first.
func (h *KeyHandler) HistoryHandler(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	histories, err := h.keyUseCase.GetHistory(c.Request.Context(), userID, uint(limit), uint(offset))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapHistoriesToListResponse(histories))
}
