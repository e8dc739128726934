package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/keyring/internal/httputil"
	"github.com/allisson/keyring/internal/keys/http/dto"
	keysUseCase "github.com/allisson/keyring/internal/keys/usecase"
	customValidation "github.com/allisson/keyring/internal/validation"
)

// CryptoHandler handles HTTP requests for batch encrypt and decrypt operations.
type CryptoHandler struct {
	batchUseCase keysUseCase.BatchCryptoUseCase
	logger       *slog.Logger
}

// NewCryptoHandler creates a new crypto handler with required dependencies.
func NewCryptoHandler(batchUseCase keysUseCase.BatchCryptoUseCase, logger *slog.Logger) *CryptoHandler {
	return &CryptoHandler{
		batchUseCase: batchUseCase,
		logger:       logger,
	}
}

// EncryptBatchHandler encrypts a batch of plaintexts with the user's active key.
// POST /v1/keys/:user_id/encrypt
// Returns 200 OK with base64 ciphertexts in request order.
func (h *CryptoHandler) EncryptBatchHandler(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.EncryptBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	items, err := h.batchUseCase.EncryptBatch(c.Request.Context(), userID, req.Items)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.BatchResponse{Items: items})
}

// DecryptBatchHandler decrypts a batch of base64 ciphertexts with the user's
// active key.
// POST /v1/keys/:user_id/decrypt
// Returns 200 OK with plaintexts in request order.
func (h *CryptoHandler) DecryptBatchHandler(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.DecryptBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	items, err := h.batchUseCase.DecryptBatch(c.Request.Context(), userID, req.Items)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.BatchResponse{Items: items})
}
