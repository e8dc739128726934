package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	keysDomain "github.com/allisson/keyring/internal/keys/domain"
	"github.com/allisson/keyring/internal/keys/http/dto"
	"github.com/allisson/keyring/internal/keys/mocks"
)

// setupTestCryptoHandler creates a test handler with mocked dependencies.
func setupTestCryptoHandler(t *testing.T) (*CryptoHandler, *mocks.MockBatchCryptoUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockBatchUseCase := &mocks.MockBatchCryptoUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewCryptoHandler(mockBatchUseCase, logger)

	return handler, mockBatchUseCase
}

func TestCryptoHandler_EncryptBatchHandler(t *testing.T) {
	t.Run("Success_OrderedResults", func(t *testing.T) {
		handler, mockBatchUseCase := setupTestCryptoHandler(t)

		plaintexts := []string{"alpha", "beta", "gamma"}
		ciphertexts := []string{"Y2lwaGVyLTA=", "Y2lwaGVyLTE=", "Y2lwaGVyLTI="}

		mockBatchUseCase.On("EncryptBatch", mock.Anything, int64(42), plaintexts).
			Return(ciphertexts, nil).
			Once()

		request := dto.EncryptBatchRequest{Items: plaintexts}
		c, w := createTestContext(http.MethodPost, "/v1/keys/42/encrypt", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.EncryptBatchHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.BatchResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, ciphertexts, response.Items)

		mockBatchUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidUserID", func(t *testing.T) {
		handler, mockBatchUseCase := setupTestCryptoHandler(t)

		request := dto.EncryptBatchRequest{Items: []string{"alpha"}}
		c, w := createTestContext(http.MethodPost, "/v1/keys/abc/encrypt", request)
		c.Params = gin.Params{{Key: "user_id", Value: "abc"}}

		handler.EncryptBatchHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockBatchUseCase.AssertNotCalled(t, "EncryptBatch")
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, mockBatchUseCase := setupTestCryptoHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/keys/42/encrypt", nil)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}
		c.Request.Body = io.NopCloser(bytes.NewReader([]byte("invalid json")))

		handler.EncryptBatchHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockBatchUseCase.AssertNotCalled(t, "EncryptBatch")
	})

	t.Run("Error_EmptyBatch", func(t *testing.T) {
		handler, mockBatchUseCase := setupTestCryptoHandler(t)

		request := dto.EncryptBatchRequest{Items: []string{}}
		c, w := createTestContext(http.MethodPost, "/v1/keys/42/encrypt", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.EncryptBatchHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
		mockBatchUseCase.AssertNotCalled(t, "EncryptBatch")
	})

	t.Run("Error_EmptyItem", func(t *testing.T) {
		handler, mockBatchUseCase := setupTestCryptoHandler(t)

		request := dto.EncryptBatchRequest{Items: []string{"alpha", ""}}
		c, w := createTestContext(http.MethodPost, "/v1/keys/42/encrypt", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.EncryptBatchHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockBatchUseCase.AssertNotCalled(t, "EncryptBatch")
	})

	t.Run("Error_NoActiveKey", func(t *testing.T) {
		handler, mockBatchUseCase := setupTestCryptoHandler(t)

		plaintexts := []string{"alpha"}
		mockBatchUseCase.On("EncryptBatch", mock.Anything, int64(42), plaintexts).
			Return(nil, keysDomain.ErrKeyNotFound).
			Once()

		request := dto.EncryptBatchRequest{Items: plaintexts}
		c, w := createTestContext(http.MethodPost, "/v1/keys/42/encrypt", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.EncryptBatchHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_ProviderUnavailable", func(t *testing.T) {
		handler, mockBatchUseCase := setupTestCryptoHandler(t)

		plaintexts := []string{"alpha"}
		mockBatchUseCase.On("EncryptBatch", mock.Anything, int64(42), plaintexts).
			Return(nil, keysDomain.ErrProviderUnavailable).
			Once()

		request := dto.EncryptBatchRequest{Items: plaintexts}
		c, w := createTestContext(http.MethodPost, "/v1/keys/42/encrypt", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.EncryptBatchHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "service_unavailable", response["error"])
	})
}

func TestCryptoHandler_DecryptBatchHandler(t *testing.T) {
	t.Run("Success_OrderedResults", func(t *testing.T) {
		handler, mockBatchUseCase := setupTestCryptoHandler(t)

		ciphertexts := []string{
			base64.StdEncoding.EncodeToString([]byte("cipher-0")),
			base64.StdEncoding.EncodeToString([]byte("cipher-1")),
		}
		plaintexts := []string{"alpha", "beta"}

		mockBatchUseCase.On("DecryptBatch", mock.Anything, int64(42), ciphertexts).
			Return(plaintexts, nil).
			Once()

		request := dto.DecryptBatchRequest{Items: ciphertexts}
		c, w := createTestContext(http.MethodPost, "/v1/keys/42/decrypt", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.DecryptBatchHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.BatchResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, plaintexts, response.Items)

		mockBatchUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidBase64Item", func(t *testing.T) {
		handler, mockBatchUseCase := setupTestCryptoHandler(t)

		request := dto.DecryptBatchRequest{Items: []string{"not-valid-base64!!!"}}
		c, w := createTestContext(http.MethodPost, "/v1/keys/42/decrypt", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.DecryptBatchHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
		mockBatchUseCase.AssertNotCalled(t, "DecryptBatch")
	})

	t.Run("Error_CryptoFailed", func(t *testing.T) {
		handler, mockBatchUseCase := setupTestCryptoHandler(t)

		ciphertexts := []string{base64.StdEncoding.EncodeToString([]byte("cipher-0"))}
		mockBatchUseCase.On("DecryptBatch", mock.Anything, int64(42), ciphertexts).
			Return(nil, keysDomain.ErrCryptoFailed).
			Once()

		request := dto.DecryptBatchRequest{Items: ciphertexts}
		c, w := createTestContext(http.MethodPost, "/v1/keys/42/decrypt", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.DecryptBatchHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "invalid_input", response["error"])
	})
}
