package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	keysDomain "github.com/allisson/keyring/internal/keys/domain"
	"github.com/allisson/keyring/internal/keys/http/dto"
	"github.com/allisson/keyring/internal/keys/mocks"
)

// setupTestKeyHandler creates a test handler with mocked dependencies.
func setupTestKeyHandler(t *testing.T) (*KeyHandler, *mocks.MockKeyUseCase, *mocks.MockRotationUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockKeyUseCase := &mocks.MockKeyUseCase{}
	mockRotationUseCase := &mocks.MockRotationUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewKeyHandler(mockKeyUseCase, mockRotationUseCase, logger)

	return handler, mockKeyUseCase, mockRotationUseCase
}

func testKey(userID int64) *keysDomain.Key {
	now := time.Now().UTC()
	return &keysDomain.Key{
		UserID:          userID,
		KeyMaterial:     "base64key://dGVzdC1rZXktbWF0ZXJpYWwtcmVmZXJlbmNl",
		CreatedAt:       now,
		UpdatedAt:       now,
		IsActive:        true,
		RotationVersion: 1,
		LockVersion:     1,
	}
}

func TestKeyHandler_GenerateHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		handler, mockKeyUseCase, _ := setupTestKeyHandler(t)

		key := testKey(42)
		mockKeyUseCase.On("GenerateKey", mock.Anything, int64(42)).Return(key, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys/42", nil)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.KeyResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, int64(42), response.UserID)
		assert.Equal(t, key.Fingerprint(), response.KeyFingerprint)
		assert.Equal(t, uint(1), response.RotationVersion)
		assert.True(t, response.IsActive)
		assert.NotContains(t, w.Body.String(), key.KeyMaterial)

		mockKeyUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidUserID", func(t *testing.T) {
		handler, mockKeyUseCase, _ := setupTestKeyHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/keys/abc", nil)
		c.Params = gin.Params{{Key: "user_id", Value: "abc"}}

		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
		mockKeyUseCase.AssertNotCalled(t, "GenerateKey")
	})

	t.Run("Error_NonPositiveUserID", func(t *testing.T) {
		handler, mockKeyUseCase, _ := setupTestKeyHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/keys/0", nil)
		c.Params = gin.Params{{Key: "user_id", Value: "0"}}

		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockKeyUseCase.AssertNotCalled(t, "GenerateKey")
	})

	t.Run("Error_KeyAlreadyExists", func(t *testing.T) {
		handler, mockKeyUseCase, _ := setupTestKeyHandler(t)

		mockKeyUseCase.On("GenerateKey", mock.Anything, int64(42)).
			Return(nil, keysDomain.ErrKeyAlreadyExists).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys/42", nil)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "conflict", response["error"])
	})
}

func TestKeyHandler_GetHandler(t *testing.T) {
	t.Run("Success_ActiveKey", func(t *testing.T) {
		handler, mockKeyUseCase, _ := setupTestKeyHandler(t)

		key := testKey(42)
		mockKeyUseCase.On("GetActiveKey", mock.Anything, int64(42)).Return(key, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/keys/42", nil)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.KeyResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, key.Fingerprint(), response.KeyFingerprint)
		assert.NotContains(t, w.Body.String(), key.KeyMaterial)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, mockKeyUseCase, _ := setupTestKeyHandler(t)

		mockKeyUseCase.On("GetActiveKey", mock.Anything, int64(42)).
			Return(nil, keysDomain.ErrKeyNotFound).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/keys/42", nil)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "not_found", response["error"])
	})

	t.Run("Error_KeyExpired", func(t *testing.T) {
		handler, mockKeyUseCase, _ := setupTestKeyHandler(t)

		mockKeyUseCase.On("GetActiveKey", mock.Anything, int64(42)).
			Return(nil, keysDomain.ErrKeyExpired).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/keys/42", nil)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestKeyHandler_DeactivateHandler(t *testing.T) {
	t.Run("Success_Deactivated", func(t *testing.T) {
		handler, mockKeyUseCase, _ := setupTestKeyHandler(t)

		mockKeyUseCase.On("DeactivateKey", mock.Anything, int64(42)).Return(nil).Once()

		c, w := createTestContext(http.MethodDelete, "/v1/keys/42", nil)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.DeactivateHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, mockKeyUseCase, _ := setupTestKeyHandler(t)

		mockKeyUseCase.On("DeactivateKey", mock.Anything, int64(42)).
			Return(keysDomain.ErrKeyNotFound).
			Once()

		c, w := createTestContext(http.MethodDelete, "/v1/keys/42", nil)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.DeactivateHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestKeyHandler_RotateHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		handler, _, mockRotationUseCase := setupTestKeyHandler(t)

		key := testKey(42)
		key.RotationVersion = 2

		request := dto.RotateKeyRequest{
			Reason:      "scheduled quarterly rotation",
			InitiatedBy: "ops-team",
		}

		mockRotationUseCase.On(
			"RotateKey", mock.Anything, int64(42), "scheduled quarterly rotation", "ops-team",
		).Return(key, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys/42/rotate", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.RotateHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.KeyResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, uint(2), response.RotationVersion)

		mockRotationUseCase.AssertExpectations(t)
	})

	t.Run("Success_DefaultInitiator", func(t *testing.T) {
		handler, _, mockRotationUseCase := setupTestKeyHandler(t)

		key := testKey(42)
		request := dto.RotateKeyRequest{Reason: "credential hygiene"}

		mockRotationUseCase.On(
			"RotateKey", mock.Anything, int64(42), "credential hygiene", keysDomain.InitiatorOperator,
		).Return(key, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys/42/rotate", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.RotateHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockRotationUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _, mockRotationUseCase := setupTestKeyHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/keys/42/rotate", nil)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}
		c.Request.Body = io.NopCloser(bytes.NewReader([]byte("invalid json")))

		handler.RotateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockRotationUseCase.AssertNotCalled(t, "RotateKey")
	})

	t.Run("Error_BlankReason", func(t *testing.T) {
		handler, _, mockRotationUseCase := setupTestKeyHandler(t)

		request := dto.RotateKeyRequest{Reason: "   "}

		c, w := createTestContext(http.MethodPost, "/v1/keys/42/rotate", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.RotateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
		mockRotationUseCase.AssertNotCalled(t, "RotateKey")
	})

	t.Run("Error_RotationInProgress", func(t *testing.T) {
		handler, _, mockRotationUseCase := setupTestKeyHandler(t)

		request := dto.RotateKeyRequest{Reason: "scheduled quarterly rotation"}

		mockRotationUseCase.On(
			"RotateKey", mock.Anything, int64(42), "scheduled quarterly rotation", keysDomain.InitiatorOperator,
		).Return(nil, keysDomain.ErrRotationInProgress).Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys/42/rotate", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.RotateHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Error_Throttled", func(t *testing.T) {
		handler, _, mockRotationUseCase := setupTestKeyHandler(t)

		request := dto.RotateKeyRequest{Reason: "scheduled quarterly rotation"}

		mockRotationUseCase.On(
			"RotateKey", mock.Anything, int64(42), "scheduled quarterly rotation", keysDomain.InitiatorOperator,
		).Return(nil, keysDomain.ErrRotationThrottled).Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys/42/rotate", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.RotateHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestKeyHandler_EmergencyRotateHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		handler, _, mockRotationUseCase := setupTestKeyHandler(t)

		key := testKey(42)
		key.RotationVersion = 3

		request := dto.EmergencyRotateKeyRequest{Reason: "suspected key compromise"}

		mockRotationUseCase.On(
			"EmergencyRotateKey", mock.Anything, int64(42), "suspected key compromise",
		).Return(key, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys/42/rotate/emergency", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.EmergencyRotateHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.KeyResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, uint(3), response.RotationVersion)
	})

	t.Run("Error_MissingReason", func(t *testing.T) {
		handler, _, mockRotationUseCase := setupTestKeyHandler(t)

		request := dto.EmergencyRotateKeyRequest{}

		c, w := createTestContext(http.MethodPost, "/v1/keys/42/rotate/emergency", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.EmergencyRotateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockRotationUseCase.AssertNotCalled(t, "EmergencyRotateKey")
	})
}

func TestKeyHandler_ScheduleRotationHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		handler, _, mockRotationUseCase := setupTestKeyHandler(t)

		scheduledAt := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
		request := dto.ScheduleRotationRequest{
			ScheduledAt: scheduledAt,
			Reason:      "planned maintenance window",
		}

		schedule := &keysDomain.ScheduledRotation{
			ID:          uuid.Must(uuid.NewV7()),
			UserID:      42,
			ScheduledAt: scheduledAt,
			Reason:      "planned maintenance window",
			Status:      keysDomain.ScheduleStatusPending,
			CreatedAt:   time.Now().UTC(),
		}

		mockRotationUseCase.On(
			"ScheduleRotation", mock.Anything, int64(42),
			mock.AnythingOfType("time.Time"), "planned maintenance window",
		).Return(schedule, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys/42/rotate/schedule", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.ScheduleRotationHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)

		var response dto.ScheduledRotationResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, schedule.ID.String(), response.ID)
		assert.Equal(t, keysDomain.ScheduleStatusPending, response.Status)
	})

	t.Run("Error_MissingScheduledAt", func(t *testing.T) {
		handler, _, mockRotationUseCase := setupTestKeyHandler(t)

		request := dto.ScheduleRotationRequest{Reason: "planned maintenance window"}

		c, w := createTestContext(http.MethodPost, "/v1/keys/42/rotate/schedule", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.ScheduleRotationHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockRotationUseCase.AssertNotCalled(t, "ScheduleRotation")
	})

	t.Run("Error_TimeNotInFuture", func(t *testing.T) {
		handler, _, mockRotationUseCase := setupTestKeyHandler(t)

		scheduledAt := time.Now().UTC().Add(-time.Hour)
		request := dto.ScheduleRotationRequest{
			ScheduledAt: scheduledAt,
			Reason:      "planned maintenance window",
		}

		mockRotationUseCase.On(
			"ScheduleRotation", mock.Anything, int64(42),
			mock.AnythingOfType("time.Time"), "planned maintenance window",
		).Return(nil, keysDomain.ErrInvalidScheduleTime).Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys/42/rotate/schedule", request)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.ScheduleRotationHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestKeyHandler_HistoryHandler(t *testing.T) {
	t.Run("Success_ReturnsHistory", func(t *testing.T) {
		handler, mockKeyUseCase, _ := setupTestKeyHandler(t)

		now := time.Now().UTC()
		histories := []*keysDomain.KeyHistory{
			{
				ID:                  2,
				UserID:              42,
				PriorKeyFingerprint: "fp-2",
				RotationVersion:     2,
				RotationDate:        now,
				RotationReason:      "scheduled quarterly rotation",
				InitiatedBy:         keysDomain.InitiatorOperator,
				SystemVersion:       "1.0.0",
			},
			{
				ID:                  1,
				UserID:              42,
				PriorKeyFingerprint: "fp-1",
				RotationVersion:     1,
				RotationDate:        now.Add(-time.Hour),
				RotationReason:      "initial rotation",
				InitiatedBy:         keysDomain.InitiatorOperator,
				SystemVersion:       "1.0.0",
			},
		}

		mockKeyUseCase.On("GetHistory", mock.Anything, int64(42), uint(50), uint(0)).
			Return(histories, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/keys/42/history", nil)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}

		handler.HistoryHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListKeyHistoryResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Len(t, response.Data, 2)
		assert.Equal(t, int64(2), response.Data[0].ID)
		assert.Equal(t, "fp-2", response.Data[0].PriorKeyFingerprint)
	})

	t.Run("Success_CustomPagination", func(t *testing.T) {
		handler, mockKeyUseCase, _ := setupTestKeyHandler(t)

		mockKeyUseCase.On("GetHistory", mock.Anything, int64(42), uint(10), uint(20)).
			Return([]*keysDomain.KeyHistory{}, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/keys/42/history?offset=20&limit=10", nil)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}
		c.Request.URL.RawQuery = "offset=20&limit=10"

		handler.HistoryHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListKeyHistoryResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Empty(t, response.Data)
	})

	t.Run("Error_InvalidPagination", func(t *testing.T) {
		handler, mockKeyUseCase, _ := setupTestKeyHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/keys/42/history?limit=invalid", nil)
		c.Params = gin.Params{{Key: "user_id", Value: "42"}}
		c.Request.URL.RawQuery = "limit=invalid"

		handler.HistoryHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockKeyUseCase.AssertNotCalled(t, "GetHistory")
	})
}
