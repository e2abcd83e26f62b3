package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"issuehub/internal/httpapi/dto"
	"issuehub/internal/httpapi/service"
	"issuehub/internal/push"
)

// MockPushService mocks the PushService interface
type MockPushService struct {
	mock.Mock
}

func (m *MockPushService) Register(ctx context.Context, userID string, req dto.SubscribeRequest) (*dto.SubscribeResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SubscribeResponse), args.Error(1)
}

func (m *MockPushService) Unregister(ctx context.Context, endpoint string) error {
	args := m.Called(ctx, endpoint)
	return args.Error(0)
}

func (m *MockPushService) SendToUser(ctx context.Context, userID string, payload push.Payload) {
	m.Called(ctx, userID, payload)
}

func pushRouter(svc service.PushService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("userID", userID)
		}
		c.Next()
	})
	NewPushHandler(svc).RegisterRoutes(r.Group("/push"))
	return r
}

func TestSubscribe_Success(t *testing.T) {
	mockSvc := new(MockPushService)
	router := pushRouter(mockSvc, "user-1")

	reqBody := dto.SubscribeRequest{
		Endpoint: "http://127.0.0.1:8090/push/abc",
		Keys:     dto.SubscriptionKeys{P256dh: "pk", Auth: "auth"},
	}
	mockSvc.On("Register", mock.Anything, "user-1", reqBody).
		Return(&dto.SubscribeResponse{Success: true, Message: "subscription registered", TokenID: "token-1"}, nil)

	body, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/push/subscribe", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.SubscribeResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response.Success)
	assert.Equal(t, "token-1", response.TokenID)

	mockSvc.AssertExpectations(t)
}

func TestSubscribe_MissingKeys(t *testing.T) {
	mockSvc := new(MockPushService)
	router := pushRouter(mockSvc, "user-1")

	body := []byte(`{"endpoint":"http://127.0.0.1:8090/push/abc"}`)
	req, _ := http.NewRequest("POST", "/push/subscribe", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscribe_Unauthenticated(t *testing.T) {
	mockSvc := new(MockPushService)
	router := pushRouter(mockSvc, "")

	req, _ := http.NewRequest("POST", "/push/subscribe", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnsubscribe_Success(t *testing.T) {
	mockSvc := new(MockPushService)
	router := pushRouter(mockSvc, "user-1")

	mockSvc.On("Unregister", mock.Anything, "http://127.0.0.1:8090/push/abc").Return(nil)

	body := []byte(`{"endpoint":"http://127.0.0.1:8090/push/abc"}`)
	req, _ := http.NewRequest("DELETE", "/push/subscribe", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockSvc.AssertExpectations(t)
}
