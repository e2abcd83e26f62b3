package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"issuehub/internal/httpapi/models"
)

// MockAdminLogRepository mocks the AdminLogRepository interface
type MockAdminLogRepository struct {
	mock.Mock
}

func (m *MockAdminLogRepository) Append(ctx context.Context, entry *models.AdminLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAdminLogRepository) GetPage(ctx context.Context, page, size int) ([]models.AdminLog, int64, error) {
	args := m.Called(ctx, page, size)
	return args.Get(0).([]models.AdminLog), args.Get(1).(int64), args.Error(2)
}

func TestAdminLog_RecordsMutatingRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := new(MockAdminLogRepository)

	repo.On("Append", mock.Anything, mock.MatchedBy(func(e *models.AdminLog) bool {
		return e.ActorID == "user-1" &&
			e.Action == "PUT /issues/:id" &&
			e.Entity == "7" &&
			e.Status == http.StatusOK
	})).Return(nil)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userID", "user-1") })
	r.Use(AdminLog(repo, slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.PUT("/issues/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest("PUT", "/issues/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	repo.AssertExpectations(t)
}

func TestAdminLog_SkipsReads(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := new(MockAdminLogRepository)

	r := gin.New()
	r.Use(AdminLog(repo, slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.GET("/issues/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest("GET", "/issues/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestLoginRateLimit_ThrottlesAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/login", LoginRateLimit(rate.Limit(0), 2), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("POST", "/login", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	require.Equal(t, http.StatusOK, codes[0])
	require.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2], "burst exhausted")
}
