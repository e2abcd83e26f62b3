package agent

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issuehub/internal/push"
)

func newTestListener(sub *push.Subscription) (*Listener, *fakeNotifier) {
	gin.SetMode(gin.TestMode)
	h, _, notifier, _ := newTestHandler(sub)
	cache := NewCacheManager(newMemCacheStore(), "v1", nil, "http://127.0.0.1:0", testLogger())
	return NewListener(h, cache, &fakeSubs{sub: sub}, testLogger()), notifier
}

func TestListener_AcceptsDeliveryForCurrentToken(t *testing.T) {
	sub := newTestSubscription(t)
	listener, notifier := newTestListener(sub)
	router := listener.Router()

	token := sub.Endpoint[strings.LastIndex(sub.Endpoint, "/")+1:]
	req, _ := http.NewRequest("POST", "/push/"+token, strings.NewReader("garbage"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, notifier.shown, 1, "even an undecryptable push shows a notification")
}

func TestListener_RejectsRotatedToken(t *testing.T) {
	sub := newTestSubscription(t)
	listener, _ := newTestListener(sub)
	router := listener.Router()

	req, _ := http.NewRequest("POST", "/push/some-old-token", strings.NewReader("x"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusGone, w.Code)
}

func TestListener_NoSubscriptionIsNotFound(t *testing.T) {
	listener, _ := newTestListener(nil)
	router := listener.Router()

	req, _ := http.NewRequest("POST", "/push/any", strings.NewReader("x"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListener_Healthz(t *testing.T) {
	listener, _ := newTestListener(nil)
	router := listener.Router()

	req, _ := http.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListener_ClickEndpoint(t *testing.T) {
	listener, notifier := newTestListener(nil)
	router := listener.Router()

	body := `{"title":"Build done","data":{"url":"/issue/7"}}`
	req, _ := http.NewRequest("POST", "/clicked", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, notifier.dismissed)
}
