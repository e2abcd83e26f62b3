package agent

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"issuehub/internal/broadcast"

	"github.com/gin-gonic/gin"
)

// Listener is the agent's HTTP surface: it accepts push deliveries on the
// subscription endpoint, click callbacks from the notification UI, and
// proxies everything else through the asset cache policy.
type Listener struct {
	pushHandler *PushHandler
	cache       *CacheManager
	subs        SubscriptionSource
	logger      *slog.Logger
}

func NewListener(pushHandler *PushHandler, cache *CacheManager, subs SubscriptionSource, logger *slog.Logger) *Listener {
	return &Listener{pushHandler: pushHandler, cache: cache, subs: subs, logger: logger}
}

func (l *Listener) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/push/:token", l.receivePush)
	r.POST("/clicked", l.receiveClick)

	// Everything else goes through the cache policy.
	r.NoRoute(l.proxyFetch)
	return r
}

// receivePush accepts one encrypted delivery addressed to the device
// subscription. Push services treat 201 as accepted.
func (l *Listener) receivePush(c *gin.Context) {
	sub, err := l.subs.Subscription()
	if err != nil || sub == nil {
		c.Status(http.StatusNotFound)
		return
	}
	if !strings.HasSuffix(sub.Endpoint, "/push/"+c.Param("token")) {
		// Token belongs to a rotated-away subscription.
		c.Status(http.StatusGone)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	l.pushHandler.HandlePush(c.Request.Context(), body)
	c.Status(http.StatusCreated)
}

func (l *Listener) receiveClick(c *gin.Context) {
	var notification broadcast.NotificationPayload
	if err := c.ShouldBindJSON(&notification); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l.pushHandler.HandleClick(c.Request.Context(), notification)
	c.Status(http.StatusNoContent)
}

func (l *Listener) proxyFetch(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		c.Status(http.StatusMethodNotAllowed)
		return
	}

	resp, err := l.cache.Fetch(c.Request.Context(), c.Request.URL.RequestURI())
	if err != nil {
		// No network, no cached copy: surface the failed fetch.
		c.Status(http.StatusBadGateway)
		return
	}
	c.Data(resp.Status, resp.ContentType, resp.Body)
}
