package handler

import (
	"context"
	"net/http"
	"time"

	"issuehub/internal/httpapi/dto"
	"issuehub/internal/httpapi/service"

	"github.com/gin-gonic/gin"
)

type PushHandler struct {
	svc service.PushService
}

func NewPushHandler(svc service.PushService) *PushHandler {
	return &PushHandler{svc: svc}
}

func (h *PushHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/subscribe", h.Subscribe)
	rg.DELETE("/subscribe", h.Unsubscribe)
}

// Subscribe registers a device push subscription for the authenticated
// user. Idempotent on endpoint identity.
func (h *PushHandler) Subscribe(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.SubscribeResponse{Success: false, Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Register(ctx, userID.(string), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.SubscribeResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PushHandler) Unsubscribe(c *gin.Context) {
	if _, exists := c.Get("userID"); !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Unregister(ctx, req.Endpoint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
