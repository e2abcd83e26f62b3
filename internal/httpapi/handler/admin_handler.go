package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"issuehub/internal/httpapi/repository"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	logRepo repository.AdminLogRepository
}

func NewAdminHandler(logRepo repository.AdminLogRepository) *AdminHandler {
	return &AdminHandler{logRepo: logRepo}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/logs", h.GetLogs)
}

func (h *AdminHandler) GetLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 200 {
		size = 50
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entries, total, err := h.logRepo.GetPage(ctx, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  entries,
		"page":  page,
		"total": total,
	})
}
