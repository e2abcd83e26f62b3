package middleware

import (
	"log/slog"
	"net/http"

	"issuehub/internal/httpapi/models"
	"issuehub/internal/httpapi/repository"

	"github.com/gin-gonic/gin"
)

// AdminLog records every mutating request in the admin log. Runs after the
// handler so the final status code is captured.
func AdminLog(repo repository.AdminLogRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet {
			return
		}

		actorID, _ := c.Get("userID")
		actor, _ := actorID.(string)

		entry := &models.AdminLog{
			ActorID: actor,
			Action:  c.Request.Method + " " + c.FullPath(),
			Entity:  c.Param("id"),
			Status:  c.Writer.Status(),
		}
		if err := repo.Append(c.Request.Context(), entry); err != nil {
			logger.Error("failed to append admin log", "error", err)
		}
	}
}
