package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mailroomhq/mailroom/internal/utils"
)

// HealthCheck provides a simple health check endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// WebhookTest echoes liveness for webhook endpoint smoke checks.
func WebhookTest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   utils.Now(),
	})
}
