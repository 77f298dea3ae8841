package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mailroomhq/mailroom/interfaces"
	"github.com/mailroomhq/mailroom/internal/tracing"
)

const (
	defaultPurgeRetentionDays = 30
	defaultPurgeBatchSize     = 500
)

type MaintenanceHandler struct {
	maintenanceService interfaces.MaintenanceService
}

func NewMaintenanceHandler(maintenanceService interfaces.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceService: maintenanceService,
	}
}

// TrashPurge triggers a purge run on demand, outside the cron schedule.
func (h *MaintenanceHandler) TrashPurge() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "MaintenanceHandler.TrashPurge", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		retentionDays := defaultPurgeRetentionDays
		if raw := c.Query("retention_days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid retention_days"})
				return
			}
			retentionDays = parsed
		}

		purged, err := h.maintenanceService.PurgeTrash(ctx, time.Duration(retentionDays)*24*time.Hour, defaultPurgeBatchSize)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"purged": purged})
	}
}
