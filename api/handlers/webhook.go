package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/mailroomhq/mailroom/dto"
	"github.com/mailroomhq/mailroom/interfaces"
	mailroomerrors "github.com/mailroomhq/mailroom/internal/errors"
	"github.com/mailroomhq/mailroom/internal/tracing"
)

type WebhookHandler struct {
	ingestionService interfaces.IngestionService
}

func NewWebhookHandler(ingestionService interfaces.IngestionService) *WebhookHandler {
	return &WebhookHandler{
		ingestionService: ingestionService,
	}
}

// InboundEmail receives provider webhook deliveries. Status mapping:
// 401 for failed authenticity checks, 503 for transient failures the
// provider should redeliver, 200 success-shaped for everything else
// including soft no-ops, so unfixable payloads never cause retry storms.
func (h *WebhookHandler) InboundEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "WebhookHandler.InboundEmail", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var payload dto.InboundEmailWebhook
		if err := c.ShouldBindJSON(&payload); err != nil {
			// Unparseable body cannot be fixed by redelivery.
			tracing.TraceErr(span, err)
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}

		result, err := h.ingestionService.ProcessInbound(ctx, &payload)
		if err != nil {
			switch {
			case errors.Is(err, mailroomerrors.ErrWebhookAuthFailed):
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "webhook validation failed"})
			case mailroomerrors.IsTransient(err):
				tracing.TraceErr(span, err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "temporarily unavailable"})
			default:
				tracing.TraceErr(span, err)
				c.JSON(http.StatusOK, gin.H{"success": true})
			}
			return
		}

		response := gin.H{"success": true}
		if result.EmailID != "" {
			response["email_id"] = result.EmailID
		}
		c.JSON(http.StatusOK, response)
	}
}
