package handlers

import "github.com/mailroomhq/mailroom/services"

type APIHandlers struct {
	Webhook     *WebhookHandler
	Maintenance *MaintenanceHandler
}

func InitHandlers(s *services.Services) *APIHandlers {
	return &APIHandlers{
		Webhook:     NewWebhookHandler(s.IngestionService),
		Maintenance: NewMaintenanceHandler(s.MaintenanceService),
	}
}
