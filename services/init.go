package services

import (
	"github.com/mailroomhq/mailroom/config"
	"github.com/mailroomhq/mailroom/interfaces"
	"github.com/mailroomhq/mailroom/internal/logger"
	"github.com/mailroomhq/mailroom/internal/repository"
	"github.com/mailroomhq/mailroom/services/cache"
	"github.com/mailroomhq/mailroom/services/email_filter"
	"github.com/mailroomhq/mailroom/services/events"
	"github.com/mailroomhq/mailroom/services/ingestion"
	"github.com/mailroomhq/mailroom/services/maintenance"
	"github.com/mailroomhq/mailroom/services/provider"
	"github.com/mailroomhq/mailroom/services/storage"
)

type Services struct {
	StorageService     interfaces.StorageService
	CacheService       interfaces.CacheService
	EventPublisher     interfaces.EventPublisher
	EmailFilterService interfaces.EmailFilterService
	IngestionService   interfaces.IngestionService
	MaintenanceService interfaces.MaintenanceService
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	storageService, err := storage.NewR2StorageService(
		cfg.R2StorageConfig.AccountID,
		cfg.R2StorageConfig.AccessKeyID,
		cfg.R2StorageConfig.AccessKeySecret,
		cfg.R2StorageConfig.EmailBucket,
	)
	if err != nil {
		return nil, err
	}

	redisClient := cache.NewRedisClient(cfg.RedisConfig.Addr, cfg.RedisConfig.Password, cfg.RedisConfig.DB)
	cacheService := cache.NewRedisCacheService(redisClient, log)

	// Event publishing is optional; without a broker URL the pipeline
	// simply skips the best-effort publish step.
	var publisher interfaces.EventPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		rabbitPublisher, err := events.NewRabbitMQPublisher(cfg.AppConfig.RabbitMQURL, log, nil)
		if err != nil {
			return nil, err
		}
		publisher = rabbitPublisher
	}

	mailerooClient := provider.NewMailerooClient(cfg.MailerooConfig, log)
	filterService := email_filter.NewEmailFilterService(log)

	offloader := ingestion.NewBlobOffloader(
		mailerooClient,
		storageService,
		repos.EmailAttachmentRepository,
		log,
	)

	ingestionService := ingestion.NewIngestionService(
		repos,
		filterService,
		offloader,
		mailerooClient,
		mailerooClient,
		cacheService,
		publisher,
		log,
	)

	maintenanceService := maintenance.NewMaintenanceService(repos, storageService, cacheService, log)

	return &Services{
		StorageService:     storageService,
		CacheService:       cacheService,
		EventPublisher:     publisher,
		EmailFilterService: filterService,
		IngestionService:   ingestionService,
		MaintenanceService: maintenanceService,
	}, nil
}
