package cron

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v6"
	cronv3 "github.com/robfig/cron/v3"

	"github.com/mailroomhq/mailroom/interfaces"
	cron_config "github.com/mailroomhq/mailroom/internal/cron/config"
	"github.com/mailroomhq/mailroom/internal/logger"
	"github.com/mailroomhq/mailroom/internal/tracing"
)

const (
	// GroupMaintenance serializes housekeeping jobs
	GroupMaintenance = "maintenance"
)

// LOCK MANAGEMENT
var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupMaintenance: new(sync.Mutex),
	},
}

type CronManager struct {
	log         logger.Logger
	cron        *cronv3.Cron
	stopCh      chan struct{}
	jobIDs      map[string]cronv3.EntryID
	maintenance interfaces.MaintenanceService
}

func NewCronManager(log logger.Logger, maintenance interfaces.MaintenanceService) *CronManager {
	return &CronManager{
		log:         log,
		stopCh:      make(chan struct{}),
		jobIDs:      make(map[string]cronv3.EntryID),
		maintenance: maintenance,
	}
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		// Wait for jobs to finish
		<-ctx.Done()
	}
	close(cm.stopCh)
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Failed to parse cron config from environment: %v", err)
	}

	if cronConfig.CronScheduleHeartbeat != "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName = "local"
		}
		id, err := c.AddFunc(cronConfig.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from pod: %s", podName)
		})
		if err != nil {
			cm.log.Fatalf("Could not add heartbeat cron job: %v", err)
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cronConfig.CronScheduleHeartbeat)
	}

	if cronConfig.CronScheduleTrashPurge != "" {
		retention := time.Duration(cronConfig.TrashRetentionDays) * 24 * time.Hour
		id, err := c.AddFunc(cronConfig.CronScheduleTrashPurge, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupMaintenance].Lock()
			defer jobLocks.locks[GroupMaintenance].Unlock()
			cm.purgeTrash(retention, cronConfig.TrashPurgeBatchSize)
		})
		if err != nil {
			cm.log.Fatalf("Could not add trash purge cron job: %v", err)
		}
		cm.jobIDs["trash_purge"] = id
		cm.log.Infof("Registered trash purge job with schedule: %s", cronConfig.CronScheduleTrashPurge)
	}
}

// StartCron initializes and starts the cron scheduler
func (cm *CronManager) StartCron() {
	cm.log.Info("Starting cron manager")
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

func (cm *CronManager) purgeTrash(retention time.Duration, batchSize int) {
	cm.log.Info("Running trash purge")

	ctx := context.Background()

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.purgeTrash")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	purged, err := cm.maintenance.PurgeTrash(ctx, retention, batchSize)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Trash purge failed: %v", err)
		return
	}

	cm.log.Infof("Trash purge removed %d emails", purged)
}
