package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Trash purge, daily at 3am
	CronScheduleTrashPurge string `env:"CRON_SCHEDULE_TRASH_PURGE" envDefault:"0 0 3 * * *"`
	// How long trashed emails are kept before permanent deletion
	TrashRetentionDays int `env:"TRASH_RETENTION_DAYS" envDefault:"30"`
	// Max emails removed per purge run
	TrashPurgeBatchSize int `env:"TRASH_PURGE_BATCH_SIZE" envDefault:"500"`
}
