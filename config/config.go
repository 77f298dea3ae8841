package config

type AppConfig struct {
	APIPort     string `env:"PORT,required" envDefault:"12222"`
	APIKey      string `env:"API_KEY,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
}

type DatabaseConfig struct {
	Host            string `env:"POSTGRES_HOST,required"`
	Port            string `env:"POSTGRES_PORT,required"`
	User            string `env:"POSTGRES_USER,required"`
	DBName          string `env:"POSTGRES_DB_NAME,required"`
	Password        string `env:"POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"POSTGRES_DB_MAX_CONN" envDefault:"50"`
	MaxIdleConn     int    `env:"POSTGRES_DB_MAX_IDLE_CONN" envDefault:"10"`
	ConnMaxLifetime int    `env:"POSTGRES_DB_CONN_MAX_LIFETIME" envDefault:"60"`
	LogLevel        string `env:"POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
}

type R2StorageConfig struct {
	AccountID       string `env:"CLOUDFLARE_R2_ACCOUNT_ID,required"`
	AccessKeyID     string `env:"CLOUDFLARE_R2_ACCESS_KEY_ID,required"`
	AccessKeySecret string `env:"CLOUDFLARE_R2_ACCESS_KEY_SECRET,required"`
	EmailBucket     string `env:"BUCKET_NAME_EMAIL_CONTENT" envDefault:"email-content"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type MailerooConfig struct {
	ValidationTimeoutSeconds int `env:"MAILEROO_VALIDATION_TIMEOUT_SECONDS" envDefault:"5"`
	FetchTimeoutSeconds      int `env:"MAILEROO_FETCH_TIMEOUT_SECONDS" envDefault:"30"`
}
