package config

type AppConfig struct {
	APIPort         string `env:"PORT,required" envDefault:"12222"`
	RabbitMQURL     string `env:"RABBITMQ_URL"`
	GraphQLMaxDepth int    `env:"GRAPHQL_MAX_DEPTH" envDefault:"10"`
}

type RecipestackDatabaseConfig struct {
	Host            string `env:"RECIPESTACK_POSTGRES_HOST,required"`
	Port            string `env:"RECIPESTACK_POSTGRES_PORT,required"`
	User            string `env:"RECIPESTACK_POSTGRES_USER,required"`
	DBName          string `env:"RECIPESTACK_POSTGRES_DB_NAME,required"`
	Password        string `env:"RECIPESTACK_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"RECIPESTACK_POSTGRES_DB_MAX_CONN" envDefault:"100"`
	MaxIdleConn     int    `env:"RECIPESTACK_POSTGRES_DB_MAX_IDLE_CONN" envDefault:"10"`
	ConnMaxLifetime int    `env:"RECIPESTACK_POSTGRES_DB_CONN_MAX_LIFETIME" envDefault:"60"`
	LogLevel        string `env:"RECIPESTACK_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"RECIPESTACK_POSTGRES_SSL_MODE" envDefault:"require"`
}

type AuthConfig struct {
	SigningKey           string `env:"JWT_SIGNING_KEY,required"`
	AccessTokenLifetime  int    `env:"JWT_ACCESS_TOKEN_LIFETIME_MINUTES" envDefault:"5"`
	RefreshTokenLifetime int    `env:"JWT_REFRESH_TOKEN_LIFETIME_MINUTES" envDefault:"1440"`
	RotateRefreshTokens  bool   `env:"JWT_ROTATE_REFRESH_TOKENS" envDefault:"false"`
}

type EventsConfig struct {
	MessageTTLHours       int `env:"RABBITMQ_MESSAGE_TTL_HOURS" envDefault:"240"`
	PublishMaxRetries     int `env:"RABBITMQ_PUBLISH_MAX_RETRIES" envDefault:"3"`
	PublishTimeoutSeconds int `env:"RABBITMQ_PUBLISH_TIMEOUT_SECONDS" envDefault:"5"`
}

type RedisConfig struct {
	URL string `env:"REDIS_URL"`
}
