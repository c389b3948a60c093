package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App            App            `yaml:"app"`
	Log            Log            `yaml:"log"`
	Metrics        Metrics        `yaml:"metrics"`
	Kafka          Kafka          `yaml:"kafka"`
	Postgres       Postgres       `yaml:"postgres"`
	Redis          Redis          `yaml:"redis"`
	Services       Services       `yaml:"services"`
	Campaign       Campaign       `yaml:"campaign"`
	Recommendation Recommendation `yaml:"recommendation"`
	Sweep          Sweep          `yaml:"sweep"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"notification-pipeline"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Metrics struct {
	NotifierAddr    string `yaml:"notifier_addr" env:"NOTIFIER_METRICS_ADDR" env-default:":9091"`
	RecommenderAddr string `yaml:"recommender_addr" env:"RECOMMENDER_METRICS_ADDR" env-default:":9093"`
}

type Kafka struct {
	Brokers                 []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	HighPriorityGroupID     string   `yaml:"high_priority_group_id" env:"KAFKA_HIGH_PRIORITY_GROUP_ID" env-default:"priority1-notification-group"`
	StandardPriorityGroupID string   `yaml:"standard_priority_group_id" env:"KAFKA_STANDARD_PRIORITY_GROUP_ID" env-default:"priority2-notification-group"`
	DeadLetterTopic         string   `yaml:"dead_letter_topic" env:"KAFKA_DEAD_LETTER_TOPIC" env-default:"dead-letter-queue"`
	RecommendationTopic     string   `yaml:"recommendation_topic" env:"KAFKA_RECOMMENDATION_TOPIC" env-default:"recommendation-events"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"user"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"password"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"notifications_db"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Services struct {
	UsersURL    string `yaml:"users_url" env:"USERS_SERVICE_URL" env-default:"http://localhost:5001/users"`
	ProductsURL string `yaml:"products_url" env:"PRODUCTS_SERVICE_URL" env-default:"http://localhost:5002/products"`
	OrdersURL   string `yaml:"orders_url" env:"ORDERS_SERVICE_URL" env-default:"http://localhost:5003/orders"`
	MailerURL   string `yaml:"mailer_url" env:"MAILER_SERVICE_URL" env-default:"http://localhost:5004"`
}

type Campaign struct {
	Schedule  string `yaml:"schedule" env:"CAMPAIGN_SCHEDULE" env-default:"* * * * *"`
	BatchSize int    `yaml:"batch_size" env:"CAMPAIGN_BATCH_SIZE" env-default:"10"`
}

type Recommendation struct {
	Schedule        string `yaml:"schedule" env:"RECOMMENDATION_SCHEDULE" env-default:"* * * * *"`
	DefaultCategory string `yaml:"default_category" env:"RECOMMENDATION_DEFAULT_CATEGORY" env-default:"Electronics"`
	// InlineEmail switches recommendation emails from the periodic sweep to
	// inline dispatch during event processing.
	InlineEmail bool `yaml:"inline_email" env:"RECOMMENDATION_INLINE_EMAIL" env-default:"false"`
}

type Sweep struct {
	Schedule    string `yaml:"schedule" env:"SWEEP_SCHEDULE" env-default:"* * * * *"`
	BatchLimit  int    `yaml:"batch_limit" env:"SWEEP_BATCH_LIMIT" env-default:"10"`
	Concurrency int    `yaml:"concurrency" env:"SWEEP_CONCURRENCY" env-default:"5"`
}

func New() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		// Allow env vars to override config file
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}
