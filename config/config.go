package config

import (
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"streakkeeper"`

	// 状态存储：postgres 或 memory（本地调试用，重启即丢失）
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// PostgreSQL 配置
	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"streakkeeper"`
	PostgreSQLSchema   string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"5"`
	PostgreSQLMaxOpen  int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"20"`

	// Redis 配置，关闭后锁退化为进程内互斥
	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"true"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"sk"`

	// RabbitMQ 配置
	RabbitMQEnabled  bool   `env:"RABBITMQ_ENABLED" envDefault:"true"`
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"streakkeeper.events"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	OTelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`

	// 速率限制配置, 配置在中间件内
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPM     int  `env:"RATE_LIMIT_RPM" envDefault:"60"` // 每分钟请求数

	// 打卡规则配置，三个检查点的截止时间均为所在时区的 HH:MM
	Timezone          string `env:"CHECKIN_TIMEZONE" envDefault:"America/Chicago"`
	GraceMinutes      int    `env:"CHECKIN_GRACE_MINUTES" envDefault:"15"`
	MorningDeadline   string `env:"CHECKIN_MORNING_DEADLINE" envDefault:"09:00"`
	AfternoonDeadline string `env:"CHECKIN_AFTERNOON_DEADLINE" envDefault:"14:00"`
	EveningDeadline   string `env:"CHECKIN_EVENING_DEADLINE" envDefault:"21:00"`

	// 提醒提前量（分钟），scheduler 在截止前这么久发送一次提醒
	ReminderLeadMinutes int `env:"REMINDER_LEAD_MINUTES" envDefault:"30"`
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	if err := Cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
}

// Validate 校验打卡规则相关配置，错误的截止时间或时区在启动时直接失败
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("CHECKIN_TIMEZONE %q: %w", c.Timezone, err)
	}

	if c.GraceMinutes < 0 {
		return fmt.Errorf("CHECKIN_GRACE_MINUTES must be >= 0, got %d", c.GraceMinutes)
	}

	earliest := 24 * 60
	for name, value := range map[string]string{
		"CHECKIN_MORNING_DEADLINE":   c.MorningDeadline,
		"CHECKIN_AFTERNOON_DEADLINE": c.AfternoonDeadline,
		"CHECKIN_EVENING_DEADLINE":   c.EveningDeadline,
	} {
		t, err := time.Parse("15:04", value)
		if err != nil {
			return fmt.Errorf("%s %q: expected HH:MM", name, value)
		}
		if m := t.Hour()*60 + t.Minute(); m < earliest {
			earliest = m
		}
	}

	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER %q: expected postgres or memory", c.StoreDriver)
	}

	if c.ReminderLeadMinutes < 0 {
		return fmt.Errorf("REMINDER_LEAD_MINUTES must be >= 0, got %d", c.ReminderLeadMinutes)
	}
	// 提醒窗口不跨越午夜：前一天发出的提醒会记在错误的日期上
	if c.ReminderLeadMinutes > earliest {
		return fmt.Errorf("REMINDER_LEAD_MINUTES %d reaches past midnight before the earliest deadline (%d minutes after midnight)",
			c.ReminderLeadMinutes, earliest)
	}

	return nil
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
