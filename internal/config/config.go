package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type App struct {
	Env          string
	CacheBackend string
}

type HTTP struct {
	Port string
}

type DB struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type Kafka struct {
	Brokers     []string
	EventsTopic string
	Group       string
	DLQ         string
}

type Bus struct {
	ReplyTopic  string
	UsersTopic  string
	CallTimeout time.Duration
}

type Redis struct {
	Addr          string
	Password      string
	DB            int
	TTL           time.Duration
	CachePrefix   string
	ChannelPrefix string
}

type Push struct {
	StreamBuffer int
}

type Config struct {
	App   App
	HTTP  HTTP
	DB    DB
	Kafka Kafka
	Bus   Bus
	Redis Redis
	Push  Push
}

func Load() Config {
	return Config{
		App: App{
			Env:          getenv("APP_ENV", "dev"),
			CacheBackend: getenv("CACHE_BACKEND", "lru"),
		},
		HTTP: HTTP{
			Port: getenv("PORT", "8080"),
		},
		DB: DB{
			Host:     getenv("DB_HOST", "127.0.0.1"),
			Port:     getenv("DB_PORT", "55432"),
			Name:     getenv("DB_NAME", "notifications_db"),
			User:     getenv("DB_USER", "postgres"),
			Password: getenv("DB_PASSWORD", "postgres"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
		},
		Kafka: Kafka{
			Brokers:     splitCSV(getenv("KAFKA_BROKERS", "localhost:19092")),
			EventsTopic: getenv("NOTIFICATIONS_EVENTS_TOPIC", "notifications-events"),
			Group:       getenv("NOTIFICATIONS_CONSUMER_GROUP", "notification-service"),
			DLQ:         getenv("NOTIFICATIONS_DLQ_TOPIC", "notifications-events-dlq"),
		},
		Bus: Bus{
			ReplyTopic:  getenv("BUS_REPLY_TOPIC", "notification-service-replies"),
			UsersTopic:  getenv("USERS_REQUESTS_TOPIC", "users-requests"),
			CallTimeout: parseDuration(getenv("BUS_CALL_TIMEOUT", "5s")),
		},
		Redis: Redis{
			Addr:          getenv("REDIS_ADDR", "localhost:6379"),
			Password:      getenv("REDIS_PASSWORD", ""),
			DB:            atoi(getenv("REDIS_DB", "0")),
			TTL:           parseDuration(getenv("REDIS_TTL", "10m")),
			CachePrefix:   getenv("REDIS_CACHE_PREFIX", "notification:"),
			ChannelPrefix: getenv("REDIS_CHANNEL_PREFIX", "notify:user:"),
		},
		Push: Push{
			StreamBuffer: atoi(getenv("PUSH_STREAM_BUFFER", "16")),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
