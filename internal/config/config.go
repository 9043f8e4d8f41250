package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Kafka    KafkaConfig
	Match    MatchConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether call-event publishing is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// MatchConfig carries the matchmaking knobs. The retry delay doubles as a
// throttle against the profile store; the lobby debounce coalesces
// join/leave bursts into fewer size broadcasts.
type MatchConfig struct {
	MaxAttempts   int
	RetryDelay    time.Duration
	PassThreshold int
	LobbyDebounce time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("DATING_HOST", "")
	viper.SetDefault("DATING_PORT", "8080")
	viper.SetDefault("DATING_READ_TIMEOUT", 30*time.Second)
	viper.SetDefault("DATING_WRITE_TIMEOUT", 30*time.Second)
	viper.SetDefault("DATING_IDLE_TIMEOUT", 60*time.Second)
	viper.SetDefault("DATING_JWT_SECRET", "secret")
	viper.SetDefault("DATING_JWT_EXPIRE", "24h")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "password")
	viper.SetDefault("POSTGRES_DB", "dating")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_MAX_RETRIES", 3)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
	viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
	viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
	viper.SetDefault("REDIS_POOL_SIZE", 100)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)

	viper.SetDefault("KAFKA_BROKERS", []string{})
	viper.SetDefault("KAFKA_CALL_EVENT_TOPIC", "dating-call-events")

	viper.SetDefault("MATCH_MAX_ATTEMPTS", 3)
	viper.SetDefault("MATCH_RETRY_DELAY", 10*time.Second)
	viper.SetDefault("MATCH_PASS_THRESHOLD", 70)
	viper.SetDefault("LOBBY_DEBOUNCE", 300*time.Millisecond)

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("DATING_HOST"),
			Port:         viper.GetString("DATING_PORT"),
			ReadTimeout:  viper.GetDuration("DATING_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("DATING_WRITE_TIMEOUT"),
			IdleTimeout:  viper.GetDuration("DATING_IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetString("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:         viper.GetString("REDIS_HOST"),
			Port:         viper.GetString("REDIS_PORT"),
			Password:     viper.GetString("REDIS_PASSWORD"),
			DB:           viper.GetInt("REDIS_DB"),
			MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
			DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
			PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
		},
		JWT: JWTConfig{
			Secret:         viper.GetString("DATING_JWT_SECRET"),
			ExpirationTime: viper.GetDuration("DATING_JWT_EXPIRE"),
		},
		Kafka: KafkaConfig{
			Brokers: viper.GetStringSlice("KAFKA_BROKERS"),
			Topic:   viper.GetString("KAFKA_CALL_EVENT_TOPIC"),
		},
		Match: MatchConfig{
			MaxAttempts:   viper.GetInt("MATCH_MAX_ATTEMPTS"),
			RetryDelay:    viper.GetDuration("MATCH_RETRY_DELAY"),
			PassThreshold: viper.GetInt("MATCH_PASS_THRESHOLD"),
			LobbyDebounce: viper.GetDuration("LOBBY_DEBOUNCE"),
		},
	}

	return cfg, nil
}
