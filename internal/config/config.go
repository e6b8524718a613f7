package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalidConfig возвращается при некорректных значениях конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config корневая конфигурация сервиса
type Config struct {
	Server         ServerConfig      `toml:"server"`
	Database       DatabaseConfig    `toml:"database"`
	Logs           LogsConfig        `toml:"logs"`
	Metrics        MetricsConfig     `toml:"metrics"`
	Redis          RedisConfig       `toml:"redis"`
	Kafka          KafkaConfig       `toml:"kafka"`
	StaffService   IntegrationConfig `toml:"staff_service"`
	CatalogService IntegrationConfig `toml:"catalog_service"`
	Booking        BookingConfig     `toml:"booking"`
	Holds          HoldsConfig       `toml:"holds"`
	RateLimit      RateLimitConfig   `toml:"rate_limit"`
}

// ServerConfig параметры HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig параметры подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// RedisConfig используется, когда holds.backend = "redis"
type RedisConfig struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

// KafkaConfig публикация событий по записям. Пустой список брокеров отключает публикацию.
type KafkaConfig struct {
	Brokers      []string `toml:"brokers"`
	Topic        string   `toml:"topic"`
	WriteTimeout int      `toml:"write_timeout"` // секунды
}

// Enabled возвращает true, если указан хотя бы один брокер
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// IntegrationConfig адрес и таймаут (в секундах) внешнего сервиса
type IntegrationConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// BookingConfig бизнес-параметры записи
type BookingConfig struct {
	GranularityMinutes        int `toml:"granularity_minutes"`
	MinBookingNoticeMinutes   int `toml:"min_booking_notice_minutes"`
	ModificationNoticeMinutes int `toml:"modification_notice_minutes"`
	AdvanceBookingDays        int `toml:"advance_booking_days"` // 0 = без ограничения
	MaxScheduleRangeDays      int `toml:"max_schedule_range_days"`
}

// ModificationNotice минимальное время до начала записи, когда клиент еще может её менять
func (b BookingConfig) ModificationNotice() time.Duration {
	return time.Duration(b.ModificationNoticeMinutes) * time.Minute
}

// HoldsConfig параметры временных резервов
type HoldsConfig struct {
	Backend       string `toml:"backend"` // memory | redis
	TTLSeconds    int    `toml:"ttl_seconds"`
	SweepSchedule string `toml:"sweep_schedule"`
}

// TTL время жизни резерва
func (h HoldsConfig) TTL() time.Duration {
	return time.Duration(h.TTLSeconds) * time.Second
}

// RateLimitConfig ограничение частоты запросов на публичные пишущие маршруты
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	// TrustedProxies IP или CIDR балансировщиков, которым доверяем X-Forwarded-For
	TrustedProxies []string `toml:"trusted_proxies"`
}

const (
	HoldsBackendMemory = "memory"
	HoldsBackendRedis  = "redis"
)

// Load читает конфигурацию из TOML файла, подставляет значения по умолчанию и валидирует её
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(string(data))
}

// Parse разбирает конфигурацию из строки
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default конфигурация со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "appointment_service",
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "appt",
		},
		Kafka: KafkaConfig{
			Topic:        "booking.appointments.v1",
			WriteTimeout: 5,
		},
		StaffService:   IntegrationConfig{Timeout: 5},
		CatalogService: IntegrationConfig{Timeout: 5},
		Booking: BookingConfig{
			GranularityMinutes:        15,
			MinBookingNoticeMinutes:   60,
			ModificationNoticeMinutes: 24 * 60,
			AdvanceBookingDays:        90,
			MaxScheduleRangeDays:      31,
		},
		Holds: HoldsConfig{
			Backend:       HoldsBackendMemory,
			TTLSeconds:    600,
			SweepSchedule: "@every 1m",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 5,
			Burst:             10,
		},
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port out of range: %d", ErrInvalidConfig, c.Server.HTTPPort)
	}

	g := c.Booking.GranularityMinutes
	if g <= 0 || 60%g != 0 {
		return fmt.Errorf("%w: booking.granularity_minutes must divide 60, got %d", ErrInvalidConfig, g)
	}
	if c.Booking.MinBookingNoticeMinutes < 0 {
		return fmt.Errorf("%w: booking.min_booking_notice_minutes must not be negative", ErrInvalidConfig)
	}
	if c.Booking.ModificationNoticeMinutes < 0 {
		return fmt.Errorf("%w: booking.modification_notice_minutes must not be negative", ErrInvalidConfig)
	}
	if c.Booking.AdvanceBookingDays < 0 {
		return fmt.Errorf("%w: booking.advance_booking_days must not be negative", ErrInvalidConfig)
	}
	if c.Booking.MaxScheduleRangeDays <= 0 {
		return fmt.Errorf("%w: booking.max_schedule_range_days must be positive", ErrInvalidConfig)
	}

	switch c.Holds.Backend {
	case HoldsBackendMemory:
	case HoldsBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: redis.addr is required for redis holds backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown holds.backend %q", ErrInvalidConfig, c.Holds.Backend)
	}
	if c.Holds.TTLSeconds <= 0 {
		return fmt.Errorf("%w: holds.ttl_seconds must be positive", ErrInvalidConfig)
	}

	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		return fmt.Errorf("%w: kafka.topic is required when brokers are set", ErrInvalidConfig)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("%w: rate_limit requires positive requests_per_second and burst", ErrInvalidConfig)
	}
	for _, proxy := range c.RateLimit.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("%w: rate_limit.trusted_proxies has invalid entry %q", ErrInvalidConfig, proxy)
		}
	}

	return nil
}

func validProxy(raw string) bool {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "/") {
		_, err := netip.ParsePrefix(raw)
		return err == nil
	}
	_, err := netip.ParseAddr(raw)
	return err == nil
}
