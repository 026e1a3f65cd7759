package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	App      AppConfig
	Booking  BookingConfig
	Reminder ReminderConfig
	Mail     MailConfig
	Chat     ChatConfig
	Kafka    KafkaConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20" validate:"gte=1"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret               string `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenDuration  string `envconfig:"JWT_ACCESS_TOKEN_DURATION" default:"15m"`
	RefreshTokenDuration string `envconfig:"JWT_REFRESH_TOKEN_DURATION" default:"168h"`
}

type CookieConfig struct {
	Domain   string `envconfig:"COOKIE_DOMAIN" default:""`
	Secure   bool   `envconfig:"COOKIE_SECURE" default:"false"`
	SameSite string `envconfig:"COOKIE_SAME_SITE" default:"Lax" validate:"oneof=Strict Lax None"`
}

type AppConfig struct {
	// Base URL of the web client, used for call links in notifications.
	BaseURL  string `envconfig:"APP_BASE_URL" default:"http://localhost:3000" validate:"url"`
	TimeZone string `envconfig:"APP_TIMEZONE" default:"UTC"`
}

type BookingConfig struct {
	AutoConfirm        bool          `envconfig:"BOOKING_AUTO_CONFIRM" default:"false"`
	CancellationWindow time.Duration `envconfig:"BOOKING_CANCELLATION_WINDOW" default:"2h" validate:"gt=0"`
}

// Reminder offsets are hours before the scheduled start.
type ReminderConfig struct {
	Enabled       bool          `envconfig:"REMINDER_ENABLED" default:"true"`
	Time1         float64       `envconfig:"REMINDER_TIME_1" default:"24" validate:"gt=0"`
	Time2         float64       `envconfig:"REMINDER_TIME_2" default:"1" validate:"gt=0"`
	Time3         float64       `envconfig:"REMINDER_TIME_3" default:"0.25" validate:"gt=0"`
	SweepInterval time.Duration `envconfig:"REMINDER_SWEEP_INTERVAL" default:"5m" validate:"gte=1s"`
	Statuses      []string      `envconfig:"REMINDER_STATUSES" default:"confirmed" validate:"min=1,dive,oneof=open pending confirmed"`
}

func (r ReminderConfig) OffsetHours() []float64 {
	return []float64{r.Time1, r.Time2, r.Time3}
}

type MailConfig struct {
	Enabled     bool          `envconfig:"MAIL_ENABLED" default:"false"`
	Host        string        `envconfig:"MAIL_HOST" default:"https://api.sendgrid.com" validate:"url"`
	APIKey      string        `envconfig:"MAIL_API_KEY" validate:"required_if=Enabled true"`
	FromAddress string        `envconfig:"MAIL_FROM_ADDRESS" default:"no-reply@tutorlink.local" validate:"email"`
	FromName    string        `envconfig:"MAIL_FROM_NAME" default:"TutorLink"`
	Timeout     time.Duration `envconfig:"MAIL_TIMEOUT" default:"10s"`
}

type ChatConfig struct {
	Enabled   bool          `envconfig:"CHAT_ENABLED" default:"false"`
	Endpoint  string        `envconfig:"CHAT_ENDPOINT" default:"https://chat.stream-io-api.com" validate:"url"`
	APIKey    string        `envconfig:"CHAT_API_KEY" validate:"required_if=Enabled true"`
	APISecret string        `envconfig:"CHAT_API_SECRET" validate:"required_if=Enabled true"`
	TokenTTL  time.Duration `envconfig:"CHAT_TOKEN_TTL" default:"24h"`
	Timeout   time.Duration `envconfig:"CHAT_TIMEOUT" default:"10s"`
}

type KafkaConfig struct {
	// Empty disables event publishing.
	Brokers      []string      `envconfig:"KAFKA_BROKERS"`
	Topic        string        `envconfig:"KAFKA_BOOKING_TOPIC" default:"booking-events"`
	BatchTimeout time.Duration `envconfig:"KAFKA_BATCH_TIMEOUT" default:"50ms"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 10,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:               "test-secret-key-for-testing-purposes-only",
			AccessTokenDuration:  "15m",
			RefreshTokenDuration: "168h",
		},
		Cookie: CookieConfig{
			SameSite: "Lax",
		},
		App: AppConfig{
			BaseURL:  "http://localhost:3000",
			TimeZone: "UTC",
		},
		Booking: BookingConfig{
			CancellationWindow: 2 * time.Hour,
		},
		Reminder: ReminderConfig{
			Enabled:       false,
			Time1:         24,
			Time2:         1,
			Time3:         0.25,
			SweepInterval: 5 * time.Minute,
			Statuses:      []string{"confirmed"},
		},
		Mail: MailConfig{
			Host:        "http://localhost:9",
			FromAddress: "no-reply@tutorlink.local",
			FromName:    "TutorLink",
			Timeout:     time.Second,
		},
		Chat: ChatConfig{
			Endpoint: "http://localhost:9/chat",
			TokenTTL: time.Hour,
			Timeout:  time.Second,
		},
		Kafka: KafkaConfig{
			Topic: "booking-events",
		},
	}
}
