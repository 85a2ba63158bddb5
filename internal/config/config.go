package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Office     OfficeConfig
	Attendance AttendanceConfig
	Holidays   HolidaysConfig
	SMTP       SMTPConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int    `validate:"min=1,max=65535"`
	Env         string `validate:"oneof=development staging production test"`
	LogLevel    string `validate:"oneof=debug info warn error"`
	Timezone    string `validate:"required"`
	CORSOrigins []string

	// Location is resolved from Timezone by Load.
	Location *time.Location `validate:"-"`
}

type DatabaseConfig struct {
	Driver      string `validate:"oneof=postgres sqlite"`
	Host        string `validate:"required_if=Driver postgres"`
	Port        int    `validate:"min=0,max=65535"`
	User        string `validate:"required_if=Driver postgres"`
	Password    string `validate:"required_if=Driver postgres"`
	Name        string `validate:"required_if=Driver postgres"`
	SSLMode     string
	SQLitePath  string `validate:"required_if=Driver sqlite"`
	AutoMigrate bool
	MaxConns    int `validate:"min=0"`
	MinConns    int `validate:"min=0"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string        `validate:"required,min=16"`
	AccessExpiration time.Duration `validate:"gt=0"`
}

// OfficeConfig describes the single geofenced workplace.
type OfficeConfig struct {
	Name      string  `validate:"required"`
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
	RadiusKm  float64 `validate:"gt=0"`
}

type AttendanceConfig struct {
	// MinSessionHours enables the confirmation step on check-out. Zero disables it.
	MinSessionHours       float64 `validate:"gte=0,lte=24"`
	CloseLookbackDays     int     `validate:"gte=0,lte=7"`
	EnforceCompletedKinds bool
	DefaultWorkHours      float64 `validate:"gte=1,lte=12"`
}

type HolidaysConfig struct {
	File string
}

// SMTPConfig is optional; leave Host empty to disable notifications.
type SMTPConfig struct {
	Host     string
	Port     int `validate:"omitempty,min=1,max=65535"`
	Username string
	Password string
	From     string `validate:"required_with=Host"`
	// RetryInterval paces redelivery of decision notices that failed.
	RetryInterval time.Duration `validate:"gt=0"`
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

func Load() (*Config, error) {
	// A missing .env is fine; the process environment is the source of truth.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}
	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "Asia/Kolkata"),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	autoMigrate, err := getEnvBool("DB_AUTO_MIGRATE", true)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, err
	}
	config.Database = DatabaseConfig{
		Driver:      getEnv("STORE_DRIVER", "postgres"),
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "intern_attendance"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		SQLitePath:  getEnv("SQLITE_PATH", "attendance.db"),
		AutoMigrate: autoMigrate,
		MaxConns:    maxConns,
		MinConns:    minConns,
	}

	// JWT configuration
	accessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	// Office geofence
	officeLat, err := getEnvFloat("OFFICE_LAT", 12.9248224)
	if err != nil {
		return nil, err
	}
	officeLng, err := getEnvFloat("OFFICE_LNG", 77.5702351)
	if err != nil {
		return nil, err
	}
	radius, err := getEnvFloat("OFFICE_RADIUS_KM", 10)
	if err != nil {
		return nil, err
	}
	config.Office = OfficeConfig{
		Name:      getEnv("OFFICE_NAME", "Head Office"),
		Latitude:  officeLat,
		Longitude: officeLng,
		RadiusKm:  radius,
	}

	// Attendance policy
	minHours, err := getEnvFloat("ATTENDANCE_MIN_SESSION_HOURS", 0)
	if err != nil {
		return nil, err
	}
	lookback, err := getEnvInt("ATTENDANCE_CLOSE_LOOKBACK_DAYS", 1)
	if err != nil {
		return nil, err
	}
	enforce, err := getEnvBool("ATTENDANCE_ENFORCE_COMPLETED_KINDS", false)
	if err != nil {
		return nil, err
	}
	workHours, err := getEnvFloat("ATTENDANCE_DEFAULT_WORK_HOURS", 8)
	if err != nil {
		return nil, err
	}
	config.Attendance = AttendanceConfig{
		MinSessionHours:       minHours,
		CloseLookbackDays:     lookback,
		EnforceCompletedKinds: enforce,
		DefaultWorkHours:      workHours,
	}

	config.Holidays = HolidaysConfig{
		File: getEnv("HOLIDAYS_FILE", ""),
	}

	// SMTP configuration
	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	retryInterval, err := time.ParseDuration(getEnv("SMTP_RETRY_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_RETRY_INTERVAL: %w", err)
	}
	config.SMTP = SMTPConfig{
		Host:          getEnv("SMTP_HOST", ""),
		Port:          smtpPort,
		Username:      getEnv("SMTP_USERNAME", ""),
		Password:      getEnv("SMTP_PASSWORD", ""),
		From:          getEnv("SMTP_FROM", ""),
		RetryInterval: retryInterval,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and resolves the configured time zone.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	c.App.Location = loc
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
