package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "test.db")
	t.Setenv("JWT_SECRET_KEY", "0123456789abcdef0123")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "Asia/Kolkata", cfg.App.Timezone)
	require.NotNil(t, cfg.App.Location)
	assert.Equal(t, "Asia/Kolkata", cfg.App.Location.String())

	assert.Equal(t, 12*time.Hour, cfg.JWT.AccessExpiration)

	assert.InDelta(t, 12.9248224, cfg.Office.Latitude, 1e-9)
	assert.InDelta(t, 77.5702351, cfg.Office.Longitude, 1e-9)
	assert.Equal(t, 10.0, cfg.Office.RadiusKm)

	assert.Equal(t, 0.0, cfg.Attendance.MinSessionHours)
	assert.Equal(t, 1, cfg.Attendance.CloseLookbackDays)
	assert.False(t, cfg.Attendance.EnforceCompletedKinds)
	assert.Equal(t, 8.0, cfg.Attendance.DefaultWorkHours)

	assert.False(t, cfg.SMTP.Enabled())
	assert.Empty(t, cfg.App.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("OFFICE_RADIUS_KM", "50")
	t.Setenv("ATTENDANCE_MIN_SESSION_HOURS", "2")
	t.Setenv("ATTENDANCE_ENFORCE_COMPLETED_KINDS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("SMTP_HOST", "smtp.test")
	t.Setenv("SMTP_FROM", "noreply@test")
	t.Setenv("SMTP_RETRY_INTERVAL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.UTC.String(), cfg.App.Location.String())
	assert.Equal(t, 50.0, cfg.Office.RadiusKm)
	assert.Equal(t, 2.0, cfg.Attendance.MinSessionHours)
	assert.True(t, cfg.Attendance.EnforceCompletedKinds)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.CORSOrigins)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, 5*time.Minute, cfg.SMTP.RetryInterval)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"bad port", "APP_PORT", "http"},
		{"bad radius", "OFFICE_RADIUS_KM", "-1"},
		{"bad latitude", "OFFICE_LAT", "91"},
		{"bad timezone", "APP_TIMEZONE", "Mars/Olympus"},
		{"bad driver", "STORE_DRIVER", "mongo"},
		{"work hours out of bounds", "ATTENDANCE_DEFAULT_WORK_HOURS", "13"},
		{"bad duration", "JWT_ACCESS_EXPIRATION_TIME", "soon"},
		{"short secret", "JWT_SECRET_KEY", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tc.key, tc.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_PostgresRequiresPassword(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Password")
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		User: "u", Password: "p", Host: "h", Port: 5432, Name: "db", SSLMode: "disable",
	}}
	assert.Equal(t, "postgres://u:p@h:5432/db?sslmode=disable", cfg.DatabaseURL())
}
