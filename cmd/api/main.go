package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/config"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/intern-attendance/internal/handler/http"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/cron"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/email"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/geo"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/holiday"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/intern-attendance/internal/pkg/sse"
	"github.com/cmlabs-hris/intern-attendance/internal/repository"
	attendanceService "github.com/cmlabs-hris/intern-attendance/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/intern-attendance/internal/service/auth"
	leaveService "github.com/cmlabs-hris/intern-attendance/internal/service/leave"
	notificationService "github.com/cmlabs-hris/intern-attendance/internal/service/notification"
	reportService "github.com/cmlabs-hris/intern-attendance/internal/service/report"
	userService "github.com/cmlabs-hris/intern-attendance/internal/service/user"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.App)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg.Database, cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error opening store: ", err)
	}
	defer store.Close()

	holidays, err := holiday.Load(cfg.Holidays.File)
	if err != nil {
		log.Fatal("Error loading holidays: ", err)
	}

	emailService, err := email.NewEmailService(cfg.SMTP, logger)
	if err != nil {
		log.Fatal("Failed to initialize email service: ", err)
	}

	clock := clockwork.NewRealClock()
	loc := cfg.App.Location
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	authSvc := serviceAuth.NewAuthService(store.Users, JWTService, logger)
	userSvc := userService.NewUserService(store.Users, logger, cfg.Attendance.DefaultWorkHours)
	attendanceSvc := attendanceService.NewAttendanceService(store.Sessions, store.Users, clock, logger, attendanceService.Options{
		Geofence: attendance.Geofence{
			Name:     cfg.Office.Name,
			Center:   geo.Point{Latitude: cfg.Office.Latitude, Longitude: cfg.Office.Longitude},
			RadiusKm: cfg.Office.RadiusKm,
		},
		Location:              loc,
		MinSessionHours:       cfg.Attendance.MinSessionHours,
		CloseLookbackDays:     cfg.Attendance.CloseLookbackDays,
		EnforceCompletedKinds: cfg.Attendance.EnforceCompletedKinds,
	})
	leaveSvc := leaveService.NewLeaveService(store.Leaves, store.Users, emailService, holidays, clock, logger, loc)
	reportSvc := reportService.NewReportService(store.Sessions, store.Leaves, clock, logger, loc)
	notificationSvc := notificationService.NewNotificationService(store.Notifications, store.Users, sse.NewHub(), clock, logger)

	if cfg.SMTP.Enabled() {
		scheduler := cron.NewScheduler(ctx, clock, logger)
		scheduler.AddJob("leave-notification-retry", cfg.SMTP.RetryInterval, cron.LeaveNotificationJob(leaveSvc))
		scheduler.Start()
		defer scheduler.Stop()
	}

	router := appHTTP.NewRouter(
		logger,
		cfg.App,
		JWTService,
		appHTTP.NewAuthHandler(authSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewLeaveHandler(leaveSvc),
		appHTTP.NewUserHandler(userSvc),
		appHTTP.NewReportHandler(reportSvc),
		appHTTP.NewNotificationHandler(notificationSvc, JWTService),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server starting",
		"addr", srv.Addr,
		"store", cfg.Database.Driver,
		"timezone", cfg.App.Timezone,
		"holidays", holidays.Len(),
		"smtp_enabled", cfg.SMTP.Enabled(),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
