package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	assignSpecialistHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/assign_specialist"
	cancelBookingHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/cancel_booking"
	completeBookingHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/complete_booking"
	createBookingHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/create_booking"
	exportBookingsHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/export_bookings"
	getAvailableDatesHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/get_available_dates"
	getAvailableSlotsHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/get_booking"
	getTemplateHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/get_template"
	getTrackBookingsHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/get_track_bookings"
	getUserBookingsHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/get_user_bookings"
	rescheduleBookingHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/reschedule_booking"
	updateTemplateHandler "github.com/m04kA/SMC-ConsultationService/internal/api/handlers/update_template"
	"github.com/m04kA/SMC-ConsultationService/internal/api/middleware"
	"github.com/m04kA/SMC-ConsultationService/internal/config"
	"github.com/m04kA/SMC-ConsultationService/internal/infra/lock"
	"github.com/m04kA/SMC-ConsultationService/internal/infra/migrator"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	couponRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/coupon"
	scheduleRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/schedule"
	meetingServiceClient "github.com/m04kA/SMC-ConsultationService/internal/integrations/meetingservice"
	userServiceClient "github.com/m04kA/SMC-ConsultationService/internal/integrations/userservice"
	bookingsService "github.com/m04kA/SMC-ConsultationService/internal/service/bookings"
	reportsService "github.com/m04kA/SMC-ConsultationService/internal/service/reports"
	templatesService "github.com/m04kA/SMC-ConsultationService/internal/service/templates"
	createBookingUC "github.com/m04kA/SMC-ConsultationService/internal/usecase/create_booking"
	getAvailableDatesUC "github.com/m04kA/SMC-ConsultationService/internal/usecase/get_available_dates"
	getAvailableSlotsUC "github.com/m04kA/SMC-ConsultationService/internal/usecase/get_available_slots"
	rescheduleBookingUC "github.com/m04kA/SMC-ConsultationService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-ConsultationService/migrations"
	"github.com/m04kA/SMC-ConsultationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ConsultationService/pkg/logger"
	"github.com/m04kA/SMC-ConsultationService/pkg/metrics"
	"github.com/m04kA/SMC-ConsultationService/pkg/txmanager"
)

// businessMetrics счётчики бронирований; без метрик - metrics.Noop
type businessMetrics interface {
	IncBookingCreated(track string, manual bool)
	IncBookingCancelled(track, actor string)
	IncSlotConflict(track string)
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ConsultationService...")

	location, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Invalid booking timezone %q: %v", cfg.Booking.Timezone, err)
	}

	// Инициализируем метрики (если включены)
	var (
		metricsCollector *metrics.Metrics
		recorder         businessMetrics = metrics.Noop{}
	)
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName, prometheus.DefaultRegisterer)
		recorder = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	if err := db.PingContext(startupCtx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		m, err := migrator.New(db, migrations.FS, log)
		if err != nil {
			log.Fatal("Failed to initialize migrator: %v", err)
		}
		if err := m.Up(startupCtx); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
	}

	// С nil metricsCollector обёртка работает как обычный *sql.DB
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Database.DBName, stopMetricsCh)

	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	couponRepository := couponRepo.NewRepository(wrappedDB)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Блокировка слотов: Redis для нескольких инстансов, иначе в памяти процесса
	var locker lock.Locker
	if cfg.Redis.Enabled {
		redisLock, err := lock.NewRedisLock(startupCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		defer redisLock.Close()
		locker = redisLock
		log.Info("Slot locks backed by Redis at %s", cfg.Redis.Addr)
	} else {
		locker = lock.NewLocalLock()
		log.Warn("Redis disabled, slot locks are process-local")
	}
	slotGuard := lock.NewGuard(
		locker,
		time.Duration(cfg.Booking.LockTTLSeconds)*time.Second,
		time.Duration(cfg.Booking.LockWaitMillis)*time.Millisecond,
	)

	// Инициализируем интеграционных клиентов
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	meetingClient := meetingServiceClient.NewClient(
		cfg.MeetingService.URL,
		time.Duration(cfg.MeetingService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (UserService=%s, MeetingService=%s)",
		cfg.UserService.URL, cfg.MeetingService.URL)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		scheduleRepository,
		userClient,
		meetingClient,
		txMgr,
		recorder,
		location,
		log,
	)
	templateSvc := templatesService.NewService(
		scheduleRepository,
		userClient,
		txMgr,
		log,
	)
	reportSvc := reportsService.NewService(bookingSvc, log)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		txMgr,
		location,
		log,
	)
	getAvailableDatesUseCase := getAvailableDatesUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		txMgr,
		location,
		cfg.Booking.MaxRangeDays,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		couponRepository,
		userClient,
		meetingClient,
		slotGuard,
		txMgr,
		recorder,
		location,
		log,
	)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		createBookingUseCase,
		userClient,
		meetingClient,
		recorder,
		location,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAvailableSlotsAdmin := getAvailableSlotsHandler.NewAdminHandler(getAvailableSlotsUseCase, log)
	getAvailableDates := getAvailableDatesHandler.NewHandler(getAvailableDatesUseCase, log)
	getAvailableDatesAdmin := getAvailableDatesHandler.NewAdminHandler(getAvailableDatesUseCase, log)
	getTemplate := getTemplateHandler.NewHandler(templateSvc, log)
	updateTemplate := updateTemplateHandler.NewHandler(templateSvc, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	assignSpecialist := assignSpecialistHandler.NewHandler(bookingSvc, log)
	completeBooking := completeBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getTrackBookings := getTrackBookingsHandler.NewHandler(bookingSvc, log)
	exportBookings := exportBookingsHandler.NewHandler(reportSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/tracks/{track}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/tracks/{track}/available-dates", getAvailableDates.Handle).Methods(http.MethodGet)
	api.HandleFunc("/tracks/{track}/template", getTemplate.Handle).Methods(http.MethodGet)

	// ============================================================
	// INTERNAL ROUTES (X-Internal-Key)
	// ============================================================

	internal := api.PathPrefix("/internal").Subrouter()
	internal.Use(middleware.InternalKey(cfg.Internal.APIKey))
	internal.HandleFunc("/bookings/{bookingId}/complete", completeBooking.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Записи ограничены по частоте на пользователя
	writes := protected.PathPrefix("").Subrouter()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		writes.Use(limiter.Middleware)
		log.Info("Rate limit on booking writes: %.2f rps, burst %d", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// --- Бронирования ---
	writes.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	writes.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPost)
	writes.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/assign-specialist", assignSpecialist.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Администрирование (права проверяют сервисы) ---
	protected.HandleFunc("/admin/bookings", getTrackBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/admin/bookings/export", exportBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/admin/tracks/{track}/template", updateTemplate.Handle).Methods(http.MethodPut)

	// Выдача без срока записи: use case роль не знает, проверяем здесь
	adminOnly := protected.PathPrefix("/admin").Subrouter()
	adminOnly.Use(middleware.RequireAdmin(userClient, log))
	adminOnly.HandleFunc("/tracks/{track}/available-slots", getAvailableSlotsAdmin.Handle).Methods(http.MethodGet)
	adminOnly.HandleFunc("/tracks/{track}/available-dates", getAvailableDatesAdmin.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
