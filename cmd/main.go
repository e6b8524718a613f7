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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	cancelAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_appointment"
	createBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_booking"
	createHoldHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_hold"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getHoldHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_hold"
	getScheduleHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_schedule"
	getStylistAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_stylist_appointments"
	listStylistsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_stylists"
	releaseHoldHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/release_hold"
	rescheduleHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reschedule_appointment"
	updateStatusHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_appointment_status"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/authority"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/events"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/holds"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	catalogServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/catalogservice"
	staffServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/staffservice"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	holdsService "github.com/m04kA/SMC-AppointmentService/internal/service/holds"
	stylistsService "github.com/m04kA/SMC-AppointmentService/internal/service/stylists"
	createBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	createHoldUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_hold"
	getScheduleUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_schedule"
	rescheduleUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/slotpolicy"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/keylock"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// Публикатор событий, закрываемый при остановке
type eventPublisher interface {
	appointmentsService.EventPublisher
	Close() error
}

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
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

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from %s", configPath)

	// Инициализируем метрики (если включены). nil коллектор ничего не пишет.
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
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

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Реестр временных резервов
	var (
		holdRegistry holds.Registry
		redisClient  *redis.Client
	)
	switch cfg.Holds.Backend {
	case config.HoldsBackendRedis:
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}
		holdRegistry = holds.NewRedisRegistry(redisClient, cfg.Redis.KeyPrefix, holds.RealClock)
		log.Info("Holds stored in redis (addr=%s, prefix=%s)", cfg.Redis.Addr, cfg.Redis.KeyPrefix)
	default:
		holdRegistry = holds.NewMemoryRegistry(holds.RealClock)
		log.Info("Holds stored in memory")
	}

	sweeper, err := holds.NewSweeper(holdRegistry, cfg.Holds.SweepSchedule, metricsCollector, log)
	if err != nil {
		log.Fatal("Failed to schedule hold sweeper %q: %v", cfg.Holds.SweepSchedule, err)
	}
	sweeper.Start()
	log.Info("Hold sweeper started (schedule=%s, ttl=%s)", cfg.Holds.SweepSchedule, cfg.Holds.TTL())

	// Публикация событий по записям
	var publisher eventPublisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(
			cfg.Kafka.Brokers,
			cfg.Kafka.Topic,
			time.Duration(cfg.Kafka.WriteTimeout)*time.Second,
		)
		log.Info("Kafka publisher initialized (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		log.Warn("Kafka brokers not configured, appointment events are not published")
	}

	// Инициализируем интеграционных клиентов
	staffClient := staffServiceClient.NewClient(
		cfg.StaffService.URL,
		time.Duration(cfg.StaffService.Timeout)*time.Second,
		log,
	)
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (StaffService=%s timeout=%ds, CatalogService=%s timeout=%ds)",
		cfg.StaffService.URL, cfg.StaffService.Timeout, cfg.CatalogService.URL, cfg.CatalogService.Timeout)

	policy := slotpolicy.Policy{
		GranularityMinutes:      cfg.Booking.GranularityMinutes,
		MinBookingNoticeMinutes: cfg.Booking.MinBookingNoticeMinutes,
		AdvanceBookingDays:      cfg.Booking.AdvanceBookingDays,
	}
	modAuthority := authority.New(cfg.Booking.ModificationNotice())
	dayLocks := keylock.New()

	// Инициализируем сервисы
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		staffClient,
		modAuthority,
		publisher,
		txMgr,
		metricsCollector,
		log,
	)
	holdSvc := holdsService.NewService(holdRegistry, log)
	stylistSvc := stylistsService.NewService(staffClient, log)

	// Инициализируем use cases
	getScheduleUseCase := getScheduleUC.NewUseCase(
		appointmentRepository,
		holdRegistry,
		staffClient,
		catalogClient,
		policy,
		cfg.Booking.MaxScheduleRangeDays,
		log,
	)
	createHoldUseCase := createHoldUC.NewUseCase(
		appointmentRepository,
		holdRegistry,
		dayLocks,
		staffClient,
		catalogClient,
		policy,
		cfg.Holds.TTL(),
		metricsCollector,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		appointmentRepository,
		holdRegistry,
		dayLocks,
		staffClient,
		catalogClient,
		publisher,
		txMgr,
		policy,
		metricsCollector,
		log,
	)
	rescheduleUseCase := rescheduleUC.NewUseCase(
		appointmentRepository,
		holdRegistry,
		modAuthority,
		dayLocks,
		staffClient,
		catalogClient,
		publisher,
		txMgr,
		policy,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	listStylists := listStylistsHandler.NewHandler(stylistSvc, log)
	getSchedule := getScheduleHandler.NewHandler(getScheduleUseCase, log)
	createHold := createHoldHandler.NewHandler(createHoldUseCase, log)
	getHold := getHoldHandler.NewHandler(holdSvc, log)
	releaseHold := releaseHoldHandler.NewHandler(holdSvc, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	reschedule := rescheduleHandler.NewHandler(rescheduleUseCase, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	getStylistAppointments := getStylistAppointmentsHandler.NewHandler(appointmentSvc, log)
	updateStatus := updateStatusHandler.NewHandler(appointmentSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (анонимный клиент, X-Session-ID)
	// ============================================================

	public := api.PathPrefix("").Subrouter()
	public.Use(middleware.Session)

	public.HandleFunc("/stylists", listStylists.Handle).Methods(http.MethodGet)
	public.HandleFunc("/stylists/{stylistId:[0-9]+}/schedule", getSchedule.Handle).Methods(http.MethodGet)

	// Доступ по токену изменения из письма
	public.HandleFunc("/appointments/{token}", getAppointment.Handle).Methods(http.MethodGet)

	// Пишущие маршруты с ограничением частоты
	writes := api.PathPrefix("").Subrouter()
	writes.Use(middleware.RequireSession)

	tokenWrites := api.PathPrefix("").Subrouter()
	tokenWrites.Use(middleware.Session)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter, err = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.TrustedProxies, log)
		if err != nil {
			log.Fatal("Failed to configure rate limiter: %v", err)
		}
		writes.Use(limiter.Middleware)
		tokenWrites.Use(limiter.Middleware)
		log.Info("Rate limit enabled (rps=%.2f, burst=%d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// --- Резервы ---
	writes.HandleFunc("/holds", createHold.Handle).Methods(http.MethodPost)
	writes.HandleFunc("/holds/{holdId}", getHold.Handle).Methods(http.MethodGet)
	writes.HandleFunc("/holds/{holdId}", releaseHold.Handle).Methods(http.MethodDelete)

	// --- Подтверждение записи ---
	writes.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// --- Изменение записи по токену ---
	tokenWrites.HandleFunc("/appointments/{token}/reschedule", reschedule.Handle).Methods(http.MethodPost)
	tokenWrites.HandleFunc("/appointments/{token}/cancel", cancelAppointment.Handle).Methods(http.MethodPost)

	// ============================================================
	// STAFF ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	protected.HandleFunc("/stylists/{stylistId:[0-9]+}/appointments", getStylistAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/id/{appointmentId:[0-9]+}/status", updateStatus.Handle).Methods(http.MethodPatch)

	// Периодически забываем лимитеры неактивных IP
	var limiterCron *cron.Cron
	if limiter != nil {
		limiterCron = cron.New()
		if _, err := limiterCron.AddFunc("@every 10m", func() {
			if n := limiter.Prune(30 * time.Minute); n > 0 {
				log.Info("RateLimit: pruned %d idle visitors", n)
			}
		}); err != nil {
			log.Fatal("Failed to schedule rate limiter cleanup: %v", err)
		}
		limiterCron.Start()
	}

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

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	sweeper.Stop()
	if limiterCron != nil {
		<-limiterCron.Stop().Done()
	}

	if err := publisher.Close(); err != nil {
		log.Error("Failed to close event publisher: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis client: %v", err)
		}
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
