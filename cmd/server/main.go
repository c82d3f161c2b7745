package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"catering-backend/internal/auth"
	"catering-backend/internal/cache"
	"catering-backend/internal/config"
	"catering-backend/internal/database"
	"catering-backend/internal/db"
	"catering-backend/internal/events"
	"catering-backend/internal/handlers"
	"catering-backend/internal/health"
	h "catering-backend/internal/http"
	"catering-backend/internal/logging"
	"catering-backend/internal/mailer"
	"catering-backend/internal/middleware"
	"catering-backend/internal/repositories"
	"catering-backend/internal/scheduler"
	"catering-backend/internal/services"
	"catering-backend/internal/sms"
	"catering-backend/internal/storage"
	"catering-backend/internal/timeutil"
	"catering-backend/migrations"
)

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	// Parse command-line flags
	mode := flag.String("mode", "admin", "Server mode: admin or customer")
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	logging.Init(cfg.Log.Level, cfg.Log.Format)
	log := logging.For("Main")

	if *mode != "admin" && *mode != "customer" {
		log.Fatalf("unknown mode %q (want admin or customer)", *mode)
	}

	listenPort := cfg.Server.Port
	if *mode == "customer" {
		listenPort = cfg.Server.CustomerPort
	}
	if *port != 0 {
		listenPort = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := db.Connect(cfg)
	defer pool.Close()

	// Run database migrations
	// Uses embedded migrations for standalone binary operation
	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := database.NewMigratorWithFS(pool, migrations.FS, ".").RunMigrations(migrateCtx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	cancel()

	// Initialize Redis cache (optional - analytics fall back to the database)
	var cacheUp func(context.Context) bool
	if cfg.Redis.Addr != "" {
		if err := cache.Init(cfg); err != nil {
			log.WithError(err).Warn("Redis unavailable, analytics will not be cached")
		} else {
			log.Info("Redis cache connected")
		}
		cacheUp = cache.IsHealthy
		defer cache.Close()
	}

	// Document archive (optional)
	var store storage.DocumentStore
	if s3, err := storage.NewS3Store(ctx, cfg); err == nil {
		store = s3
	} else if !errors.Is(err, storage.ErrDisabled) {
		log.WithError(err).Warn("document storage unavailable")
	}

	bus := events.NewBus(100)
	mail := mailer.New(cfg)
	smsProvider := sms.New(cfg)
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	loginLogRepo := repositories.NewLoginLogRepository(pool)
	actionLogRepo := repositories.NewAdminActionLogRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	menuRepo := repositories.NewMenuItemRepository(pool)
	orderRepo := repositories.NewOrderRepository(pool)
	orderItemRepo := repositories.NewOrderItemRepository(pool)
	billRepo := repositories.NewBillRepository(pool)
	expenseRepo := repositories.NewExpenseRepository(pool)
	workforceRepo := repositories.NewWorkforceRepository(pool)
	stockRepo := repositories.NewStockRepository(pool)
	analyticsRepo := repositories.NewAnalyticsRepository(pool)
	onlineTxnRepo := repositories.NewOnlineTransactionRepository(pool)

	// Initialize services
	reports := services.NewReportService(services.BusinessInfo{
		Name:    cfg.Business.Name,
		Address: cfg.Business.Address,
		Phone:   cfg.Business.Phone,
		Email:   cfg.Business.Email,
	})
	totpService := services.NewTOTPService(userRepo, cfg.Business.Name)
	userService := services.NewUserService(userRepo, loginLogRepo, actionLogRepo, jwtManager, totpService)
	orderService := services.NewOrderService(pool, orderRepo, orderItemRepo, billRepo, customerRepo,
		repositories.NewCostLinkRepository(pool), actionLogRepo, bus)
	billService := &services.BillService{
		Pool:       pool,
		Bills:      billRepo,
		Orders:     orderRepo,
		Items:      orderItemRepo,
		Customers:  customerRepo,
		ActionLogs: actionLogRepo,
		Reports:    reports,
		Mailer:     mail,
		Store:      store,
		Bus:        bus,
	}
	notificationService := &services.NotificationService{
		Orders:   orderRepo,
		Bills:    billRepo,
		Mailer:   mail,
		SMS:      smsProvider,
		Bus:      bus,
		StaffTo:  splitList(cfg.SMTP.NotifyTo),
		Business: reports.Business.Name,
	}
	analyticsService := &services.AnalyticsService{Repo: analyticsRepo, Orders: orderRepo, Expenses: expenseRepo}
	analyticsService.RegisterWarmups()

	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool, cacheUp))
	corsMiddleware := middleware.NewCORS(cfg)
	authLimiter := middleware.NewRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst)
	go authLimiter.StartCleanup(10*time.Minute, ctx.Done())

	var router http.Handler
	if *mode == "customer" {
		log.Info("Starting in CUSTOMER PORTAL mode")

		otpService := services.NewOTPService(repositories.NewOTPRepository(pool), smsProvider, services.OTPLimits{
			Cooldown:     time.Duration(cfg.OTP.CooldownSeconds) * time.Second,
			MaxPerHour:   cfg.OTP.MaxPerHour,
			MaxPerIPHour: cfg.OTP.MaxPerIPHour,
		}, cfg.Business.Name)
		portalService := &services.CustomerPortalService{
			Customers:     customerRepo,
			OTP:           otpService,
			Orders:        orderService,
			Bills:         billRepo,
			JWTManager:    jwtManager,
			Notifications: notificationService,
		}
		razorpayService := services.NewRazorpayService(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret,
			cfg.Razorpay.WebhookSecret, onlineTxnRepo, billService)
		if !razorpayService.Enabled() {
			log.Info("Razorpay not configured, online payments disabled")
		}

		router = h.NewCustomerRouter(h.CustomerHandlers{
			Portal:   handlers.NewCustomerPortalHandler(portalService, billService, jwtManager),
			Razorpay: handlers.NewRazorpayHandler(razorpayService, portalService),
			Health:   healthHandler,
		}, middleware.NewCustomerAuthMiddleware(jwtManager), authLimiter)
	} else {
		log.Info("Starting in ADMIN mode")

		if cfg.Bootstrap.AdminEmail != "" {
			if err := userService.EnsureAdmin(ctx, cfg.Bootstrap.AdminName, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
				log.WithError(err).Fatal("bootstrap admin failed")
			}
		}

		if cfg.Scheduler.Enabled {
			sched := scheduler.New()
			jobs := map[string]struct {
				spec string
				job  scheduler.Job
			}{
				"session_reminders": {cfg.Scheduler.ReminderSpec, func(ctx context.Context) error {
					_, err := notificationService.SendSessionReminders(ctx, timeutil.Now())
					return err
				}},
				"otp_cleanup": {"0 3 * * *", func(ctx context.Context) error {
					n, err := repositories.NewOTPRepository(pool).DeleteExpired(ctx)
					log.Debugf("removed %d expired OTP(s)", n)
					return err
				}},
				"cache_warm": {cfg.Scheduler.CacheWarmSpec, func(ctx context.Context) error {
					log.Debugf("warmed %d cache key(s)", cache.PreWarmCache(ctx))
					return nil
				}},
			}
			for name, j := range jobs {
				if err := sched.Add(name, j.spec, j.job); err != nil {
					log.WithError(err).Fatalf("bad schedule for %s", name)
				}
			}
			sched.Start()
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				sched.Stop(stopCtx)
			}()
		}

		stockService := &services.StockService{Pool: pool, Repo: stockRepo, Orders: orderRepo, Bus: bus}
		router = h.NewRouter(h.AdminHandlers{
			Auth:      handlers.NewAuthHandler(userService, jwtManager),
			TOTP:      handlers.NewTOTPHandler(totpService, userService),
			Users:     handlers.NewUserHandler(userService),
			Logs:      handlers.NewLogHandler(userService),
			Customers: handlers.NewCustomerHandler(services.NewCustomerService(customerRepo)),
			Menu:      handlers.NewMenuHandler(services.NewMenuService(menuRepo)),
			Orders:    handlers.NewOrderHandler(orderService, billService),
			Bills:     handlers.NewBillHandler(billService),
			Expenses: handlers.NewExpenseHandler(&services.ExpenseService{
				Repo: expenseRepo, Orders: orderRepo, ActionLogs: actionLogRepo, Reports: reports,
			}),
			Workforce: handlers.NewWorkforceHandler(&services.WorkforceService{
				Repo: workforceRepo, Orders: orderRepo, ActionLogs: actionLogRepo,
			}),
			Stock:        handlers.NewStockHandler(stockService),
			Analytics:    handlers.NewAnalyticsHandler(analyticsService),
			Notification: handlers.NewNotificationHandler(bus, cfg.Server.CorsAllowedOrigins),
			Reminders:    handlers.NewReminderHandler(notificationService),
			Health:       healthHandler,
		}, middleware.NewAuthMiddleware(jwtManager, userRepo), authLimiter)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", listenPort),
		Handler:           h.Chain(router, corsMiddleware),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server listening on %s (%s mode)", srv.Addr, *mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
