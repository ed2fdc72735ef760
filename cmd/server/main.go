package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"campusfeedback/backend/internal/auth"
	jwtpkg "campusfeedback/backend/internal/auth/jwt"
	"campusfeedback/backend/internal/cache"
	"campusfeedback/backend/internal/config"
	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/health"
	"campusfeedback/backend/internal/logger"
	"campusfeedback/backend/internal/mailer"
	"campusfeedback/backend/internal/monitoring"
	"campusfeedback/backend/internal/pool"
	"campusfeedback/backend/internal/service"
	"campusfeedback/backend/internal/storage"
	"campusfeedback/backend/internal/storage/memory"
	"campusfeedback/backend/internal/storage/redis"
	sqlstore "campusfeedback/backend/internal/storage/sql"
	httptransport "campusfeedback/backend/internal/transport/http"
)

const version = "1.2.0"

// main 启动校园课程反馈系统的 HTTP 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.NewLogger(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting campus feedback server",
		zap.String("version", version),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层
	var store storage.Store
	if cfg.Database.Type != "" && cfg.Database.DSN != "" {
		store, err = sqlstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			panic(fmt.Sprintf("failed to initialize database storage: %v", err))
		}
		log.Info("using database storage", zap.String("type", cfg.Database.Type))
	} else {
		store = memory.NewStore()
		log.Info("using memory storage (development mode)")
	}
	defer store.Close()

	// 重置令牌存储：启用 Redis 时多实例共享，否则退回进程内缓存
	var tokens storage.ResetTokenStore
	var redisHealth func() error
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			panic(fmt.Sprintf("failed to connect redis: %v", err))
		}
		defer redisClient.Close()

		tokens = redisClient
		redisHealth = redisClient.Health
		log.Info("using redis token store", zap.String("address", cfg.Redis.Address))
	} else {
		localTokens := cache.NewTokenStore(cfg.Reset.TokenTTL)
		defer localTokens.Close()

		tokens = localTokens
		log.Info("using in-process token store, single instance only")
	}

	// 初始化监控系统
	metrics := monitoring.NewMetrics()
	env := "production"
	if cfg.Log.Development {
		env = "development"
	}
	sysHealth := monitoring.NewHealthChecker(store, redisHealth, log, version, env)
	healthChecker := health.NewHealthChecker(store, redisHealth, log)

	// 初始化服务层
	mailboxService := service.NewMailboxService(store, log)
	academicService := service.NewAcademicService(store, log)
	feedbackService := service.NewFeedbackService(store, store, metrics, log)
	reportService := service.NewReportService(store, log)

	authService := auth.NewService(store)
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	sender := mailer.NewSMTPSender(cfg.Mailer.SkipTLSVerify, log)
	workerPool := pool.NewWorkerPool(cfg.Mailer.Workers, cfg.Mailer.QueueSize, log)

	resetService := service.NewPasswordResetService(
		store,
		tokens,
		mailboxService,
		sender,
		authService,
		workerPool,
		metrics,
		service.PasswordResetConfig{
			TokenTTL:          cfg.Reset.TokenTTL,
			ResetBaseURL:      cfg.Reset.BaseURL,
			RequestsPerMinute: cfg.Reset.RequestsPerMinute,
		},
		log,
	)

	// 告警规则：邮箱池耗尽是最关键的故障信号
	countAvailable := func() (int, error) {
		statuses, err := mailboxService.Status()
		if err != nil {
			return 0, err
		}
		available := 0
		for _, st := range statuses {
			if st.State == domain.MailboxAvailable {
				available++
			}
		}
		return available, nil
	}

	alertManager := monitoring.NewAlertManager(log)
	alertManager.AddReceiver(monitoring.NewLogAlertReceiver(log))
	alertManager.AddRule(monitoring.MailboxPoolExhaustedRule(countAvailable))
	alertManager.AddRule(monitoring.MailboxPoolLowRule(countAvailable, 2))
	alertManager.AddRule(monitoring.DatabaseConnectionRule(store))
	alertManager.AddRule(monitoring.HighMemoryUsageRule(512.0))

	log.Info("monitoring system initialized")

	// 创建 HTTP 服务器
	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:        cfg,
		Mailboxes:     mailboxService,
		Resets:        resetService,
		Academic:      academicService,
		Feedback:      feedbackService,
		Reports:       reportService,
		AuthService:   authService,
		JWTManager:    jwtManager,
		HealthChecker: healthChecker,
		Metrics:       metrics,
		Logger:        log,
	})

	// 详细的系统健康报告，供运维排障使用
	router.GET("/health/system", func(c *gin.Context) {
		c.JSON(http.StatusOK, sysHealth.CheckHealth())
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// 发件工作池
	workerPool.Start(groupCtx)
	resetService.StartLimiterCleanup(groupCtx.Done())

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 告警监控 goroutine
	group.Go(func() error {
		alertManager.StartMonitoring(groupCtx, 1*time.Minute)
		return nil
	})

	// 定时刷新邮箱池指标 goroutine
	group.Go(func() error {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				metrics.UpdateSystemUptime(sysHealth.GetUptime())

				statuses, err := mailboxService.Status()
				if err != nil {
					log.Warn("failed to refresh mailbox metrics", zap.Error(err))
					continue
				}
				active := 0
				for _, st := range statuses {
					if st.IsActive {
						active++
					}
					metrics.UpdateMailboxRemaining(st.Address, st.DailyRemaining, st.MonthlyRemaining)
				}
				metrics.UpdateMailboxesActive(active)
			}
		}
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		// 等待队列中的重置邮件发完
		workerPool.Stop()

		log.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}
