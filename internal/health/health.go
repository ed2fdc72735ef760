package health

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"campusfeedback/backend/internal/storage"
)

// HealthChecker 健康检查器
type HealthChecker struct {
	health      healthcheck.Handler
	store       storage.Store
	redisHealth func() error
	logger      *zap.Logger
}

// NewHealthChecker 创建健康检查器
//
// redisHealth 为 nil 时表示未启用 Redis，跳过对应检查。
func NewHealthChecker(store storage.Store, redisHealth func() error, logger *zap.Logger) *HealthChecker {
	hc := &HealthChecker{
		health:      healthcheck.NewHandler(),
		store:       store,
		redisHealth: redisHealth,
		logger:      logger,
	}

	hc.addChecks()

	return hc
}

// addChecks 添加健康检查
func (hc *HealthChecker) addChecks() {
	// 数据库连接检查
	hc.health.AddLivenessCheck("database", func() error {
		return hc.store.Health()
	})

	// Redis 连接检查（启用时）
	if hc.redisHealth != nil {
		hc.health.AddLivenessCheck("redis", hc.redisHealth)
	}

	// 就绪检查复用存储健康状态
	hc.health.AddReadinessCheck("storage", func() error {
		return hc.store.Health()
	})
}

// Handler 返回健康检查处理器
func (hc *HealthChecker) Handler() http.Handler {
	return hc.health
}

// CheckHealth 执行健康检查
func (hc *HealthChecker) CheckHealth() map[string]string {
	results := make(map[string]string)

	if err := hc.store.Health(); err != nil {
		results["database"] = fmt.Sprintf("ERROR: %v", err)
	} else {
		results["database"] = "OK"
	}

	if hc.redisHealth != nil {
		if err := hc.redisHealth(); err != nil {
			results["redis"] = fmt.Sprintf("ERROR: %v", err)
		} else {
			results["redis"] = "OK"
		}
	} else {
		results["redis"] = "NOT_AVAILABLE"
	}

	results["timestamp"] = time.Now().Format(time.RFC3339)

	return results
}

// DatabaseHealthCheck 数据库健康检查
func DatabaseHealthCheck(db *sql.DB) healthcheck.Check {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return db.PingContext(ctx)
	}
}
