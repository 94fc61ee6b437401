package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/GymAurCode/in-ven-tory/internal/infra"
	"github.com/GymAurCode/in-ven-tory/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports database and Redis connectivity plus the state of the job
// queue. Redis is optional: a nil client reports "disabled" and stays healthy.
func Health(db *gorm.DB, rdb *redis.Client, breaker *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		body := gin.H{"timestamp": time.Now().UTC(), "database": dbStatus}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			} else if n, err := worker.DLQLength(ctx, rdb, worker.QueueSales); err == nil {
				body["dead_letters"] = n
			}
		}
		body["redis"] = redisStatus
		if breaker != nil {
			body["queue_breaker"] = breaker.State().String()
		}

		status := http.StatusOK
		body["status"] = "ok"
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
		c.JSON(status, body)
	}
}
