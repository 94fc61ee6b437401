package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// AlertsLowStock is the Redis list dashboards read low-stock alerts from.
const AlertsLowStock = "alerts:low_stock"

type LowStockAlert struct {
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	StockRemaining int       `json:"stock_remaining"`
	Threshold      int       `json:"threshold"`
	RaisedAt       time.Time `json:"raised_at"`
}

// LowStockWorker raises an alert when a sale leaves a product at or below
// the configured threshold.
type LowStockWorker struct {
	rdb       *redis.Client
	threshold int
}

func NewLowStockWorker(rdb *redis.Client, threshold int) *LowStockWorker {
	return &LowStockWorker{rdb: rdb, threshold: threshold}
}

// Evaluate returns the alert for job, if one is due.
func (w *LowStockWorker) Evaluate(job SaleRecordedJob) (*LowStockAlert, bool) {
	if job.StockRemaining > w.threshold {
		return nil, false
	}
	return &LowStockAlert{
		ProductID:      job.ProductID,
		ProductName:    job.ProductName,
		StockRemaining: job.StockRemaining,
		Threshold:      w.threshold,
		RaisedAt:       time.Now().UTC(),
	}, true
}

func (w *LowStockWorker) Process(ctx context.Context, job SaleRecordedJob) error {
	alert, due := w.Evaluate(job)
	if !due {
		return nil
	}
	log.Warn().
		Str("product_id", alert.ProductID.String()).
		Str("product", alert.ProductName).
		Int("stock_remaining", alert.StockRemaining).
		Int("threshold", alert.Threshold).
		Msg("low_stock: product at or below threshold")

	if w.rdb == nil {
		return nil
	}
	data, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	return w.rdb.LPush(ctx, AlertsLowStock, data).Err()
}
