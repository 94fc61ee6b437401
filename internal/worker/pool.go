package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GymAurCode/in-ven-tory/internal/infra"
	"github.com/GymAurCode/in-ven-tory/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	QueueSales      = "jobs:sales"
	JobSaleRecorded = "sale_recorded"

	maxAttempts   = 3
	popTimeout    = 5 * time.Second
	errorLogEvery = 30 * time.Second
)

// pollBackoff is how long a worker waits after Redis returns an error.
var pollBackoff = time.Second

// Job is the envelope stored in the Redis list. Done lists the consumers that
// already succeeded, so a requeued job only reaches the ones that failed.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
	Done     []string        `json:"done,omitempty"`
}

// Consumer names recorded in Job.Done.
const (
	consumerLowStock = "low_stock"
	consumerReceipts = "receipts"
)

func (j *Job) done(consumer string) bool {
	for _, d := range j.Done {
		if d == consumer {
			return true
		}
	}
	return false
}

// SaleRecordedJob is published once per committed sale.
type SaleRecordedJob struct {
	SaleID         uuid.UUID       `json:"sale_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Description    *string         `json:"description,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	StockRemaining int             `json:"stock_remaining"`
}

func NewSaleRecordedJob(s *model.Sale, stockRemaining int) SaleRecordedJob {
	return SaleRecordedJob{
		SaleID:         s.ID,
		ProductID:      s.ProductID,
		ProductName:    s.ProductName,
		Quantity:       s.Quantity,
		UnitPrice:      s.UnitPrice,
		TotalPrice:     s.TotalPrice,
		Description:    s.Description,
		CreatedAt:      s.CreatedAt,
		StockRemaining: stockRemaining,
	}
}

func (j SaleRecordedJob) Sale() model.Sale {
	return model.Sale{
		ID:          j.SaleID,
		ProductID:   j.ProductID,
		ProductName: j.ProductName,
		Quantity:    j.Quantity,
		UnitPrice:   j.UnitPrice,
		TotalPrice:  j.TotalPrice,
		Description: j.Description,
		CreatedAt:   j.CreatedAt,
	}
}

// Dispatcher enqueues jobs into Redis lists through a circuit breaker.
// A Dispatcher without a Redis client is a no-op.
type Dispatcher struct {
	rdb *redis.Client
	cb  *infra.CircuitBreaker
}

func NewDispatcher(rdb *redis.Client, cb *infra.CircuitBreaker) *Dispatcher {
	return &Dispatcher{rdb: rdb, cb: cb}
}

// NotifySaleRecorded queues the post-sale job.
func (d *Dispatcher) NotifySaleRecorded(ctx context.Context, job SaleRecordedJob) error {
	if d == nil || d.rdb == nil {
		return nil
	}
	push := func() error { return enqueue(ctx, d.rdb, QueueSales, Job{Type: JobSaleRecorded}, job) }
	if d.cb == nil {
		return push()
	}
	return d.cb.Execute(push)
}

func enqueue(ctx context.Context, rdb *redis.Client, queue string, job Job, payload interface{}) error {
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		job.Payload = data
	}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// WorkerHandlers holds the consumers wired at the composition root.
type WorkerHandlers struct {
	LowStock *LowStockWorker
	Receipts *ReceiptWorker
}

// StartWorkerPool launches numWorkers goroutines blocking on BRPOP.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	if rdb == nil {
		log.Info().Msg("worker pool disabled: no redis")
		return
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	var lastLogged time.Time
	for {
		if ctx.Err() != nil {
			log.Info().Msgf("worker %d shutting down", id)
			return
		}
		// waits up to popTimeout; redis.Nil just means the queue stayed empty
		result, err := rdb.BRPop(ctx, popTimeout, QueueSales).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				continue
			}
			if time.Since(lastLogged) >= errorLogEvery {
				log.Error().Err(err).Int("worker", id).Msg("queue unreachable, backing off")
				lastLogged = time.Now()
			}
			select {
			case <-ctx.Done():
			case <-time.After(pollBackoff):
			}
			continue
		case len(result) < 2:
			continue
		}
		processJob(ctx, rdb, handlers, result[0], result[1])
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		if dlqErr := SendToDLQ(ctx, rdb, queue, Job{Type: "unknown", Payload: json.RawMessage(raw)}, "undecodable job: "+err.Error()); dlqErr != nil {
			log.Error().Err(dlqErr).Str("queue", queue).Msg("undecodable job dropped")
		}
		return
	}

	err := handlers.handle(ctx, &job)
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= maxAttempts {
		if dlqErr := SendToDLQ(ctx, rdb, queue, job, err.Error()); dlqErr != nil {
			log.Error().Err(dlqErr).Str("queue", queue).Str("type", job.Type).Msg("failed job dropped")
		}
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, requeueing")
	if err := enqueue(ctx, rdb, queue, job, nil); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("requeue failed")
	}
}

type jobConsumer struct {
	name string
	run  func(context.Context, SaleRecordedJob) error
}

// handle runs every consumer of job that has not succeeded yet and marks the
// ones that do.
func (h *WorkerHandlers) handle(ctx context.Context, job *Job) error {
	switch job.Type {
	case JobSaleRecorded:
		var payload SaleRecordedJob
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", job.Type, err)
		}
		log.Info().Str("type", job.Type).Str("sale_id", payload.SaleID.String()).Int("attempt", job.Attempts).Msg("processing job")

		var consumers []jobConsumer
		if h.LowStock != nil {
			consumers = append(consumers, jobConsumer{consumerLowStock, h.LowStock.Process})
		}
		if h.Receipts != nil {
			consumers = append(consumers, jobConsumer{consumerReceipts, h.Receipts.Process})
		}

		var errs []error
		for _, c := range consumers {
			if job.done(c.name) {
				continue
			}
			if err := c.run(ctx, payload); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
				continue
			}
			job.Done = append(job.Done, c.name)
		}
		return errors.Join(errs...)
	default:
		return fmt.Errorf("unknown job type %q", job.Type)
	}
}
