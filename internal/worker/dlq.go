package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DeadLetter is what lands in dlq:{queue} once a job has used up its
// attempts. Job keeps the full envelope, including the consumers that
// already succeeded, so an operator can replay only what is missing.
type DeadLetter struct {
	Queue    string    `json:"queue"`
	Job      Job       `json:"job"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

func deadLetterKey(queue string) string { return "dlq:" + queue }

func newDeadLetter(queue string, job Job, reason string, now time.Time) ([]byte, error) {
	if len(job.Payload) > 0 && !json.Valid(job.Payload) {
		quoted, err := json.Marshal(string(job.Payload))
		if err != nil {
			return nil, err
		}
		job.Payload = quoted
	}
	return json.Marshal(DeadLetter{Queue: queue, Job: job, Reason: reason, FailedAt: now.UTC()})
}

// SendToDLQ parks job for manual inspection.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) error {
	data, err := newDeadLetter(queue, job, reason, time.Now())
	if err != nil {
		return fmt.Errorf("encode dead letter: %w", err)
	}
	if err := rdb.LPush(ctx, deadLetterKey(queue), data).Err(); err != nil {
		return fmt.Errorf("push dead letter: %w", err)
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Int("attempts", job.Attempts).
		Strs("done", job.Done).
		Str("reason", reason).
		Msg("job dead-lettered")
	return nil
}

// DLQLength counts the dead letters parked for queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, deadLetterKey(queue)).Result()
}
