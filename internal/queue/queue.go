package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyScheduled = "mabuku:queue:scheduled"
	keyJobs      = "mabuku:queue:jobs"
	keyDead      = "mabuku:queue:dead"
)

// ErrEmpty is returned by Dequeue when no job is ready.
var ErrEmpty = errors.New("no jobs ready")

// Job is a unit of background work. Payload is the handler's own JSON
// document; the queue never interprets it.
type Job struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Priority    int             `json:"priority"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	LastError   string          `json:"last_error,omitempty"`
	EnqueuedAt  time.Time       `json:"enqueued_at"`
}

// claimScript atomically pops the lowest-scored ready job and returns
// its serialized body.
// KEYS[1] = scheduled zset, KEYS[2] = jobs hash
// ARGV[1] = max ready score
var claimScript = redis.NewScript(`
local ids = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1], "LIMIT", 0, 1)
if #ids == 0 then
    return false
end
local id = ids[1]
redis.call("ZREM", KEYS[1], id)
local body = redis.call("HGET", KEYS[2], id)
redis.call("HDEL", KEYS[2], id)
return body
`)

type Config struct {
	Host     string `mapstructure:"host" default:"localhost"`
	Port     string `mapstructure:"port" default:"6379"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Client struct {
	rdb *redis.Client

	TimeNow func() time.Time
}

func NewClient(config Config) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})
	return &Client{rdb: rdb, TimeNow: time.Now}
}

// NewClientWithRedis wraps an existing redis client; used by tests.
func NewClientWithRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb, TimeNow: time.Now}
}

// Enqueue schedules a job for immediate execution at normal priority.
func (c *Client) Enqueue(ctx context.Context, jobType string, payload interface{}) error {
	return c.EnqueueIn(ctx, jobType, payload, 0, 0)
}

// EnqueueIn schedules a job to become ready after delay. Higher
// priority jobs that are ready sort ahead of lower priority ones.
func (c *Client) EnqueueIn(ctx context.Context, jobType string, payload interface{}, delay time.Duration, priority int) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling job payload: %w", err)
	}

	job := &Job{
		ID:          uuid.NewString(),
		Type:        jobType,
		Payload:     raw,
		Priority:    priority,
		MaxAttempts: defaultMaxAttempts,
		EnqueuedAt:  c.TimeNow(),
	}
	return c.schedule(ctx, job, c.TimeNow().Add(delay))
}

func (c *Client) schedule(ctx context.Context, job *Job, readyAt time.Time) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshalling job: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, keyJobs, job.ID, body)
	pipe.ZAdd(ctx, keyScheduled, redis.Z{Score: score(readyAt, job.Priority), Member: job.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("scheduling job %s: %w", job.Type, err)
	}
	return nil
}

// Dequeue claims the next ready job, or ErrEmpty.
func (c *Client) Dequeue(ctx context.Context) (*Job, error) {
	res, err := claimScript.Run(ctx, c.rdb, []string{keyScheduled, keyJobs}, score(c.TimeNow(), 0)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("claiming job: %w", err)
	}

	body, ok := res.(string)
	if !ok {
		return nil, ErrEmpty
	}

	var job Job
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return nil, fmt.Errorf("unmarshalling claimed job: %w", err)
	}
	return &job, nil
}

// Retry reschedules a failed job with exponential backoff, or moves it
// to the dead set once its attempts are exhausted.
func (c *Client) Retry(ctx context.Context, job *Job, cause error) error {
	job.Attempts++
	job.LastError = cause.Error()

	if job.Attempts >= job.MaxAttempts {
		return c.bury(ctx, job)
	}
	return c.schedule(ctx, job, c.TimeNow().Add(RetryDelay(job.Attempts)))
}

func (c *Client) bury(ctx context.Context, job *Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshalling dead job: %w", err)
	}
	if err := c.rdb.ZAdd(ctx, keyDead, redis.Z{
		Score:  float64(c.TimeNow().UnixMilli()),
		Member: body,
	}).Err(); err != nil {
		return fmt.Errorf("burying job %s: %w", job.ID, err)
	}
	return nil
}

// DeadCount returns the number of jobs in the dead set.
func (c *Client) DeadCount(ctx context.Context) (int64, error) {
	return c.rdb.ZCard(ctx, keyDead).Result()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// score orders jobs by readiness time, with priority breaking ties by
// pulling higher priority jobs a few milliseconds earlier per level.
func score(readyAt time.Time, priority int) float64 {
	return float64(readyAt.UnixMilli() - int64(priority))
}
