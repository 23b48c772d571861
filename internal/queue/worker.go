package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chimbuka/mabuku/pkg/log"
)

// HandlerFunc processes one job. A returned error triggers a retry with
// backoff until the job's attempts are exhausted.
type HandlerFunc func(ctx context.Context, job *Job) error

// Worker polls the queue and dispatches claimed jobs to registered
// handlers.
type Worker struct {
	client       *Client
	logger       log.Logger
	handlers     map[string]HandlerFunc
	pollInterval time.Duration
}

func NewWorker(client *Client, logger log.Logger) *Worker {
	return &Worker{
		client:       client,
		logger:       logger,
		handlers:     map[string]HandlerFunc{},
		pollInterval: time.Second,
	}
}

func (w *Worker) Register(jobType string, handler HandlerFunc) {
	w.handlers[jobType] = handler
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info(ctx, "queue worker started", "handlers", len(w.handlers))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain processes ready jobs until the queue is empty.
func (w *Worker) drain(ctx context.Context) {
	for {
		job, err := w.client.Dequeue(ctx)
		if err != nil {
			if !errors.Is(err, ErrEmpty) {
				w.logger.Error(ctx, "failed to claim job", "error", err)
			}
			return
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *Job) {
	handler, ok := w.handlers[job.Type]
	if !ok {
		w.fail(ctx, job, fmt.Errorf("no handler registered for job type %q", job.Type))
		return
	}

	if err := handler(ctx, job); err != nil {
		w.fail(ctx, job, err)
		return
	}
	w.logger.Info(ctx, "job completed", "job_id", job.ID, "job_type", job.Type, "attempts", job.Attempts)
}

func (w *Worker) fail(ctx context.Context, job *Job, cause error) {
	w.logger.Error(ctx, "job failed", "job_id", job.ID, "job_type", job.Type, "attempt", job.Attempts+1, "error", cause)
	if err := w.client.Retry(ctx, job, cause); err != nil {
		w.logger.Error(ctx, "failed to reschedule job", "job_id", job.ID, "error", err)
	}
}
