package inmemory

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendwise/internal/jobs"
)

// Queue is an in-memory job queue backed by a buffered channel.
// It implements both jobs.Publisher and jobs.Consumer.
type Queue struct {
	ch       chan *jobs.ExportJob
	store    jobs.JobStore
	log      zerolog.Logger
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
}

// NewQueue creates a new in-memory queue with the given buffer size.
func NewQueue(store jobs.JobStore, bufferSize int, log zerolog.Logger) *Queue {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Queue{
		ch:      make(chan *jobs.ExportJob, bufferSize),
		store:   store,
		log:     log.With().Str("component", "jobqueue").Logger(),
		stopped: make(chan struct{}),
	}
}

// PublishExport records the job as pending and enqueues it.
func (q *Queue) PublishExport(ctx context.Context, job *jobs.ExportJob) error {
	if job == nil {
		return fmt.Errorf("PublishExport: job is nil")
	}

	job.Status = jobs.JobStatusPending
	if err := q.store.SaveJob(ctx, job); err != nil {
		return fmt.Errorf("PublishExport: save job: %w", err)
	}

	select {
	case q.ch <- job:
		q.log.Info().Str("job_id", job.JobID).Str("user_id", job.UserID).Msg("export job queued")
		return nil
	case <-q.stopped:
		return fmt.Errorf("PublishExport: queue is stopped")
	case <-ctx.Done():
		return fmt.Errorf("PublishExport: %w", ctx.Err())
	}
}

// Close stops accepting new jobs. The channel itself is never closed
// so delayed retries cannot panic on send.
func (q *Queue) Close() error {
	q.stopOnce.Do(func() {
		close(q.stopped)
	})
	return nil
}

// Start launches a worker that consumes jobs until the queue is closed
// or the context is cancelled. It blocks, so call it in a goroutine.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.wg.Add(1)
	defer q.wg.Done()

	for {
		select {
		case job := <-q.ch:
			q.processJob(ctx, job, handler)
		case <-q.stopped:
			// Drain anything already queued before exiting.
			for {
				select {
				case job := <-q.ch:
					q.processJob(ctx, job, handler)
				default:
					return nil
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop closes the queue and waits for in-flight jobs, bounded by ctx.
func (q *Queue) Stop(ctx context.Context) error {
	_ = q.Close()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		// A retry send may have won the race against the drain loop's
		// exit. Nothing will consume the channel anymore, so fail
		// whatever is left rather than strand it in retrying.
		for {
			select {
			case job := <-q.ch:
				q.failBeforeRetry(job)
			default:
				return nil
			}
		}
	case <-ctx.Done():
		return fmt.Errorf("Stop: %w", ctx.Err())
	}
}

func (q *Queue) failBeforeRetry(job *jobs.ExportJob) {
	now := time.Now().UTC()
	job.Status = jobs.JobStatusFailed
	job.CompletedAt = &now
	if job.Error == "" {
		job.Error = "queue stopped before retry"
	}
	if err := q.store.SaveJob(context.Background(), job); err != nil {
		q.log.Error().Err(err).Str("job_id", job.JobID).Msg("failed to mark job failed")
	}
	q.log.Warn().Str("job_id", job.JobID).Msg("queue stopped before retry, job failed")
}

func (q *Queue) processJob(ctx context.Context, job *jobs.ExportJob, handler jobs.JobHandler) {
	now := time.Now().UTC()
	job.Status = jobs.JobStatusRunning
	job.StartedAt = &now
	if err := q.store.SaveJob(ctx, job); err != nil {
		q.log.Error().Err(err).Str("job_id", job.JobID).Msg("failed to mark job running")
	}

	err := handler(ctx, job)
	finished := time.Now().UTC()

	if err == nil {
		job.Status = jobs.JobStatusCompleted
		job.CompletedAt = &finished
		job.Error = ""
		if serr := q.store.SaveJob(ctx, job); serr != nil {
			q.log.Error().Err(serr).Str("job_id", job.JobID).Msg("failed to mark job completed")
		}
		q.log.Info().Str("job_id", job.JobID).Msg("export job completed")
		return
	}

	job.Error = err.Error()

	if job.RetryCount < job.MaxRetries {
		job.RetryCount++
		job.Status = jobs.JobStatusRetrying
		if serr := q.store.SaveJob(ctx, job); serr != nil {
			q.log.Error().Err(serr).Str("job_id", job.JobID).Msg("failed to mark job retrying")
		}

		backoff := time.Duration(math.Pow(2, float64(job.RetryCount))) * time.Second
		q.log.Warn().
			Err(err).
			Str("job_id", job.JobID).
			Int("retry", job.RetryCount).
			Dur("backoff", backoff).
			Msg("export job failed, retrying")

		q.wg.Add(1)
		time.AfterFunc(backoff, func() {
			defer q.wg.Done()
			select {
			case <-q.stopped:
				q.failBeforeRetry(job)
				return
			default:
			}
			select {
			case <-q.stopped:
				q.failBeforeRetry(job)
			case q.ch <- job:
			}
		})
		return
	}

	job.Status = jobs.JobStatusFailed
	job.CompletedAt = &finished
	if serr := q.store.SaveJob(ctx, job); serr != nil {
		q.log.Error().Err(serr).Str("job_id", job.JobID).Msg("failed to mark job failed")
	}
	q.log.Error().Err(err).Str("job_id", job.JobID).Msg("export job failed permanently")
}
