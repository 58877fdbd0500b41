package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trail-backend/internal/logger"
	"trail-backend/internal/models"
)

const generationQueue = "queue:course-generation"

// DefaultPollWait is how long an idle worker blocks on the queue.
const DefaultPollWait = 5 * time.Second

// ErrQueueEmpty is returned by Dequeue when no job arrived before the wait ran out.
var ErrQueueEmpty = errors.New("queue empty")

type Queue interface {
	Enqueue(ctx context.Context, job *models.GenerationJob) error
	Dequeue(ctx context.Context, wait time.Duration) (*models.GenerationJob, error)
}

// Processor runs one generation job. WizardService implements it.
// AbortGeneration records a failure for a job whose processing panicked.
type Processor interface {
	ProcessGeneration(ctx context.Context, job *models.GenerationJob) error
	AbortGeneration(ctx context.Context, job *models.GenerationJob, cause error) error
}

// ──── Redis list queue ────

type RedisQueue struct {
	redis *redis.Client
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{redis: client}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job *models.GenerationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.redis.LPush(ctx, generationQueue, string(data)).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context, wait time.Duration) (*models.GenerationJob, error) {
	result, err := q.redis.BRPop(ctx, wait, generationQueue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, ErrQueueEmpty
	}
	var job models.GenerationJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}
	return &job, nil
}

// ──── In-process queue ────

type MemoryQueue struct {
	jobs chan *models.GenerationJob
}

func NewMemoryQueue(size int) *MemoryQueue {
	return &MemoryQueue{jobs: make(chan *models.GenerationJob, size)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job *models.GenerationJob) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("generation queue is full")
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, wait time.Duration) (*models.GenerationJob, error) {
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case job := <-q.jobs:
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.C:
		return nil, ErrQueueEmpty
	}
}

// ──── Pool ────

type Pool struct {
	queue       Queue
	processor   Processor
	redis       *redis.Client // optional, for cross-instance job locks
	log         *logger.Logger
	workerCount int
	jobTimeout  time.Duration
	pollWait    time.Duration

	ctx      context.Context
	cancel   context.CancelFunc
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewPool(queue Queue, processor Processor, redisClient *redis.Client, log *logger.Logger, workerCount int, jobTimeout time.Duration) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		queue:       queue,
		processor:   processor,
		redis:       redisClient,
		log:         log.With("component", "worker"),
		workerCount: workerCount,
		jobTimeout:  jobTimeout,
		pollWait:    DefaultPollWait,
		ctx:         ctx,
		cancel:      cancel,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.log.Info("worker pool started", "workers", p.workerCount)
}

// Stop tells workers to exit and waits for them. Jobs in flight are cancelled.
func (p *Pool) Stop() {
	close(p.stopChan)
	p.cancel()
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			p.log.Debug("worker shutting down", "worker", id)
			return
		default:
		}

		job, err := p.queue.Dequeue(p.ctx, p.pollWait)
		if err != nil {
			if !errors.Is(err, ErrQueueEmpty) && p.ctx.Err() == nil {
				p.log.Warn("dequeue failed", "worker", id, "error", err.Error())
				time.Sleep(time.Second)
			}
			continue
		}

		p.run(id, job)
	}
}

func (p *Pool) run(id int, job *models.GenerationJob) {
	// Try to acquire lock
	if p.redis != nil {
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(p.ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			return
		}
		defer p.redis.Del(context.Background(), lockKey)
	}

	p.log.Info("processing generation job", "worker", id, "job_id", job.ID.String(), "session_id", job.SessionID.String())

	ctx := p.ctx
	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(p.ctx, p.jobTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("generation job panicked", "job_id", job.ID.String(), "panic", fmt.Sprint(r))
			if err := p.processor.AbortGeneration(ctx, job, fmt.Errorf("generation worker panicked: %v", r)); err != nil {
				p.log.Error("failed to record aborted job", "job_id", job.ID.String(), "error", err.Error())
			}
		}
	}()

	if err := p.processor.ProcessGeneration(ctx, job); err != nil {
		p.log.Error("generation job failed", "job_id", job.ID.String(), "error", err.Error())
	}
}
