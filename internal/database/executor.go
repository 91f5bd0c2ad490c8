package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/frahmantamala/store-management/pkg/metrics"
)

// ErrExecutorClosed is reported for tasks submitted to, or still queued in,
// an executor that has been shut down.
var ErrExecutorClosed = errors.New("database executor is closed")

// Task is a unit of database work run by a Runner.
type Task func(ctx context.Context) error

// Runner executes database tasks. Entity stores write through Do, so a
// write has finished once Do returns.
type Runner interface {
	Do(ctx context.Context, task Task) error
	Go(task Task)
}

type job struct {
	ctx      context.Context
	task     Task
	done     chan error
	started  chan struct{}
	detached bool
}

type Worker struct {
	ID         int
	WorkerPool chan chan job
	JobChannel chan job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case j := <-w.JobChannel:
				processFunc(j)
			case <-ctx.Done():
				w.Logger.Debug("executor worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Executor is the fixed-size worker pool all entity-store writes go through.
type Executor struct {
	logger *slog.Logger

	jobQueue   chan job
	workerPool chan chan job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	stopped    chan struct{}
	wg         sync.WaitGroup
	once       sync.Once
	stopOnce   sync.Once
}

type ExecutorConfig struct {
	Workers   int
	QueueSize int
}

func NewExecutor(config ExecutorConfig, logger *slog.Logger) *Executor {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.Workers
	if maxWorkers <= 0 {
		maxWorkers = 2
	}

	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	e := &Executor{
		logger:     logger,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan job, queueSize),
		workerPool: make(chan chan job, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
		stopped:    make(chan struct{}),
	}

	e.start()

	return e
}

func (e *Executor) start() {
	e.once.Do(func() {
		for i := 0; i < e.maxWorkers; i++ {
			worker := NewWorker(i, e.workerPool, e.logger)
			worker.Start(e.ctx, &e.wg, e.process)
		}

		e.wg.Add(1)
		go e.dispatch()

		e.logger.Info("database executor started",
			"workers", e.maxWorkers,
			"queue_size", cap(e.jobQueue))
	})
}

func (e *Executor) dispatch() {
	defer e.wg.Done()

	for {
		select {
		case j := <-e.jobQueue:
			metrics.ExecutorQueueDepth.Dec()

			select {
			case jobChannel := <-e.workerPool:
				select {
				case jobChannel <- j:
				case <-e.ctx.Done():
					e.reject(j)
					return
				}
			case <-e.ctx.Done():
				e.reject(j)
				return
			}
		case <-e.ctx.Done():
			return
		}
	}
}

// Submit enqueues task and returns a channel that receives its result
// exactly once. A task whose ctx is done before a worker picks it up is not
// run and reports ctx.Err().
func (e *Executor) Submit(ctx context.Context, task Task) <-chan error {
	future, _ := e.enqueue(ctx, task, false)
	return future
}

// Do submits task and waits for it to finish. A cancelled ctx only abandons
// the task while it is still queued; once a worker has taken it, Do waits for
// its real outcome.
func (e *Executor) Do(ctx context.Context, task Task) error {
	future, started := e.enqueue(ctx, task, false)
	select {
	case err := <-future:
		return err
	case <-ctx.Done():
		select {
		case <-started:
			return <-future
		default:
			return ctx.Err()
		}
	case <-e.stopped:
		select {
		case err := <-future:
			return err
		default:
			return ErrExecutorClosed
		}
	}
}

// Go runs task in the background. Failures are only logged.
func (e *Executor) Go(task Task) {
	e.enqueue(context.Background(), task, true)
}

func (e *Executor) enqueue(ctx context.Context, task Task, detached bool) (<-chan error, <-chan struct{}) {
	done := make(chan error, 1)
	started := make(chan struct{})
	j := job{ctx: ctx, task: task, done: done, started: started, detached: detached}

	select {
	case <-e.ctx.Done():
		e.reject(j)
		return done, started
	default:
	}

	select {
	case e.jobQueue <- j:
		metrics.ExecutorQueueDepth.Inc()
	case <-ctx.Done():
		done <- ctx.Err()
	case <-e.ctx.Done():
		e.reject(j)
	}
	return done, started
}

// process marks the job as taken before looking at its ctx, so a caller that
// sees the ctx done and the job not yet taken knows the task will not run.
func (e *Executor) process(j job) {
	close(j.started)
	err := j.ctx.Err()
	if err == nil {
		err = runTask(j.ctx, j.task)
	}
	e.finish(j, err)
}

func (e *Executor) finish(j job, err error) {
	mode := "await"
	if j.detached {
		mode = "async"
	}
	result := "ok"
	if err != nil {
		result = "error"
		if j.detached {
			e.logger.Error("background database task failed", "error", err)
		}
	}
	metrics.ExecutorTasks.WithLabelValues(mode, result).Inc()
	j.done <- err
}

func (e *Executor) reject(j job) {
	e.finish(j, ErrExecutorClosed)
}

// Shutdown stops the workers after their current task and fails every task
// still waiting in the queue.
func (e *Executor) Shutdown() {
	e.stopOnce.Do(func() {
		e.logger.Info("shutting down database executor")
		e.cancel()
		e.wg.Wait()

		for {
			select {
			case j := <-e.jobQueue:
				metrics.ExecutorQueueDepth.Dec()
				e.reject(j)
			default:
				close(e.stopped)
				e.logger.Info("database executor shutdown complete")
				return
			}
		}
	})
}

func runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("database task panicked: %v", r)
		}
	}()
	return task(ctx)
}
