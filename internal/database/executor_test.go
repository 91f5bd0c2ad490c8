package database_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/store-management/internal/database"
	"github.com/frahmantamala/store-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Executor", func() {
	var exec *database.Executor

	BeforeEach(func() {
		exec = database.NewExecutor(database.ExecutorConfig{Workers: 2, QueueSize: 8}, logger.Discard())
	})

	AfterEach(func() {
		exec.Shutdown()
	})

	Describe("Do", func() {
		It("returns only after the task has finished", func() {
			var done atomic.Bool
			err := exec.Do(context.Background(), func(ctx context.Context) error {
				time.Sleep(20 * time.Millisecond)
				done.Store(true)
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(done.Load()).To(BeTrue())
		})

		It("propagates the task error", func() {
			boom := errors.New("boom")
			err := exec.Do(context.Background(), func(ctx context.Context) error {
				return boom
			})
			Expect(err).To(MatchError(boom))
		})

		It("turns a panic into an error", func() {
			err := exec.Do(context.Background(), func(ctx context.Context) error {
				panic("bad row")
			})
			Expect(err).To(MatchError(ContainSubstring("bad row")))
		})

		It("does not start a task whose context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			var ran atomic.Bool
			err := exec.Do(ctx, func(ctx context.Context) error {
				ran.Store(true)
				return nil
			})
			Expect(err).To(MatchError(context.Canceled))
			Consistently(ran.Load, 50*time.Millisecond).Should(BeFalse())
		})

		It("waits for a running task after the caller cancels", func() {
			ctx, cancel := context.WithCancel(context.Background())
			running := make(chan struct{})

			var committed atomic.Bool
			go func() {
				<-running
				cancel()
			}()
			err := exec.Do(ctx, func(context.Context) error {
				close(running)
				time.Sleep(30 * time.Millisecond)
				committed.Store(true)
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(committed.Load()).To(BeTrue())
		})
	})

	Describe("Submit", func() {
		It("runs at most two tasks at the same time", func() {
			var running, peak atomic.Int32
			futures := make([]<-chan error, 0, 6)
			for i := 0; i < 6; i++ {
				futures = append(futures, exec.Submit(context.Background(), func(ctx context.Context) error {
					n := running.Add(1)
					for {
						p := peak.Load()
						if n <= p || peak.CompareAndSwap(p, n) {
							break
						}
					}
					time.Sleep(10 * time.Millisecond)
					running.Add(-1)
					return nil
				}))
			}
			for _, f := range futures {
				Eventually(f).Should(Receive(BeNil()))
			}
			Expect(peak.Load()).To(BeNumerically("<=", 2))
		})
	})

	Describe("Go", func() {
		It("runs fire-and-forget tasks and swallows their errors", func() {
			finished := make(chan struct{}, 2)
			exec.Go(func(ctx context.Context) error {
				finished <- struct{}{}
				return errors.New("logged only")
			})
			exec.Go(func(ctx context.Context) error {
				finished <- struct{}{}
				return nil
			})
			Eventually(finished).Should(Receive())
			Eventually(finished).Should(Receive())
		})
	})

	Describe("Shutdown", func() {
		It("rejects tasks submitted after shutdown", func() {
			exec.Shutdown()
			err := exec.Do(context.Background(), func(ctx context.Context) error { return nil })
			Expect(err).To(MatchError(database.ErrExecutorClosed))
		})
	})
})

var _ = Describe("Inline", func() {
	It("runs the task on the caller", func() {
		var ran bool
		err := database.Inline{}.Do(context.Background(), func(ctx context.Context) error {
			ran = true
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(ran).To(BeTrue())
	})

	It("recovers panics", func() {
		err := database.Inline{}.Do(context.Background(), func(ctx context.Context) error {
			panic("oops")
		})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Open", func() {
	It("opens a single-connection sqlite database", func() {
		db, err := database.Open(databaseConfig())
		Expect(err).NotTo(HaveOccurred())
		defer database.Close(db)

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Stats().MaxOpenConnections).To(Equal(1))
	})

	It("rejects unknown drivers", func() {
		cfg := databaseConfig()
		cfg.Driver = "oracle"
		_, err := database.Open(cfg)
		Expect(err).To(MatchError(ContainSubstring("unsupported database driver")))
	})
})
