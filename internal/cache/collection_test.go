package cache_test

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/store-management/internal/cache"
	"github.com/frahmantamala/store-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type record struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (failingBackend) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

var _ = Describe("Collection", func() {
	var (
		ctx     context.Context
		loads   int
		source  []record
		loadErr error
		load    cache.LoadFunc[record]
	)

	BeforeEach(func() {
		ctx = context.Background()
		loads = 0
		loadErr = nil
		source = []record{{ID: 1, Name: "first"}}
		load = func(context.Context) ([]record, error) {
			loads++
			if loadErr != nil {
				return nil, loadErr
			}
			return append([]record(nil), source...), nil
		}
	})

	It("loads once and serves later reads from the backend", func() {
		c := cache.NewCollection(cache.NewMemory(), "records", time.Minute, load, logger.Discard())

		items, err := c.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(Equal(source))

		source = append(source, record{ID: 2, Name: "second"})
		items, err = c.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(1))
		Expect(loads).To(Equal(1))
	})

	It("reloads after invalidation", func() {
		c := cache.NewCollection(cache.NewMemory(), "records", time.Minute, load, logger.Discard())
		_, err := c.Get(ctx)
		Expect(err).NotTo(HaveOccurred())

		source = append(source, record{ID: 2, Name: "second"})
		Expect(c.Invalidate(ctx)).To(Succeed())

		items, err := c.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(2))
		Expect(loads).To(Equal(2))
	})

	It("reloads once the ttl has passed", func() {
		now := time.Now()
		backend := cache.NewMemory().WithClock(func() time.Time { return now })
		c := cache.NewCollection(backend, "records", 10*time.Minute, load, logger.Discard())

		_, err := c.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		now = now.Add(10 * time.Minute)
		_, err = c.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(loads).To(Equal(2))
	})

	It("hands out independent copies", func() {
		c := cache.NewCollection(cache.NewMemory(), "records", time.Minute, load, logger.Discard())
		_, err := c.Get(ctx)
		Expect(err).NotTo(HaveOccurred())

		items, err := c.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		items[0].Name = "changed"

		again, err := c.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(again[0].Name).To(Equal("first"))
	})

	It("falls back to the loader when the backend fails", func() {
		c := cache.NewCollection[record](failingBackend{}, "records", time.Minute, load, logger.Discard())

		items, err := c.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(Equal(source))
		Expect(c.Invalidate(ctx)).NotTo(Succeed())
	})

	It("propagates loader failures", func() {
		loadErr = errors.New("db down")
		c := cache.NewCollection(cache.NewMemory(), "records", time.Minute, load, logger.Discard())

		_, err := c.Get(ctx)
		Expect(err).To(MatchError(ContainSubstring("db down")))
	})
})
