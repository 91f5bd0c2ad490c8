package user_test

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/store-management/internal/cache"
	"github.com/frahmantamala/store-management/internal/user"
	"github.com/frahmantamala/store-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingInvalidator struct {
	calls     int
	cancelled int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls++
	if ctx.Err() != nil {
		c.cancelled++
	}
	return nil
}

var _ = Describe("CachedRepository", func() {
	var (
		ctx       context.Context
		repo      *memoryRepository
		dependent *countingInvalidator
		cached    *user.CachedRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMemoryRepository()
		dependent = &countingInvalidator{}
		cached = user.NewCachedRepository(repo, cache.NewMemory(), time.Minute, logger.Discard(), dependent)

		_, err := cached.Create(ctx, user.New("a@b.com", "hash", user.RoleUser))
		Expect(err).NotTo(HaveOccurred())
	})

	It("loads the whole collection once for repeated reads", func() {
		before := repo.loads()

		u, err := cached.GetByEmail(ctx, "a@b.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(u).NotTo(BeNil())

		_, err = cached.GetByID(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		_, err = cached.GetAll(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(repo.loads()).To(Equal(before + 1))
	})

	It("returns nil for unknown users", func() {
		u, err := cached.GetByEmail(ctx, "missing@b.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(u).To(BeNil())
	})

	It("observes a write on the next read", func() {
		u, _ := cached.GetByEmail(ctx, "a@b.com")
		updated := u.Clone()
		updated.IsVerified = true
		Expect(cached.Update(ctx, updated)).To(Succeed())

		again, err := cached.GetByEmail(ctx, "a@b.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(again.IsVerified).To(BeTrue())
	})

	It("drops dependent collections on every write", func() {
		Expect(dependent.calls).To(Equal(1))

		u, _ := cached.GetByEmail(ctx, "a@b.com")
		Expect(cached.Delete(ctx, u)).To(Succeed())
		Expect(dependent.calls).To(Equal(2))
	})

	It("drops the cache even when the write reports a failure", func() {
		u, _ := cached.GetByEmail(ctx, "a@b.com")
		repo.failWith = errors.New("connection reset")

		err := cached.Update(ctx, u)
		Expect(err).To(MatchError(ContainSubstring("connection reset")))
		Expect(dependent.calls).To(Equal(2))
	})

	It("invalidates with a live context after the caller cancelled", func() {
		u, _ := cached.GetByEmail(ctx, "a@b.com")
		updated := u.Clone()
		updated.IsVerified = true

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		Expect(cached.Update(cancelled, updated)).To(Succeed())
		Expect(dependent.calls).To(Equal(2))
		Expect(dependent.cancelled).To(BeZero())

		again, err := cached.GetByEmail(ctx, "a@b.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(again.IsVerified).To(BeTrue())
	})

	It("hands out copies that do not alter the cache", func() {
		u, _ := cached.GetByEmail(ctx, "a@b.com")
		u.Email = "changed@b.com"

		again, _ := cached.GetByEmail(ctx, "a@b.com")
		Expect(again).NotTo(BeNil())
	})

	It("reads the store directly for GetByIDUncached", func() {
		u, _ := cached.GetByEmail(ctx, "a@b.com")
		before := repo.loads()

		fresh, err := cached.GetByIDUncached(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(fresh.Email).To(Equal("a@b.com"))
		Expect(repo.loads()).To(Equal(before))
	})
})
