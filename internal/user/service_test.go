package user_test

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/store-management/internal/user"
	"github.com/frahmantamala/store-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("User Service", func() {
	var (
		ctx     context.Context
		repo    *memoryRepository
		service *user.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMemoryRepository()
		service = user.NewService(repo, 4, nil, logger.Discard())
	})

	create := func(email, password string) {
		resp, err := service.CreateUser(ctx, user.CreateUserDTO{Email: email, Password: password})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Success).To(BeTrue(), resp.Message)
	}

	Describe("CreateUser", func() {
		It("creates an unverified USER with a hashed password", func() {
			resp, err := service.CreateUser(ctx, user.CreateUserDTO{Email: "a@b.com", Password: "password1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp).To(Equal(user.Response{Success: true, Message: user.MsgUserCreated}))

			stored, err := repo.GetByEmail(ctx, "a@b.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).NotTo(BeNil())
			Expect(stored.Role).To(Equal(user.RoleUser))
			Expect(stored.IsVerified).To(BeFalse())
			Expect(stored.PasswordHash).NotTo(Equal("password1"))
			Expect(user.VerifyPassword(stored.PasswordHash, "password1")).To(BeTrue())
		})

		It("honours an explicit ADMIN role", func() {
			resp, err := service.CreateUser(ctx, user.CreateUserDTO{Email: "boss@b.com", Password: "password1", Role: "admin"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Success).To(BeTrue())

			stored, _ := repo.GetByEmail(ctx, "boss@b.com")
			Expect(stored.Role).To(Equal(user.RoleAdmin))
		})

		DescribeTable("rejects invalid credentials",
			func(email, password, message string) {
				resp, err := service.CreateUser(ctx, user.CreateUserDTO{Email: email, Password: password})
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.Success).To(BeFalse())
				Expect(resp.Message).To(Equal(message))
			},
			Entry("empty email", "", "password1", user.MsgEmailEmpty),
			Entry("empty password", "a@b.com", "", user.MsgPasswordEmpty),
			Entry("malformed email", "not-an-email", "password1", user.MsgEmailInvalid),
			Entry("top level domain too long", "a@b.comcom", "password1", user.MsgEmailInvalid),
			Entry("short password", "a@b.com", "short", user.MsgPasswordTooShort),
			Entry("password over 72 bytes", "a@b.com", strings.Repeat("x", 80), user.MsgPasswordTooLong),
			Entry("multibyte password over 72 bytes", "a@b.com", strings.Repeat("é", 40), user.MsgPasswordTooLong),
		)

		It("accepts a password of exactly 72 bytes", func() {
			resp, err := service.CreateUser(ctx, user.CreateUserDTO{Email: "long@b.com", Password: strings.Repeat("x", 72)})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Success).To(BeTrue())
		})

		It("checks an empty email before an empty password", func() {
			resp, err := service.CreateUser(ctx, user.CreateUserDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal(user.MsgEmailEmpty))
		})

		It("rejects an unknown role", func() {
			resp, err := service.CreateUser(ctx, user.CreateUserDTO{Email: "a@b.com", Password: "password1", Role: "OWNER"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal(user.MsgInvalidRole))
		})

		It("rejects a duplicate email", func() {
			create("a@b.com", "password1")

			resp, err := service.CreateUser(ctx, user.CreateUserDTO{Email: "a@b.com", Password: "password2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp).To(Equal(user.Response{Success: false, Message: user.MsgUserExists}))
		})

		It("returns storage failures as errors", func() {
			repo.failWith = errors.New("connection lost")

			_, err := service.CreateUser(ctx, user.CreateUserDTO{Email: "a@b.com", Password: "password1"})
			Expect(err).To(MatchError(ContainSubstring("connection lost")))
		})
	})

	Describe("EditUser", func() {
		var existing *user.User

		BeforeEach(func() {
			create("a@b.com", "password1")
			existing, _ = repo.GetByEmail(ctx, "a@b.com")
		})

		It("replaces email and password and keeps the verified flag", func() {
			_, err := service.VerifyUser(ctx, existing)
			Expect(err).NotTo(HaveOccurred())

			resp, err := service.EditUser(ctx, existing, user.EditUserDTO{Email: "new@b.com", Password: "password2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp).To(Equal(user.Response{Success: true, Message: user.MsgUserEdited}))

			stored, _ := repo.GetByID(ctx, existing.ID)
			Expect(stored.Email).To(Equal("new@b.com"))
			Expect(stored.IsVerified).To(BeTrue())
			Expect(user.VerifyPassword(stored.PasswordHash, "password2")).To(BeTrue())
		})

		It("allows keeping the same email", func() {
			resp, err := service.EditUser(ctx, existing, user.EditUserDTO{Email: "a@b.com", Password: "password2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Success).To(BeTrue())
		})

		It("rejects taking another user's email", func() {
			create("other@b.com", "password1")

			resp, err := service.EditUser(ctx, existing, user.EditUserDTO{Email: "other@b.com", Password: "password2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal(user.MsgUserExists))
		})

		It("re-validates the new credentials", func() {
			resp, err := service.EditUser(ctx, existing, user.EditUserDTO{Email: "a@b.com", Password: strings.Repeat("x", 73)})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal(user.MsgPasswordTooLong))

			resp, err = service.EditUser(ctx, existing, user.EditUserDTO{Email: "a@b.com", Password: "short"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal(user.MsgPasswordTooShort))
		})

		It("reports an unknown user", func() {
			resp, err := service.EditUser(ctx, &user.User{ID: 999}, user.EditUserDTO{Email: "x@b.com", Password: "password2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal(user.MsgUserNotFound))
		})
	})

	Describe("DeleteUser and VerifyUser", func() {
		It("deletes an existing user", func() {
			create("a@b.com", "password1")
			u, _ := repo.GetByEmail(ctx, "a@b.com")

			resp, err := service.DeleteUser(ctx, u)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp).To(Equal(user.Response{Success: true, Message: user.MsgUserDeleted}))

			gone, _ := repo.GetByID(ctx, u.ID)
			Expect(gone).To(BeNil())
		})

		It("verifies an existing user", func() {
			create("a@b.com", "password1")
			u, _ := repo.GetByEmail(ctx, "a@b.com")

			resp, err := service.VerifyUser(ctx, u)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal(user.MsgUserVerified))

			stored, _ := repo.GetByID(ctx, u.ID)
			Expect(stored.IsVerified).To(BeTrue())
		})

		It("reports unknown users", func() {
			resp, err := service.DeleteUser(ctx, &user.User{ID: 42})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal(user.MsgUserNotFound))

			resp, err = service.VerifyUser(ctx, &user.User{ID: 42})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal(user.MsgUserNotFound))
		})
	})

	Describe("SearchUsers", func() {
		It("matches a case-insensitive email substring", func() {
			create("alice@shop.com", "password1")
			create("bob@shop.com", "password1")
			create("carol@other.org", "password1")

			found, err := service.SearchUsers(ctx, "SHOP")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(2))

			found, err = service.SearchUsers(ctx, "nobody")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeEmpty())
		})
	})
})

var _ = Describe("User", func() {
	It("compares every persisted field in Equal", func() {
		a := &user.User{ID: 1, Email: "a@b.com", PasswordHash: "h", Role: user.RoleUser}
		b := a.Clone()
		Expect(a.Equal(b)).To(BeTrue())

		b.IsVerified = true
		Expect(a.Equal(b)).To(BeFalse())
	})

	It("parses roles in any case", func() {
		role, ok := user.ParseRole(" admin ")
		Expect(ok).To(BeTrue())
		Expect(role).To(Equal(user.RoleAdmin))

		_, ok = user.ParseRole("guest")
		Expect(ok).To(BeFalse())
	})

	It("leaves the password hash out of the response shape", func() {
		u := &user.User{ID: 1, Email: "a@b.com", PasswordHash: "secret", Role: user.RoleUser}
		Expect(u.ToResponse()).To(Equal(user.UserResponse{ID: 1, Email: "a@b.com", Role: "USER"}))
	})
})
