package auth

import (
	"context"
	"time"

	"github.com/frahmantamala/store-management/internal/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Auth Service", func() {
	var (
		ctx context.Context
		f   *authFixture
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		f = newAuthFixture(ctx)
	})

	ginkgo.AfterEach(func() {
		f.close()
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("returns a session for a verified user with the right password", func() {
			u := f.createUser(ctx, "alice@shop.com", user.RoleUser, true)

			resp, err := f.service.Login(ctx, LoginDTO{Email: "alice@shop.com", Password: "password1"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.Success).To(gomega.BeTrue())
			gomega.Expect(resp.Message).To(gomega.Equal(MsgUserLoggedIn))
			gomega.Expect(resp.Session).NotTo(gomega.BeNil())
			gomega.Expect(resp.Session.User.ID).To(gomega.Equal(u.ID))
			gomega.Expect(resp.Session.Actor().IsAdmin()).To(gomega.BeFalse())
		})

		ginkgo.DescribeTable("rejects bad attempts without a session",
			func(email, password, message string) {
				f.createUser(ctx, "alice@shop.com", user.RoleUser, true)
				f.createUser(ctx, "bob@shop.com", user.RoleUser, false)

				resp, err := f.service.Login(ctx, LoginDTO{Email: email, Password: password})
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(resp.Success).To(gomega.BeFalse())
				gomega.Expect(resp.Message).To(gomega.Equal(message))
				gomega.Expect(resp.Session).To(gomega.BeNil())
			},
			ginkgo.Entry("empty email", "", "password1", MsgEmailEmpty),
			ginkgo.Entry("empty password", "alice@shop.com", "", MsgPasswordEmpty),
			ginkgo.Entry("unknown user", "ghost@shop.com", "password1", MsgUserNotFound),
			ginkgo.Entry("wrong password", "alice@shop.com", "password2", MsgWrongPassword),
			ginkgo.Entry("unverified user", "bob@shop.com", "password1", MsgUserNotVerified),
		)
	})

	ginkgo.Describe("Register", func() {
		ginkgo.It("always creates an unverified USER", func() {
			resp, err := f.service.Register(ctx, RegisterDTO{Email: "carol@shop.com", Password: "password1"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.Success).To(gomega.BeTrue())

			u, err := f.users.GetUser(ctx, "carol@shop.com")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(u.Role).To(gomega.Equal(user.RoleUser))
			gomega.Expect(u.IsVerified).To(gomega.BeFalse())
		})

		ginkgo.It("passes validation messages through", func() {
			resp, err := f.service.Register(ctx, RegisterDTO{Email: "carol@shop.com", Password: "short"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.Message).To(gomega.Equal(user.MsgPasswordTooShort))
		})
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("turns an issued token back into a session", func() {
			u := f.createUser(ctx, "alice@shop.com", user.RoleAdmin, true)

			tokens, err := f.service.IssueToken(NewSession(u))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			session, err := f.service.Authenticate(ctx, tokens.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(session.User.Email).To(gomega.Equal("alice@shop.com"))
			gomega.Expect(session.Actor().IsAdmin()).To(gomega.BeTrue())
		})

		ginkgo.It("rejects the token of a deleted user", func() {
			u := f.createUser(ctx, "alice@shop.com", user.RoleUser, true)
			tokens, err := f.service.IssueToken(NewSession(u))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = f.users.DeleteUser(ctx, u)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = f.service.Authenticate(ctx, tokens.AccessToken)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("rejects garbage", func() {
			_, err := f.service.Authenticate(ctx, "not-a-token")
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})
	})
})

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var session *Session

	ginkgo.BeforeEach(func() {
		session = NewSession(&user.User{ID: 7, Email: "a@b.com", Role: user.RoleAdmin})
	})

	ginkgo.It("round-trips the session claims", func() {
		g := NewJWTTokenGenerator(testSecret, time.Minute)
		tokens, err := g.GenerateAccessToken(session)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		claims, err := g.ValidateToken(tokens.AccessToken)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(claims.UserID).To(gomega.Equal(int64(7)))
		gomega.Expect(claims.Role).To(gomega.Equal("ADMIN"))
	})

	ginkgo.It("reports expired tokens", func() {
		g := NewJWTTokenGenerator(testSecret, time.Minute)
		issued := time.Now().Add(-time.Hour)
		g.now = func() time.Time { return issued }
		tokens, err := g.GenerateAccessToken(session)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		g.now = time.Now
		_, err = g.ValidateToken(tokens.AccessToken)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
	})

	ginkgo.It("rejects tokens signed with another secret", func() {
		other := NewJWTTokenGenerator("another-secret-another-secret-xx", time.Minute)
		tokens, err := other.GenerateAccessToken(session)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = NewJWTTokenGenerator(testSecret, time.Minute).ValidateToken(tokens.AccessToken)
		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})
})
