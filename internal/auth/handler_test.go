package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/store-management/internal"
	"github.com/frahmantamala/store-management/internal/store"
	"github.com/frahmantamala/store-management/internal/user"
	"github.com/frahmantamala/store-management/pkg/logger"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Auth Handler", func() {
	var (
		ctx     context.Context
		f       *authFixture
		handler *Handler
	)

	post := func(h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
		payload, err := json.Marshal(body)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		f = newAuthFixture(ctx)
		handler = NewHandler(f.service, logger.Discard())
	})

	ginkgo.AfterEach(func() {
		f.close()
	})

	ginkgo.It("logs in and returns an access token", func() {
		f.createUser(ctx, "alice@shop.com", user.RoleUser, true)

		rec := post(handler.Login, LoginDTO{Email: "alice@shop.com", Password: "password1"})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

		var result struct {
			Message string     `json:"message"`
			Tokens  AuthTokens `json:"tokens"`
		}
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(gomega.Succeed())
		gomega.Expect(result.Message).To(gomega.Equal(MsgUserLoggedIn))
		gomega.Expect(result.Tokens.AccessToken).NotTo(gomega.BeEmpty())
	})

	ginkgo.It("maps login rejections to HTTP statuses", func() {
		f.createUser(ctx, "alice@shop.com", user.RoleUser, true)
		f.createUser(ctx, "bob@shop.com", user.RoleUser, false)

		gomega.Expect(post(handler.Login, LoginDTO{Email: "alice@shop.com", Password: "password2"}).Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(post(handler.Login, LoginDTO{Email: "bob@shop.com", Password: "password1"}).Code).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(post(handler.Login, LoginDTO{Email: "ghost@shop.com", Password: "password1"}).Code).To(gomega.Equal(http.StatusNotFound))
		gomega.Expect(post(handler.Login, LoginDTO{Password: "password1"}).Code).To(gomega.Equal(http.StatusBadRequest))
	})

	ginkgo.It("registers a new account", func() {
		rec := post(handler.Register, RegisterDTO{Email: "carol@shop.com", Password: "password1"})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))

		rec = post(handler.Register, RegisterDTO{Email: "carol@shop.com", Password: "password1"})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusConflict))
	})

	ginkgo.It("rejects unknown request fields", func() {
		rec := post(handler.Login, map[string]string{"login": "alice"})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var (
			seen   internal.Actor
			guard  http.Handler
			called bool
		)

		ginkgo.BeforeEach(func() {
			called = false
			guard = handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				seen, _ = internal.ActorFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))
		})

		serve := func(token string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			rec := httptest.NewRecorder()
			guard.ServeHTTP(rec, req)
			return rec
		}

		ginkgo.It("puts the actor into the request context", func() {
			u := f.createUser(ctx, "alice@shop.com", user.RoleAdmin, true)
			tokens, err := f.service.IssueToken(NewSession(u))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			rec := serve(tokens.AccessToken)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(called).To(gomega.BeTrue())
			gomega.Expect(seen.UserID).To(gomega.Equal(u.ID))
			gomega.Expect(seen.IsAdmin()).To(gomega.BeTrue())
		})

		ginkgo.It("rejects missing and invalid tokens", func() {
			gomega.Expect(serve("").Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(serve("garbage").Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(called).To(gomega.BeFalse())
		})
	})
})

var _ = ginkgo.Describe("PermissionChecker", func() {
	var (
		ctx     context.Context
		f       *authFixture
		checker *PermissionChecker
		corner  *store.Store
		stores  *store.Service
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		f = newAuthFixture(ctx)
		checker = NewPermissionChecker(f.repo.Stores())
		stores = store.NewService(f.repo.Stores(), f.repo.Users(), f.repo.Inventories(), f.repo, nil, logger.Discard())

		resp, err := stores.CreateStore(ctx, "corner")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(resp.Success).To(gomega.BeTrue())
		corner, err = stores.GetStore(ctx, "corner")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.AfterEach(func() {
		f.close()
	})

	actorOf := func(u *user.User) internal.Actor {
		return NewSession(u).Actor()
	}

	ginkgo.It("lets admins do everything", func() {
		admin := f.createUser(ctx, "root@shop.com", user.RoleAdmin, true)

		gomega.Expect(checker.CanManageUsers(actorOf(admin))).To(gomega.BeTrue())
		gomega.Expect(checker.CanManageStore(ctx, actorOf(admin), corner)).To(gomega.BeTrue())
	})

	ginkgo.It("lets permission holders manage and employees view", func() {
		manager := f.createUser(ctx, "manager@shop.com", user.RoleUser, true)
		clerk := f.createUser(ctx, "clerk@shop.com", user.RoleUser, true)
		outsider := f.createUser(ctx, "outsider@shop.com", user.RoleUser, true)

		_, err := stores.AddPermission(ctx, corner, manager)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		_, err = stores.AddEmployee(ctx, corner, clerk.Email)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(checker.CanManageStore(ctx, actorOf(manager), corner)).To(gomega.BeTrue())
		gomega.Expect(checker.CanManageStore(ctx, actorOf(clerk), corner)).To(gomega.BeFalse())
		gomega.Expect(checker.CanViewStore(ctx, actorOf(clerk), corner)).To(gomega.BeTrue())
		gomega.Expect(checker.CanViewStore(ctx, actorOf(outsider), corner)).To(gomega.BeFalse())
		gomega.Expect(checker.CanManageUsers(actorOf(manager))).To(gomega.BeFalse())
	})
})
