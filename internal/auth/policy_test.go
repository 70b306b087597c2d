package auth

import (
	"net/http"
	"net/http/httptest"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Authorizer", func() {
	var (
		authorizer *Authorizer
		okHandler  http.Handler
	)

	reviewer := &User{
		ID:          7,
		Username:    "reviewer",
		Role:        "reviewer",
		Permissions: []string{PermEvaluationsRead},
	}

	ginkgo.BeforeEach(func() {
		authorizer = NewAuthorizer(nil)
		okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	serve := func(guard func(http.Handler) http.Handler, actor *User) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		if actor != nil {
			req = req.WithContext(ContextWithUser(req.Context(), actor))
		}
		rec := httptest.NewRecorder()
		guard(okHandler).ServeHTTP(rec, req)
		return rec
	}

	ginkgo.Describe("RequirePermission", func() {
		ginkgo.It("passes an actor holding the permission", func() {
			rec := serve(authorizer.RequirePermission(PermEvaluationsRead), reviewer)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("rejects an actor missing the permission with 403", func() {
			rec := serve(authorizer.RequirePermission(PermEvaluationsCreate), reviewer)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("insufficient permissions"))
		})

		ginkgo.It("rejects a request with no actor with 401", func() {
			rec := serve(authorizer.RequirePermission(PermEvaluationsRead), nil)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("RequireRole", func() {
		ginkgo.It("matches any of the named roles", func() {
			rec := serve(authorizer.RequireRole(RoleAdmin, "reviewer"), reviewer)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("rejects actors outside the named roles", func() {
			rec := serve(authorizer.RequireRole(RoleAdmin), reviewer)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})
	})

	ginkgo.Describe("default employee grants", func() {
		employee := &User{
			ID:          3,
			Username:    "alice",
			Role:        RoleEmployee,
			Permissions: DefaultRoleGrants[RoleEmployee],
		}

		ginkgo.It("pass the evaluation create guard for self-assessments", func() {
			rec := serve(authorizer.RequirePermission(PermEvaluationsCreate), employee)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("pass the evaluation read guard", func() {
			rec := serve(authorizer.RequirePermission(PermEvaluationsRead), employee)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("stop at user administration", func() {
			rec := serve(authorizer.RequirePermission(PermUsersCreate), employee)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})
	})

	ginkgo.Describe("AnyOf", func() {
		ginkgo.It("passes when either predicate passes", func() {
			guard := authorizer.Require(AnyOf(HasRole(RoleAdmin), HasPermission(PermEvaluationsRead)))
			rec := serve(guard, reviewer)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("rejects when no predicate passes", func() {
			guard := authorizer.Require(AnyOf(HasRole(RoleAdmin), HasPermission(PermReportsExport)))
			rec := serve(guard, reviewer)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})
	})
})
