package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestMiddleware(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Transport Middleware Suite")
}

var _ = ginkgo.Describe("RequestID", func() {
	ginkgo.It("issues one id visible to both the handler and the response", func() {
		var seen string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = TraceID(r.Context())
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		gomega.Expect(seen).NotTo(gomega.BeEmpty())
		gomega.Expect(rec.Header().Get("X-Trace-ID")).To(gomega.Equal(seen))
	})

	ginkgo.It("keeps a caller supplied id", func() {
		var seen string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = TraceID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Trace-ID", "trace-abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		gomega.Expect(seen).To(gomega.Equal("trace-abc"))
		gomega.Expect(rec.Header().Get("X-Trace-ID")).To(gomega.Equal("trace-abc"))
	})
})

var _ = ginkgo.Describe("sensitive field filtering", func() {
	ginkgo.It("masks credential fields in JSON bodies", func() {
		filtered := filterSensitiveBody([]byte(`{"identifier":"jdoe","password":"hunter2"}`))

		gomega.Expect(filtered).To(gomega.ContainSubstring(`"identifier":"jdoe"`))
		gomega.Expect(filtered).To(gomega.ContainSubstring(`"password":"[FILTERED]"`))
		gomega.Expect(filtered).NotTo(gomega.ContainSubstring("hunter2"))
	})

	ginkgo.It("masks nested token fields", func() {
		filtered := filterSensitiveBody([]byte(`{"data":{"access_token":"abc","name":"x"}}`))

		gomega.Expect(filtered).NotTo(gomega.ContainSubstring("abc"))
		gomega.Expect(filtered).To(gomega.ContainSubstring(`"name":"x"`))
	})

	ginkgo.It("masks authorization headers", func() {
		headers := http.Header{}
		headers.Set("Authorization", "Bearer secret-token")
		headers.Set("Accept", "application/json")

		filtered := filterSensitiveHeaders(headers)

		gomega.Expect(filtered["Authorization"]).To(gomega.Equal("[FILTERED]"))
		gomega.Expect(filtered["Accept"]).To(gomega.Equal("application/json"))
	})
})
