package rest_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gatehouse/visitor-management/internal/transport/rest"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rest Suite")
}

var _ = Describe("HealthHandler", func() {
	perform := func(handler http.HandlerFunc, path string) (*httptest.ResponseRecorder, rest.HealthResponse) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		handler(rec, req)

		var resp rest.HealthResponse
		ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		return rec, resp
	}

	Describe("Liveness", func() {
		It("reports ok without touching the database", func() {
			handler := rest.NewHealthHandler(nil)
			rec, resp := perform(handler.Liveness, "/health")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(resp.Status).To(Equal("ok"))
			Expect(resp.Timestamp).NotTo(BeEmpty())
			Expect(resp.Uptime).NotTo(BeEmpty())
		})
	})

	Describe("Readiness", func() {
		It("reports ok when the database answers the ping", func() {
			db, err := sqlx.Open("sqlite3", ":memory:")
			Expect(err).NotTo(HaveOccurred())
			defer db.Close()

			handler := rest.NewHealthHandler(db)
			rec, resp := perform(handler.Readiness, "/health/ready")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(resp.Status).To(Equal("ok"))
			Expect(resp.Components).To(HaveKey("database"))
			Expect(resp.Components["database"].Status).To(Equal("ok"))
		})

		It("turns unhealthy when the pool is closed", func() {
			db, err := sqlx.Open("sqlite3", ":memory:")
			Expect(err).NotTo(HaveOccurred())
			Expect(db.Close()).To(Succeed())

			handler := rest.NewHealthHandler(db)
			rec, resp := perform(handler.Readiness, "/health/ready")

			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(resp.Status).To(Equal("unhealthy"))
			Expect(resp.Components["database"].Status).To(Equal("unhealthy"))
			Expect(resp.Components["database"].Message).NotTo(BeEmpty())
		})

		It("reports an uninitialized database without panicking", func() {
			handler := rest.NewHealthHandler(nil)
			rec, resp := perform(handler.Readiness, "/health/ready")

			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(resp.Components["database"].Message).To(Equal("database not initialized"))
		})
	})
})
