package rest_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gatehouse/visitor-management/internal/audit"
	"github.com/gatehouse/visitor-management/internal/auth"
	"github.com/gatehouse/visitor-management/internal/dashboard"
	"github.com/gatehouse/visitor-management/internal/notification"
	"github.com/gatehouse/visitor-management/internal/transport"
	"github.com/gatehouse/visitor-management/internal/transport/rest"
	"github.com/gatehouse/visitor-management/internal/user"
	"github.com/gatehouse/visitor-management/internal/visitor"
)

// newTestHandlers builds the full handler set over unconnected services.
// Route wiring tests never reach a repository.
func newTestHandlers(lg *slog.Logger) rest.Handlers {
	base := transport.NewBaseHandler(lg)
	return rest.Handlers{
		Auth:         auth.NewHandler(auth.NewService(nil, nil, lg)),
		User:         user.NewHandler(base, user.NewService(nil, lg)),
		Visitor:      visitor.NewHandler(base, visitor.NewService(nil, nil, lg)),
		Audit:        audit.NewHandler(base, audit.NewService(nil, lg)),
		Notification: notification.NewHandler(base, notification.NewService(nil, lg)),
		Dashboard:    dashboard.NewHandler(base, dashboard.NewService(nil, lg)),
	}
}

var _ = Describe("Router", func() {
	var lg *slog.Logger

	BeforeEach(func() {
		lg = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	It("serves the OpenAPI document when swagger is enabled", func() {
		dir := GinkgoT().TempDir()
		Expect(os.MkdirAll(filepath.Join(dir, "api"), 0o755)).To(Succeed())
		doc := "openapi: 3.0.3\ninfo:\n  title: Visitor Management API\n"
		Expect(os.WriteFile(filepath.Join(dir, "api", "openapi.yml"), []byte(doc), 0o644)).To(Succeed())

		wd, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(dir)).To(Succeed())
		DeferCleanup(func() { Expect(os.Chdir(wd)).To(Succeed()) })

		router := rest.NewRouter(newTestHandlers(lg), rest.Options{Logger: lg, EnableSwagger: true})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yml", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Visitor Management API"))
	})

	It("keeps the document private when swagger is disabled", func() {
		router := rest.NewRouter(newTestHandlers(lg), rest.Options{Logger: lg})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yml", nil))
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("answers the liveness probe without a database", func() {
		router := rest.NewRouter(newTestHandlers(lg), rest.Options{Logger: lg})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
	})
})
