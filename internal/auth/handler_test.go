package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internalerrors "github.com/gatehouse/visitor-management/internal"
	"github.com/gatehouse/visitor-management/internal/auth"
	"github.com/gatehouse/visitor-management/internal/transport"
)

type stubAuthService struct {
	claims        *auth.Claims
	validateError error
	account       *auth.Account
}

func (s *stubAuthService) Register(context.Context, auth.RegisterDTO) (*auth.Account, auth.AuthTokens, error) {
	return nil, auth.AuthTokens{}, nil
}

func (s *stubAuthService) Authenticate(context.Context, auth.LoginDTO) (*auth.Account, auth.AuthTokens, error) {
	return nil, auth.AuthTokens{}, nil
}

func (s *stubAuthService) RefreshTokens(context.Context, string) (auth.AuthTokens, error) {
	return auth.AuthTokens{}, nil
}

func (s *stubAuthService) ValidateAccessToken(string) (*auth.Claims, error) {
	if s.validateError != nil {
		return nil, s.validateError
	}
	return s.claims, nil
}

func (s *stubAuthService) CurrentUser(context.Context, int64) (*auth.Account, error) {
	if s.account == nil {
		return nil, internalerrors.NewNotFoundError("User not found", internalerrors.ErrCodeUserNotFound)
	}
	return s.account, nil
}

func decodeEnvelope(rec *httptest.ResponseRecorder) transport.Envelope {
	var envelope transport.Envelope
	ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), &envelope)).To(Succeed())
	return envelope
}

var _ = Describe("AuthMiddleware", func() {
	var (
		handler *auth.Handler
		stub    *stubAuthService
		next    http.Handler
		reached bool
	)

	BeforeEach(func() {
		stub = &stubAuthService{}
		handler = auth.NewHandler(stub)
		reached = false
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusOK)
		})
	})

	It("rejects a request without a token", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/visitors", nil)
		rec := httptest.NewRecorder()

		handler.AuthMiddleware(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(reached).To(BeFalse())
		Expect(decodeEnvelope(rec).Message).To(Equal("No token provided"))
	})

	It("rejects a malformed authorization header", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/visitors", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()

		handler.AuthMiddleware(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(decodeEnvelope(rec).Message).To(Equal("No token provided"))
	})

	It("distinguishes an expired token from an invalid one", func() {
		stub.validateError = internalerrors.ErrTokenExpired
		req := httptest.NewRequest(http.MethodGet, "/api/visitors", nil)
		req.Header.Set("Authorization", "Bearer stale")
		rec := httptest.NewRecorder()

		handler.AuthMiddleware(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(decodeEnvelope(rec).Message).To(Equal("Token expired"))
	})

	It("rejects a token with a bad signature", func() {
		stub.validateError = internalerrors.ErrInvalidToken
		req := httptest.NewRequest(http.MethodGet, "/api/visitors", nil)
		req.Header.Set("Authorization", "Bearer forged")
		rec := httptest.NewRecorder()

		handler.AuthMiddleware(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(decodeEnvelope(rec).Message).To(Equal("Invalid token"))
	})

	It("passes the resolved identity to the next handler", func() {
		stub.claims = &auth.Claims{UserID: 7, Email: "host@gatehouse.local", Role: auth.RoleEmployee}
		var seen auth.Identity
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			Expect(ok).To(BeTrue())
			seen = identity
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/visitors", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()

		handler.AuthMiddleware(inner).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(seen.ID).To(Equal(int64(7)))
		Expect(seen.Role).To(Equal(auth.RoleEmployee))
	})
})

var _ = Describe("RequireRoles", func() {
	var (
		handler *auth.Handler
		next    http.Handler
		reached bool
	)

	request := func(role auth.Role) (*httptest.ResponseRecorder, *http.Request) {
		req := httptest.NewRequest(http.MethodPost, "/api/visitors/1/checkin", nil)
		if role != "" {
			identity := auth.Identity{ID: 4, Email: "frontdesk@gatehouse.local", Role: role}
			req = req.WithContext(auth.ContextWithIdentity(req.Context(), identity))
		}
		return httptest.NewRecorder(), req
	}

	BeforeEach(func() {
		handler = auth.NewHandler(&stubAuthService{})
		reached = false
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusOK)
		})
	})

	It("admits a caller holding one of the allowed roles", func() {
		rec, req := request(auth.RoleReceptionist)

		handler.RequireRoles(auth.RoleReceptionist)(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(reached).To(BeTrue())
	})

	It("refuses a caller outside the allowed roles", func() {
		rec, req := request(auth.RoleEmployee)

		handler.RequireRoles(auth.RoleAdmin, auth.RoleReceptionist)(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(reached).To(BeFalse())
		Expect(decodeEnvelope(rec).Message).To(Equal("You do not have permission to perform this action"))
	})

	It("refuses an unauthenticated request", func() {
		rec, req := request("")

		handler.RequireRoles(auth.RoleAdmin)(next).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(reached).To(BeFalse())
	})
})
