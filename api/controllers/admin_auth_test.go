package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/admins"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubAdminService struct {
	login     admins.LoginRequest
	meID      uuid.UUID
	revoked   string
	loginErr  error
	registerE error
}

func (s *stubAdminService) Register(ctx context.Context, req admins.RegisterRequest) (*admins.AdminDTO, error) {
	if s.registerE != nil {
		return nil, s.registerE
	}
	return &admins.AdminDTO{ID: uuid.New(), Username: req.Username, Role: enums.AdminRoleOwner}, nil
}

func (s *stubAdminService) Login(ctx context.Context, req admins.LoginRequest) (*admins.LoginResponse, error) {
	s.login = req
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &admins.LoginResponse{AccessToken: "token", TokenType: "bearer", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s *stubAdminService) Me(ctx context.Context, adminID uuid.UUID) (*admins.AdminDTO, error) {
	s.meID = adminID
	return &admins.AdminDTO{ID: adminID}, nil
}

func (s *stubAdminService) Logout(ctx context.Context, accessID string) error {
	s.revoked = accessID
	return nil
}

func TestAdminLogin(t *testing.T) {
	svc := &stubAdminService{}
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":" farmer ","password":"hunter22"}`))
	resp := httptest.NewRecorder()

	AdminLogin(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.login.Username != "farmer" {
		t.Fatalf("username not trimmed: %q", svc.login.Username)
	}
	var body admins.LoginResponse
	decodeData(t, resp, &body)
	if body.AccessToken != "token" || body.TokenType != "bearer" {
		t.Fatalf("unexpected login response: %+v", body)
	}
}

func TestAdminLoginInvalidCredentials(t *testing.T) {
	svc := &stubAdminService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":"farmer","password":"wrong"}`))
	resp := httptest.NewRecorder()

	AdminLogin(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAdminRegisterValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/register", strings.NewReader(`{"username":"ab","email":"x","password":"short"}`))
	resp := httptest.NewRecorder()

	AdminRegister(&stubAdminService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminRegisterClosed(t *testing.T) {
	svc := &stubAdminService{registerE: pkgerrors.New(pkgerrors.CodeForbidden, "registration is closed")}
	req := httptest.NewRequest(http.MethodPost, "/api/admin/register", strings.NewReader(`{"username":"editor","email":"e@example.com","password":"longenough"}`))
	resp := httptest.NewRecorder()

	AdminRegister(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestAdminMeAndLogoutUseContext(t *testing.T) {
	svc := &stubAdminService{}
	adminID := uuid.New()
	ctx := middleware.WithAdmin(context.Background(), adminID.String(), string(enums.AdminRoleOwner), "jti-7")

	resp := httptest.NewRecorder()
	AdminMe(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/admin/me", nil).WithContext(ctx))
	if resp.Code != http.StatusOK || svc.meID != adminID {
		t.Fatalf("me failed: %d %s", resp.Code, svc.meID)
	}

	resp = httptest.NewRecorder()
	AdminLogout(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil).WithContext(ctx))
	if resp.Code != http.StatusOK || svc.revoked != "jti-7" {
		t.Fatalf("logout failed: %d %q", resp.Code, svc.revoked)
	}
}

func TestAdminMeWithoutContext(t *testing.T) {
	resp := httptest.NewRecorder()
	AdminMe(&stubAdminService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/admin/me", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
