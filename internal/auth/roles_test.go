package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

func TestRoleFromHeaderBasic(t *testing.T) {
	authority := NewAuthority(nil)
	cases := []struct {
		header string
		want   domain.Role
		ok     bool
	}{
		{"Basic User", domain.RoleUser, true},
		{"Basic Support-Agent", domain.RoleSupportAgent, true},
		{"Basic Engineer", domain.RoleEngineer, true},
		{"basic Engineer", domain.RoleEngineer, true},
		{"", "", false},
		{"Basic", "", false},
		{"Basic Admin", "", false},
		{"Basic engineer", "", false},
		{"Token Engineer", "", false},
		{"Bearer abc", "", false},
	}
	for _, tc := range cases {
		role, err := authority.RoleFromHeader(tc.header)
		if tc.ok {
			if err != nil {
				t.Fatalf("header %q: unexpected error %v", tc.header, err)
			}
			if role != tc.want {
				t.Fatalf("header %q: got role %s want %s", tc.header, role, tc.want)
			}
			continue
		}
		if !errorutil.HasCode(err, "UNAUTHORIZED") {
			t.Fatalf("header %q: expected UNAUTHORIZED, got %v", tc.header, err)
		}
	}
}

func TestRoleFromHeaderBearer(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Minute)
	authority := NewAuthority(tokens)

	token, _, err := tokens.GenerateToken("ops", domain.RoleSupportAgent)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	role, err := authority.RoleFromHeader("Bearer " + token)
	if err != nil {
		t.Fatalf("resolve bearer: %v", err)
	}
	if role != domain.RoleSupportAgent {
		t.Fatalf("expected Support-Agent, got %s", role)
	}

	forged := NewTokenManager("other-secret", time.Minute)
	bad, _, err := forged.GenerateToken("ops", domain.RoleEngineer)
	if err != nil {
		t.Fatalf("generate forged token: %v", err)
	}
	if _, err := authority.RoleFromHeader("Bearer " + bad); !errorutil.HasCode(err, "UNAUTHORIZED") {
		t.Fatalf("expected forged token rejected, got %v", err)
	}

	if _, _, err := tokens.GenerateToken("ops", domain.Role("Admin")); err == nil {
		t.Fatalf("expected unknown role to be refused")
	}
}

func TestMiddlewareRequireRole(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := errorutil.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	authority := NewAuthority(nil)
	app.Post("/customers", authority.Handle, RequireRole(domain.RoleSupportAgent, domain.RoleEngineer), func(c *fiber.Ctx) error {
		role, _ := RoleFromContext(c)
		return c.SendString(string(role))
	})

	cases := []struct {
		header string
		status int
	}{
		{"Basic Engineer", http.StatusOK},
		{"Basic Support-Agent", http.StatusOK},
		{"Basic User", http.StatusForbidden},
		{"Basic Nobody", http.StatusUnauthorized},
		{"", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/customers", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != tc.status {
			t.Fatalf("header %q: got status %d want %d", tc.header, resp.StatusCode, tc.status)
		}
	}
}

func TestMiddlewareOptional(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := errorutil.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	authority := NewAuthority(nil)
	app.Put("/tags", authority.Optional, func(c *fiber.Ctx) error {
		role, ok := RoleFromContext(c)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(string(role))
	})

	cases := []struct {
		header string
		status int
		body   string
	}{
		{"", http.StatusOK, "anonymous"},
		{"Basic Engineer", http.StatusOK, "Engineer"},
		{"Basic Nobody", http.StatusUnauthorized, "UNAUTHORIZED"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPut, "/tags", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != tc.status || string(body) != tc.body {
			t.Fatalf("header %q: got %d %q want %d %q", tc.header, resp.StatusCode, body, tc.status, tc.body)
		}
	}
}
