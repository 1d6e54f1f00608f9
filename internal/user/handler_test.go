package user

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func makeAppWithUserHandler(h *Handler) *fiber.App {
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	return app
}

func TestRegisterAndLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := NewHandler(NewService(NewInMemoryRepository(nil)))
	app := makeAppWithUserHandler(handler)

	// register
	req := httptest.NewRequest("POST", "/api/v1/sign-up",
		strings.NewReader(`{"name":"Ana","email":"ana@example.com","password":"secreto"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 for register, got %d", res.StatusCode)
	}

	// duplicate email is rejected
	req2 := httptest.NewRequest("POST", "/api/v1/sign-up",
		strings.NewReader(`{"name":"Ana","email":"ana@example.com","password":"otra"}`))
	req2.Header.Set("Content-Type", "application/json")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", res2.StatusCode)
	}

	// login with the right password returns a token and the role
	req3 := httptest.NewRequest("POST", "/api/v1/sign-in",
		strings.NewReader(`{"email":"ana@example.com","password":"secreto"}`))
	req3.Header.Set("Content-Type", "application/json")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for login, got %d", res3.StatusCode)
	}
	var body loginResponse
	if err := json.NewDecoder(res3.Body).Decode(&body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if body.Token == "" {
		t.Fatalf("expected a token in login response")
	}
	if body.Role != RoleCliente {
		t.Fatalf("expected role %q, got %q", RoleCliente, body.Role)
	}

	// wrong password is rejected
	req4 := httptest.NewRequest("POST", "/api/v1/sign-in",
		strings.NewReader(`{"email":"ana@example.com","password":"mal"}`))
	req4.Header.Set("Content-Type", "application/json")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", res4.StatusCode)
	}

	// missing fields are rejected
	req5 := httptest.NewRequest("POST", "/api/v1/sign-up", strings.NewReader(`{"email":"x@example.com"}`))
	req5.Header.Set("Content-Type", "application/json")
	res5, _ := app.Test(req5)
	if res5.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete register, got %d", res5.StatusCode)
	}
}

func TestProfile_ReturnsCurrentUser(t *testing.T) {
	repo := NewInMemoryRepository([]User{
		{ID: 42, Name: "Ana", Email: "ana@example.com", Password: "$2a$10$hash", Role: RoleCliente},
	})
	handler := NewHandler(NewService(repo))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": id, "role": RoleCliente}})
			}
		}
		return c.Next()
	})
	handler.RegisterProtectedRoutes(app)

	// no claims
	req := httptest.NewRequest("GET", "/api/v1/profile", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", res.StatusCode)
	}

	req2 := httptest.NewRequest("GET", "/api/v1/profile", nil)
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for own profile, got %d", res2.StatusCode)
	}
	b, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b), "ana@example.com") {
		t.Fatalf("expected profile payload, got %s", string(b))
	}
	if strings.Contains(string(b), "$2a$10$hash") {
		t.Fatalf("password hash must not leak, got %s", string(b))
	}

	// a user id with no record
	req3 := httptest.NewRequest("GET", "/api/v1/profile", nil)
	req3.Header.Set("X-User-ID", "77")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", res3.StatusCode)
	}
}
