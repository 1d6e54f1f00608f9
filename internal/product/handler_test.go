package product

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
)

func makeAppWithProductHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role := c.Get("X-Role"); role != "" {
			claims := jwt.MapClaims{"user_id": 1, "role": role}
			c.Locals("user", &jwt.Token{Claims: claims})
		}
		return c.Next()
	})
	h.RegisterPublicRoutes(app)
	h.RegisterProtectedRoutes(app)
	return app
}

func seededHandler() *Handler {
	repo := NewInMemoryRepository([]Product{
		{ID: 1, Name: "Collar", Description: "Cuero", Price: decimal.RequireFromString("10.00"), Stock: 5},
	})
	return NewHandler(NewService(repo))
}

func TestProductRoutes_PublicReads(t *testing.T) {
	app := makeAppWithProductHandler(seededHandler())

	req := httptest.NewRequest("GET", "/api/v1/products", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for public list, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "Collar") {
		t.Fatalf("expected seeded product in list, got %s", string(b))
	}

	req2 := httptest.NewRequest("GET", "/api/v1/products/99", nil)
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for missing product, got %d", res2.StatusCode)
	}
}

func TestProductRoutes_WritesRequireAdmin(t *testing.T) {
	app := makeAppWithProductHandler(seededHandler())
	body := `{"name":"Pelota","description":"Goma","price":5,"stock":3}`

	// a regular client cannot create products
	req := httptest.NewRequest("POST", "/api/v1/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Role", "cliente")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for non-admin create, got %d", res.StatusCode)
	}

	// an admin can
	req2 := httptest.NewRequest("POST", "/api/v1/products", strings.NewReader(body))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("X-Role", "admin")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 for admin create, got %d", res2.StatusCode)
	}

	// invalid payload is rejected before touching the repository
	req3 := httptest.NewRequest("POST", "/api/v1/products", strings.NewReader(`{"name":"","price":1}`))
	req3.Header.Set("Content-Type", "application/json")
	req3.Header.Set("X-Role", "admin")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for empty name, got %d", res3.StatusCode)
	}

	// admin delete of existing product
	req4 := httptest.NewRequest("DELETE", "/api/v1/products/1", nil)
	req4.Header.Set("X-Role", "admin")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204 for admin delete, got %d", res4.StatusCode)
	}
}
