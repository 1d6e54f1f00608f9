package cart

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/dvalery/tienda-backend/internal/user"
)

// Handler delegates cart operations to the cart service. This keeps
// cart-specific HTTP routing isolated.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Put("/api/v1/cart/items/:id", h.updateLine)
	app.Delete("/api/v1/cart/items/:id", h.removeLine)
	app.Delete("/api/v1/cart", h.clearCart)
}

type addRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type updateRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	items, err := h.service.Get(userID)
	if err != nil {
		slog.Error("get cart failed", "err", err, "user", userID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
	}

	return c.JSON(items)
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := h.service.Add(userID, payload.ProductID, payload.Quantity); err != nil {
		switch err {
		case ErrInvalidInput:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "productId and a positive quantity are required"})
		case ErrProductNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		default:
			slog.Error("add to cart failed", "err", err, "user", userID, "product", payload.ProductID)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
		}
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) updateLine(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	lineID, _ := strconv.Atoi(c.Params("id"))
	payload := new(updateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := h.service.UpdateQuantity(userID, lineID, payload.Quantity); err != nil {
		return h.lineError(c, err, userID, lineID)
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) removeLine(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	lineID, _ := strconv.Atoi(c.Params("id"))
	if err := h.service.Remove(userID, lineID); err != nil {
		return h.lineError(c, err, userID, lineID)
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.Clear(userID); err != nil {
		slog.Error("clear cart failed", "err", err, "user", userID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) lineError(c *fiber.Ctx, err error, userID, lineID int) error {
	switch err {
	case ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid line id"})
	case ErrLineNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "cart line not found"})
	default:
		slog.Error("cart line operation failed", "err", err, "user", userID, "line", lineID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
	}
}
