package handlers

import (
	"fmt"

	"foodgram/domain"
	"foodgram/internal/api/presenters"
	"foodgram/pkg/shoppinglist"

	"github.com/gofiber/fiber/v2"
)

type (
	ShoppingListHandler interface {
		DownloadShoppingCart(c *fiber.Ctx) error
	}

	shoppingListHandler struct {
		shoppingListService shoppinglist.ShoppingListService
	}
)

func NewShoppingListHandler(shoppingListService shoppinglist.ShoppingListService) ShoppingListHandler {
	return &shoppingListHandler{shoppingListService: shoppingListService}
}

// DownloadShoppingCart returns the aggregated shopping list as a text/plain
// attachment; an empty cart is a client error.
func (h *shoppingListHandler) DownloadShoppingCart(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	file, err := h.shoppingListService.DownloadShoppingList(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, presenters.StatusFromError(err), domain.MessageFailedDownloadCart, err)
	}

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", file.FileName))
	return c.SendString(file.Content)
}
