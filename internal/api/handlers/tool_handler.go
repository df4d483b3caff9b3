package handlers

import (
	"log/slog"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/agrimart/internal/service"
	"github.com/maheshrc27/agrimart/internal/transfer"
)

const FieldToolImage = "image"

type ToolHandler struct {
	s service.ToolService
}

func NewToolHandler(s service.ToolService) *ToolHandler {
	return &ToolHandler{s: s}
}

func toolForm(c *fiber.Ctx) (*transfer.ToolCreation, *multipart.Form) {
	form, err := c.MultipartForm()
	if err != nil {
		form = nil
	}

	tc := &transfer.ToolCreation{
		Name:        c.FormValue("name"),
		Type:        c.FormValue("type"),
		Price:       c.FormValue("price"),
		Description: c.FormValue("description"),
		Location:    c.FormValue("location"),
		ForRent:     c.FormValue("for_rent"),
	}
	return tc, form
}

func (h *ToolHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	tc, form := toolForm(c)

	itemID, err := h.s.Create(c.Context(), userID, tc, FirstFile(form, FieldToolImage))
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Item created successfully",
		"item_id": itemID,
	})
}

func (h *ToolHandler) List(c *fiber.Ctx) error {
	filter := &transfer.ToolFilter{
		Type:     c.Query("type"),
		Location: c.Query("location"),
		Search:   c.Query("search"),
	}

	if v := c.Query("for_rent"); v != "" {
		forRent, err := strconv.ParseBool(v)
		if err == nil {
			filter.ForRent = &forRent
		}
	}
	if v := c.Query("min_price"); v != "" {
		if minPrice, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &minPrice
		}
	}
	if v := c.Query("max_price"); v != "" {
		if maxPrice, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &maxPrice
		}
	}

	items, err := h.s.List(c.Context(), filter)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list items",
		})
	}

	return c.Status(fiber.StatusOK).JSON(items)
}

func (h *ToolHandler) GetByID(c *fiber.Ctx) error {
	id, err := ParamID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid item id",
		})
	}

	item, err := h.s.Info(c.Context(), id)
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"error": "Item not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(item)
}

func (h *ToolHandler) Update(c *fiber.Ctx) error {
	userID := GetUserID(c)

	id, err := ParamID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid item id",
		})
	}

	tc, form := toolForm(c)

	item, err := h.s.Update(c.Context(), userID, id, tc, FirstFile(form, FieldToolImage))
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Item updated successfully",
		"item":    item,
	})
}

func (h *ToolHandler) Delete(c *fiber.Ctx) error {
	userID := GetUserID(c)

	id, err := ParamID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid item id",
		})
	}

	if err := h.s.Remove(c.Context(), userID, id); err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Item deleted successfully",
	})
}
