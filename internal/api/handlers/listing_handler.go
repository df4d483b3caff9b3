package handlers

import (
	"log/slog"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/agrimart/internal/service"
	"github.com/maheshrc27/agrimart/internal/transfer"
)

// Multipart field names for listing media.
const (
	FieldListingImages = "images[]"
	FieldListingVideos = "videos[]"
)

type ListingHandler struct {
	s service.ListingService
}

func NewListingHandler(s service.ListingService) *ListingHandler {
	return &ListingHandler{s: s}
}

func listingForm(c *fiber.Ctx) (*transfer.ListingCreation, *multipart.Form, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, err
	}

	lc := &transfer.ListingCreation{
		Name:        c.FormValue("name"),
		Price:       c.FormValue("price"),
		Description: c.FormValue("description"),
		Location:    c.FormValue("location"),
		Contact:     c.FormValue("contact"),
		Status:      c.FormValue("status"),
	}
	return lc, form, nil
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)

	lc, form, err := listingForm(c)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	listingID, err := h.s.Create(c.Context(), userID, lc, form.File[FieldListingImages], form.File[FieldListingVideos])
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Listing posted successfully",
		"listing_id": listingID,
	})
}

func (h *ListingHandler) List(c *fiber.Ctx) error {
	listings, err := h.s.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list listings",
		})
	}
	return c.Status(fiber.StatusOK).JSON(listings)
}

func (h *ListingHandler) GetByID(c *fiber.Ctx) error {
	id, err := ParamID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing id",
		})
	}

	listing, err := h.s.Info(c.Context(), id)
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(listing)
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	userID := GetUserID(c)

	id, err := ParamID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing id",
		})
	}

	lc, form, err := listingForm(c)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	listing, err := h.s.Update(c.Context(), userID, id, lc, form.File[FieldListingImages], form.File[FieldListingVideos])
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Listing updated successfully",
		"listing": listing,
	})
}

func (h *ListingHandler) Delete(c *fiber.Ctx) error {
	userID := GetUserID(c)

	id, err := ParamID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing id",
		})
	}

	if err := h.s.Remove(c.Context(), userID, id); err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Listing deleted successfully",
	})
}
