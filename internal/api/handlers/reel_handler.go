package handlers

import (
	"log/slog"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/agrimart/internal/service"
	"github.com/maheshrc27/agrimart/internal/transfer"
)

const FieldReelVideo = "video"

type ReelHandler struct {
	s service.ReelService
}

func NewReelHandler(s service.ReelService) *ReelHandler {
	return &ReelHandler{s: s}
}

func reelForm(c *fiber.Ctx) (*transfer.ReelCreation, *multipart.Form) {
	// The video is optional, so a non-multipart body is fine too.
	form, err := c.MultipartForm()
	if err != nil {
		form = nil
	}

	rc := &transfer.ReelCreation{
		Description: c.FormValue("description"),
		Tags:        c.FormValue("tags"),
	}
	return rc, form
}

func (h *ReelHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	rc, form := reelForm(c)

	reelID, err := h.s.Create(c.Context(), userID, rc, FirstFile(form, FieldReelVideo))
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Reel created successfully",
		"reel_id": reelID,
	})
}

func (h *ReelHandler) List(c *fiber.Ctx) error {
	reels, err := h.s.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list reels",
		})
	}
	return c.Status(fiber.StatusOK).JSON(reels)
}

func (h *ReelHandler) GetByID(c *fiber.Ctx) error {
	id, err := ParamID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid reel id",
		})
	}

	reel, comments, err := h.s.Info(c.Context(), id)
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"error": "Reel not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"reel":     reel,
		"comments": comments,
	})
}

func (h *ReelHandler) Update(c *fiber.Ctx) error {
	userID := GetUserID(c)

	id, err := ParamID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid reel id",
		})
	}

	rc, form := reelForm(c)

	reel, err := h.s.Update(c.Context(), userID, id, rc, FirstFile(form, FieldReelVideo))
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Reel updated successfully",
		"reel":    reel,
	})
}

func (h *ReelHandler) Delete(c *fiber.Ctx) error {
	userID := GetUserID(c)

	id, err := ParamID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid reel id",
		})
	}

	if err := h.s.Remove(c.Context(), userID, id); err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Reel deleted successfully",
	})
}

func (h *ReelHandler) Like(c *fiber.Ctx) error {
	userID := GetUserID(c)

	id, err := ParamID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid reel id",
		})
	}

	liked, err := h.s.ToggleLike(c.Context(), userID, id)
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	message := "Like removed"
	if liked {
		message = "Reel liked"
	}
	slog.Info(message, "reel_id", id, "user_id", userID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": message,
	})
}

func (h *ReelHandler) Comment(c *fiber.Ctx) error {
	userID := GetUserID(c)

	id, err := ParamID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid reel id",
		})
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	comment, err := h.s.AddComment(c.Context(), userID, id, body.Text)
	if err != nil {
		return c.Status(errStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Comment added",
		"comment": comment,
	})
}
