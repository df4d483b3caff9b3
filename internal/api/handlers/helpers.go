package handlers

import (
	"errors"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/agrimart/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

func ParamID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// FirstFile returns the first uploaded file under the given multipart field,
// or nil when the field is absent.
func FirstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func errStatus(err error) int {
	if errors.Is(err, service.ErrNotFound) {
		return fiber.StatusNotFound
	}
	if errors.Is(err, service.ErrStaging) || errors.Is(err, service.ErrPublish) {
		return fiber.StatusInternalServerError
	}
	return fiber.StatusBadRequest
}
