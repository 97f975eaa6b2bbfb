package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

// dataRequest is the single-field body used by every update endpoint: {"data": value}.
type dataRequest[T any] struct {
	Data T `json:"data"`
}

func parseData[T any](c *fiber.Ctx) (T, error) {
	var req dataRequest[T]
	err := c.BodyParser(&req)
	return req.Data, err
}

// itemID returns the :id param when it is a well-formed UUID. The result is
// a copy; fiber params point into the reused request buffer.
func itemID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return utils.CopyString(id), true
}

// pageParam reads ?page=, defaulting to 1.
func pageParam(c *fiber.Ctx) (int, bool) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	return page, err == nil
}
