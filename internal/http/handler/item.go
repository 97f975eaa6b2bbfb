package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"gifstore/internal/access"
	"gifstore/internal/http/middleware"
	"gifstore/internal/service"
	"gifstore/internal/storage"
)

// tagResponse is returned by the tag and untag endpoints.
type tagResponse struct {
	Title string `json:"title"`
}

// ListItems returns one page of the caller's items, newest first.
//
// @Summary   List own items
// @Tags      items
// @Security  BearerAuth
// @Produce   json
// @Param     page query int false "1-indexed page" default(1)
// @Success   200 {object} service.ItemPage
// @Failure   400 {object} errorPayload
// @Failure   401 {object} errorPayload
// @Router    /api/items [get]
func ListItems(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, ok := pageParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}
		res, err := svc.List(c.UserContext(), middleware.IdentityFrom(c), page)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// SearchItems filters the caller's items by display name or tag title.
//
// @Summary   Search own items
// @Tags      items
// @Security  BearerAuth
// @Produce   json
// @Param     keyword query string false "case-insensitive substring"
// @Param     page    query int    false "1-indexed page" default(1)
// @Success   200 {object} service.ItemPage
// @Failure   400 {object} errorPayload
// @Failure   401 {object} errorPayload
// @Router    /api/items/search [get]
func SearchItems(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, ok := pageParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}
		res, err := svc.Search(c.UserContext(), middleware.IdentityFrom(c), c.Query("keyword"), page)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetItem returns an item the caller may read. Public items need no token.
//
// @Summary  Get item
// @Tags     items
// @Produce  json
// @Param    id path string true "item id"
// @Success  200 {object} model.ItemView
// @Failure  400 {object} errorPayload
// @Failure  401 {object} errorPayload
// @Failure  403 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /api/items/{id} [get]
func GetItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := itemID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		view, err := svc.Get(c.UserContext(), middleware.IdentityFrom(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(view)
	}
}

// RenameItem changes the display name. Body: {"data": "new name"}.
//
// @Summary   Rename item
// @Tags      items
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     id   path string true "item id"
// @Param     body body dataRequest[string] true "new display name"
// @Success   200 {object} model.ItemView
// @Failure   400 {object} errorPayload
// @Failure   403 {object} errorPayload
// @Failure   404 {object} errorPayload
// @Router    /api/items/{id} [put]
func RenameItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := itemID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		name, err := parseData[string](c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		view, err := svc.Rename(c.UserContext(), middleware.IdentityFrom(c), id, name)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(view)
	}
}

// ShareItem sets the public flag. Body: {"data": true}.
//
// @Summary   Share or unshare item
// @Tags      items
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     id   path string true "item id"
// @Param     body body dataRequest[bool] true "public flag"
// @Success   200 {object} model.ItemView
// @Failure   400 {object} errorPayload
// @Failure   403 {object} errorPayload
// @Failure   404 {object} errorPayload
// @Router    /api/items/share/{id} [put]
func ShareItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := itemID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		public, err := parseData[*bool](c)
		if err != nil || public == nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		view, err := svc.SetVisibility(c.UserContext(), middleware.IdentityFrom(c), id, *public)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(view)
	}
}

// DeleteItem removes the item and its file.
//
// @Summary   Delete item
// @Tags      items
// @Security  BearerAuth
// @Param     id path string true "item id"
// @Success   204
// @Failure   403 {object} errorPayload
// @Failure   404 {object} errorPayload
// @Failure   500 {object} errorPayload
// @Router    /api/items/{id} [delete]
func DeleteItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := itemID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), middleware.IdentityFrom(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// TagItem attaches a tag. Body: {"data": "title"}.
//
// @Summary   Tag item
// @Tags      items
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     id   path string true "item id"
// @Param     body body dataRequest[string] true "tag title"
// @Success   200 {object} tagResponse
// @Failure   400 {object} errorPayload
// @Failure   403 {object} errorPayload
// @Failure   404 {object} errorPayload
// @Failure   409 {object} errorPayload
// @Router    /api/items/tag/{id} [post]
func TagItem(svc service.ItemService) fiber.Handler {
	return tagHandler(svc.Tag)
}

// UntagItem detaches a tag. Body: {"data": "title"}.
//
// @Summary   Untag item
// @Tags      items
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     id   path string true "item id"
// @Param     body body dataRequest[string] true "tag title"
// @Success   200 {object} tagResponse
// @Failure   400 {object} errorPayload
// @Failure   403 {object} errorPayload
// @Failure   404 {object} errorPayload
// @Router    /api/items/tag/{id} [delete]
func UntagItem(svc service.ItemService) fiber.Handler {
	return tagHandler(svc.Untag)
}

func tagHandler(op func(ctx context.Context, requester *access.Identity, id, title string) (string, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := itemID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		title, err := parseData[string](c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		got, err := op(c.UserContext(), middleware.IdentityFrom(c), id, title)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tagResponse{Title: got})
	}
}

// UploadItem stores a GIF sent as multipart field "file".
//
// @Summary   Upload GIF
// @Tags      items
// @Security  BearerAuth
// @Accept    multipart/form-data
// @Produce   json
// @Param     file formData file true "GIF file"
// @Success   201 {object} model.ItemView
// @Failure   400 {object} errorPayload
// @Failure   401 {object} errorPayload
// @Failure   500 {object} errorPayload
// @Router    /api/items [post]
func UploadItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		view, err := svc.Upload(c.UserContext(), middleware.IdentityFrom(c), service.UploadInput{
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Body:        f,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	}
}

// GetItemFile streams the GIF behind a physical file name, with or without
// the .gif suffix. Public items need no token.
//
// @Summary  Download GIF
// @Tags     items
// @Produce  image/gif
// @Param    filename path string true "physical file name"
// @Success  200 {file} binary
// @Failure  401 {object} errorPayload
// @Failure  403 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /api/items/files/{filename} [get]
func GetItemFile(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, info, err := svc.OpenFile(c.UserContext(), middleware.IdentityFrom(c), c.Params("filename"))
		if err != nil {
			return writeServiceError(c, err)
		}
		ct := info.ContentType
		if ct == "" {
			ct = storage.ContentType
		}
		c.Set(fiber.HeaderContentType, ct)
		size := -1
		if info.Size > 0 {
			size = int(info.Size)
		}
		// fasthttp closes rc once the body is written
		return c.SendStream(rc, size)
	}
}
