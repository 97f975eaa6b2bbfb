package handler

import (
	"github.com/gofiber/fiber/v2"

	"gifstore/internal/http/middleware"
	"gifstore/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterUser creates an account.
//
// @Summary  Register
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body service.RegisterInput true "account"
// @Success  201 {object} model.UserSummary
// @Failure  400 {object} errorPayload
// @Failure  409 {object} errorPayload
// @Router   /api/users/register [post]
func RegisterUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		u, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// LoginUser exchanges credentials for a bearer token.
//
// @Summary  Login
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body loginRequest true "credentials"
// @Success  200 {object} service.Session
// @Failure  400 {object} errorPayload
// @Failure  401 {object} errorPayload
// @Router   /api/users/login [post]
func LoginUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in loginRequest
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		sess, err := svc.Login(c.UserContext(), in.Email, in.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(sess)
	}
}

// UpdateFullname renames the caller and returns a fresh token. Body: {"data": "name"}.
//
// @Summary   Update full name
// @Tags      users
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     body body dataRequest[string] true "new full name"
// @Success   200 {object} service.Session
// @Failure   400 {object} errorPayload
// @Failure   401 {object} errorPayload
// @Router    /api/users [put]
func UpdateFullname(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := parseData[string](c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		sess, err := svc.UpdateFullname(c.UserContext(), middleware.IdentityFrom(c), name)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(sess)
	}
}

// UpdatePassword replaces the caller's password. Body: {"data": "new password"}.
//
// @Summary   Update password
// @Tags      users
// @Security  BearerAuth
// @Accept    json
// @Param     body body dataRequest[string] true "new password"
// @Success   204
// @Failure   400 {object} errorPayload
// @Failure   401 {object} errorPayload
// @Router    /api/users/password [put]
func UpdatePassword(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		password, err := parseData[string](c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := svc.UpdatePassword(c.UserContext(), middleware.IdentityFrom(c), password); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
