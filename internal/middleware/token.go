package middleware

import (
	jwtPkg "FallWatch/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const unauthorizedMessage = "Unauthorized, access token invalid or expired"

func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	if err := m.authenticate(ctx); err != nil {
		m.log.WithFields(logrus.Fields{
			"request_id": m.GetRequestID(ctx),
			"path":       ctx.Path(),
			"client_ip":  ctx.IP(),
			"error":      err.Error(),
		}).Warn("Token verification failed")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": unauthorizedMessage,
		})
	}

	return ctx.Next()
}

// NewOptionalTokenMiddleware lets anonymous requests through but rejects a
// bearer token that is present and invalid.
func (m *middleware) NewOptionalTokenMiddleware(ctx *fiber.Ctx) error {
	if ctx.Get("Authorization") == "" {
		return ctx.Next()
	}

	return m.NewTokenMiddleware(ctx)
}

func (m *middleware) authenticate(ctx *fiber.Ctx) error {
	userToken, err := jwtPkg.VerifyTokenHeader(ctx, jwtPkg.AccessTokenSecret)
	if err != nil {
		return err
	}

	user, err := jwtPkg.ClaimsToUser(userToken)
	if err != nil {
		return err
	}

	ctx.Locals("user", user)

	m.log.WithFields(logrus.Fields{
		"request_id": m.GetRequestID(ctx),
		"user_id":    user.ID,
	}).Debug("Authentication successful")

	return nil
}
